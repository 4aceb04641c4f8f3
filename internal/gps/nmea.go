// Package gps parses raw NMEA output from the vehicle's GPS module.
package gps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adrianmo/go-nmea"
)

var (
	ErrNotGGA = errors.New("not a GGA sentence")
	ErrNoFix  = errors.New("no GPS fix")
)

// Fix is the subset of a GGA sentence the tracker cares about.
type Fix struct {
	Latitude   float64
	Longitude  float64
	Satellites int
}

// ParseGGA parses one $xxGGA sentence into a Fix. Sentences without a
// position fix are rejected rather than recorded as (0, 0).
func ParseGGA(sentence string) (Fix, error) {
	sentence = strings.TrimSpace(sentence)

	s, err := nmea.Parse(sentence)
	if err != nil {
		return Fix{}, fmt.Errorf("parse nmea: %w", err)
	}

	gga, ok := s.(nmea.GGA)
	if !ok {
		return Fix{}, ErrNotGGA
	}
	if gga.FixQuality == nmea.Invalid {
		return Fix{}, ErrNoFix
	}

	return Fix{
		Latitude:   gga.Latitude,
		Longitude:  gga.Longitude,
		Satellites: int(gga.NumSatellites),
	}, nil
}
