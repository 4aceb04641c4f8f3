package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Furqan3/bustracker/internal/tracker/store"
	"github.com/Furqan3/bustracker/internal/tracker/types"
)

var (
	ErrInvalidLatitude   = errors.New("latitude must be in [-90, 90]")
	ErrInvalidLongitude  = errors.New("longitude must be in [-180, 180]")
	ErrInvalidSatellites = errors.New("satellites must be non-negative")
)

// LocationService validates and records GPS fixes. Fixes bypass the
// ledger entirely; they only touch the bounded fix log.
type LocationService struct {
	fixes  store.FixLogStore
	logger zerolog.Logger
}

func NewLocationService(fixes store.FixLogStore, logger zerolog.Logger) *LocationService {
	return &LocationService{fixes: fixes, logger: logger}
}

func (s *LocationService) Ingest(ctx context.Context, req types.GPSRequest) (types.GPSResponse, error) {
	if req.Latitude < -90 || req.Latitude > 90 {
		return types.GPSResponse{}, ErrInvalidLatitude
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return types.GPSResponse{}, ErrInvalidLongitude
	}
	if req.Timestamp <= 0 {
		return types.GPSResponse{}, ErrInvalidTimestamp
	}

	sats := 0
	if req.Satellites != nil {
		if *req.Satellites < 0 {
			return types.GPSResponse{}, ErrInvalidSatellites
		}
		sats = *req.Satellites
	}

	rec := store.FixRecord{
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		DeviceTimestamp: req.Timestamp,
		Satellites:      sats,
		ReceivedAt:      time.Now().UTC(),
	}
	if err := s.fixes.Append(ctx, rec); err != nil {
		return types.GPSResponse{}, err
	}

	s.logger.Info().
		Float64("latitude", req.Latitude).
		Float64("longitude", req.Longitude).
		Int("satellites", sats).
		Int64("device_ts", req.Timestamp).
		Msg("gps fix")

	return types.GPSResponse{
		Status:   "success",
		Message:  "GPS location received",
		Location: fmt.Sprintf("%v, %v", req.Latitude, req.Longitude),
	}, nil
}

func (s *LocationService) Latest(ctx context.Context) (store.FixRecord, error) {
	return s.fixes.Latest(ctx)
}

func (s *LocationService) History(ctx context.Context, limit int) (total int, recent []store.FixRecord, err error) {
	total, err = s.fixes.Count(ctx)
	if err != nil {
		return 0, nil, err
	}
	recent, err = s.fixes.Recent(ctx, limit)
	return total, recent, err
}

func (s *LocationService) Count(ctx context.Context) (int, error) {
	return s.fixes.Count(ctx)
}
