package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Furqan3/bustracker/internal/tracker/store"
	"github.com/Furqan3/bustracker/internal/tracker/types"
)

var (
	ErrInvalidCardUID   = errors.New("uid is required")
	ErrInvalidTimestamp = errors.New("timestamp must be positive")
)

// Ledger owns the vehicle's occupancy state. Every scan runs its full
// classify → guard → update → append sequence inside one mutex, so two
// concurrent scans can never both pass the same capacity guard.
type Ledger struct {
	capacity  int
	registry  *CardRegistry
	occupancy store.OccupancyStore
	scans     store.ScanLogStore
	logger    zerolog.Logger

	mu sync.Mutex
}

func NewLedger(
	capacity int,
	registry *CardRegistry,
	occupancy store.OccupancyStore,
	scans store.ScanLogStore,
	logger zerolog.Logger,
) *Ledger {
	if capacity <= 0 {
		capacity = 30
	}
	return &Ledger{
		capacity:  capacity,
		registry:  registry,
		occupancy: occupancy,
		scans:     scans,
		logger:    logger,
	}
}

func (l *Ledger) Capacity() int { return l.capacity }

// IngestScan classifies one card tap, applies the transition, records
// the outcome, and echoes the new count. Capacity-guard outcomes
// (boarding_denied, alighting_error) are successful responses, not
// errors.
func (l *Ledger) IngestScan(ctx context.Context, req types.ScanRequest) (types.ScanResponse, error) {
	uid := store.CanonicalUID(req.UID)
	if uid == "" {
		return types.ScanResponse{}, ErrInvalidCardUID
	}
	if req.Timestamp <= 0 {
		return types.ScanResponse{}, ErrInvalidTimestamp
	}

	now := time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.registry.Snapshot(ctx)
	if err != nil {
		return types.ScanResponse{}, err
	}
	filled, err := l.occupancy.Filled(ctx)
	if err != nil {
		return types.ScanResponse{}, err
	}

	outcome, next := transition(Classify(uid, snap), filled, l.capacity)

	if next != filled {
		if err := l.occupancy.SetFilled(ctx, next); err != nil {
			return types.ScanResponse{}, err
		}
	}

	rec := store.ScanRecord{
		CardUID:         uid,
		DeviceTimestamp: req.Timestamp,
		ReceivedAt:      now,
		Outcome:         outcome,
		FilledAfter:     next,
	}
	// A failed log write must not withhold the decision from the
	// reader; the counter has already moved.
	if err := l.scans.Append(ctx, rec); err != nil {
		l.logger.Error().Err(err).Str("uid", uid).Msg("scan log append failed")
	}

	l.logger.Info().
		Str("uid", uid).
		Str("action", string(outcome)).
		Int("seats_filled", next).
		Int("total_seats", l.capacity).
		Msg("rfid scan")

	return types.ScanResponse{
		Status:       "success",
		Message:      fmt.Sprintf("RFID card %s registered", uid),
		Action:       string(outcome),
		CurrentSeats: next,
		TotalSeats:   l.capacity,
	}, nil
}

// transition is the occupancy state machine: total over every reachable
// state, and never leaves [0, capacity].
func transition(intent Intent, filled, capacity int) (store.Outcome, int) {
	switch intent {
	case IntentBoard:
		if filled < capacity {
			return store.OutcomeBoarding, filled + 1
		}
		return store.OutcomeBoardingDenied, filled
	case IntentAlight:
		if filled > 0 {
			return store.OutcomeAlighting, filled - 1
		}
		return store.OutcomeAlightingError, filled
	default:
		return store.OutcomeUnknown, filled
	}
}

// Reset forces the seat count to zero. Administrative override; the
// registry and the history logs are untouched.
func (l *Ledger) Reset(ctx context.Context) (types.SeatResetResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.occupancy.SetFilled(ctx, 0); err != nil {
		return types.SeatResetResponse{}, err
	}

	l.logger.Info().Msg("seat count reset")

	return types.SeatResetResponse{
		Status:      "success",
		Message:     "Seat count reset",
		SeatsFilled: 0,
		TotalSeats:  l.capacity,
	}, nil
}

func (l *Ledger) SeatCount(ctx context.Context) (types.SeatCountResponse, error) {
	filled, err := l.occupancy.Filled(ctx)
	if err != nil {
		return types.SeatCountResponse{}, err
	}
	return types.SeatCountResponse{
		SeatsFilled:         filled,
		TotalSeats:          l.capacity,
		SeatsAvailable:      l.capacity - filled,
		OccupancyPercentage: OccupancyPercentage(filled, l.capacity),
	}, nil
}

// OccupancyPercentage is filled/capacity as a percentage rounded to two
// decimal places.
func OccupancyPercentage(filled, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Round(float64(filled)/float64(capacity)*100*100) / 100
}

func (l *Ledger) LatestScan(ctx context.Context) (store.ScanRecord, error) {
	return l.scans.Latest(ctx)
}

func (l *Ledger) ScanHistory(ctx context.Context, limit int) (total int, recent []store.ScanRecord, err error) {
	total, err = l.scans.Count(ctx)
	if err != nil {
		return 0, nil, err
	}
	recent, err = l.scans.Recent(ctx, limit)
	return total, recent, err
}

// CardHistory returns every recorded scan for one card, newest first.
func (l *Ledger) CardHistory(ctx context.Context, uid string) (string, []store.ScanRecord, error) {
	uid = store.CanonicalUID(uid)
	if uid == "" {
		return "", nil, ErrInvalidCardUID
	}
	recs, err := l.scans.ByCard(ctx, uid)
	return uid, recs, err
}

func (l *Ledger) ScanCount(ctx context.Context) (int, error) {
	return l.scans.Count(ctx)
}
