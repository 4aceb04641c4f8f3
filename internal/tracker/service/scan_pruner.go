package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// ScanLogPruner periodically trims the scan log down to a configured
// number of newest entries. It runs as a background goroutine and is
// safe to stop via its context or the Stop method.
//
// MaxEntries of 0 keeps everything; the pruner never starts.
type ScanLogPruner struct {
	scans    store.ScanLogStore
	max      int
	interval time.Duration
	logger   zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// PrunerConfig holds the parameters for NewScanLogPruner.
type PrunerConfig struct {
	// MaxEntries is how many scan rows to retain. 0 means keep
	// everything (pruner will not start).
	MaxEntries int

	// IntervalMinutes is how often the pruner runs. Defaults to 60.
	IntervalMinutes int
}

// NewScanLogPruner creates a pruner but does not start it.
// Call Start to begin the background loop.
func NewScanLogPruner(scans store.ScanLogStore, cfg PrunerConfig, logger zerolog.Logger) *ScanLogPruner {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	return &ScanLogPruner{
		scans:    scans,
		max:      cfg.MaxEntries,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the background pruning loop. It runs an immediate prune
// on startup, then repeats on the configured interval. The loop exits
// when ctx is cancelled or Stop is called.
func (p *ScanLogPruner) Start(ctx context.Context) {
	if p.max <= 0 {
		p.logger.Info().Msg("scan log pruner disabled (max_entries=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info().
		Int("max_entries", p.max).
		Dur("interval", p.interval).
		Msg("scan log pruner started")
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *ScanLogPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *ScanLogPruner) loop(ctx context.Context) {
	defer close(p.done)

	// Clean up any backlog from before the retention limit was set.
	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *ScanLogPruner) prune(ctx context.Context) {
	deleted, err := p.scans.TrimToNewest(ctx, p.max)
	if err != nil {
		p.logger.Error().Err(err).Msg("scan log prune failed")
		return
	}
	if deleted > 0 {
		p.logger.Info().
			Int64("deleted", deleted).
			Int("retained", p.max).
			Msg("scan log pruned")
	}
}
