package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Furqan3/bustracker/internal/config"
	"github.com/Furqan3/bustracker/internal/db"
	"github.com/Furqan3/bustracker/internal/httpapi"
	"github.com/Furqan3/bustracker/internal/mqttingest"
	"github.com/Furqan3/bustracker/internal/tracker/service"
	"github.com/Furqan3/bustracker/internal/tracker/store"
	"github.com/Furqan3/bustracker/internal/tracker/store/memory"
	"github.com/Furqan3/bustracker/internal/tracker/store/sqlite"
)

func main() {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "bustracker-server").
		Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	// Dev with no configured lists gets the firmware defaults so the
	// reader has cards to test with.
	boarding, alighting := cfg.BoardingUIDs, cfg.AlightingUIDs
	if cfg.Env == "dev" && len(boarding) == 0 && len(alighting) == 0 {
		boarding, alighting = config.DefaultBoardingUIDs, config.DefaultAlightingUIDs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores
	var (
		fixStore      store.FixLogStore
		scanStore     store.ScanLogStore
		registryStore store.RegistryStore
		occStore      store.OccupancyStore
	)

	switch cfg.Store {
	case "sqlite":
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			logger.Fatal().Err(err).Msg("open database")
		}
		defer conn.Close()

		writer := db.NewWorker(conn)
		defer writer.Close()

		if cfg.Env == "dev" {
			if err := db.SeedDev(ctx, conn, db.SeedDevOptions{
				BoardingUIDs:  boarding,
				AlightingUIDs: alighting,
			}); err != nil {
				logger.Fatal().Err(err).Msg("seed dev database")
			}
		}

		fixStore = sqlite.NewFixLogStore(conn, writer, cfg.FixLogCap)
		scanStore = sqlite.NewScanLogStore(conn, writer)
		registryStore = sqlite.NewRegistryStore(conn, writer)
		occStore = sqlite.NewOccupancyStore(conn, writer)
	default:
		fixStore = memory.NewFixLogStore(cfg.FixLogCap)
		scanStore = memory.NewScanLogStore()
		registryStore = memory.NewRegistryStore(boarding, alighting)
		occStore = memory.NewOccupancyStore()
	}

	// Services
	registry := service.NewCardRegistry(registryStore)
	locations := service.NewLocationService(fixStore, logger)
	ledger := service.NewLedger(cfg.Capacity, registry, occStore, scanStore, logger)

	pruner := service.NewScanLogPruner(scanStore, service.PrunerConfig{
		MaxEntries:      cfg.ScanLogMaxEntries,
		IntervalMinutes: cfg.PruneIntervalMins,
	}, logger)
	pruner.Start(ctx)

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    logger,
		Addr:      cfg.HTTPAddr,
		Ledger:    ledger,
		Locations: locations,
		Registry:  registry,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Optional MQTT ingest
	if cfg.MQTT.Broker != "" {
		bridge := mqttingest.New(mqttingest.Config{
			Broker:    cfg.MQTT.Broker,
			ClientID:  cfg.MQTT.ClientID,
			GPSTopic:  cfg.MQTT.GPSTopic,
			ScanTopic: cfg.MQTT.ScanTopic,
			QoS:       byte(cfg.MQTT.QoS),
		}, ledger, locations, logger)

		if err := bridge.Start(); err != nil {
			logger.Fatal().Err(err).Msg("start mqtt bridge")
		}
		defer bridge.Close()
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	pruner.Stop()
}
