package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/config"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/detector"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/server"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/utils/log"
)

func main() {
	configPath := flag.String("config", "lsm-server.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	if cfg.Server.Debug {
		log.SetDebug()
	}
	defer log.Sync()

	store, err := signstore.Open(cfg.Store)
	if err != nil {
		log.Fatal("failed to open sign store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer store.Close()

	// A dead store is not fatal: matches degrade into negative verdicts
	// and the store may come up later.
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Warn("sign store unreachable at startup", zap.Error(err))
	} else {
		log.Info("sign store reachable", zap.String("backend", cfg.Store.Backend))
	}
	cancel()

	det := newDetector(cfg)
	defer det.Close()

	srv := server.New(server.Config{
		Store:     store,
		Detector:  det,
		Mode:      cfg.Game.Mode,
		Threshold: cfg.Game.Threshold,
		Workers:   cfg.Server.Workers,
	})
	defer srv.Close()

	log.Info("server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("mode", string(cfg.Game.Mode)),
		zap.Float64("threshold", cfg.Game.Threshold))

	if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// newDetector prefers MediaPipe and falls back to the mock detector when
// the Python service is unavailable.
func newDetector(cfg *config.Config) detector.Detector {
	if cfg.Detector.Mock {
		log.Info("using mock hand detection")
		return detector.NewMockDetector()
	}

	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands(),
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConf,
	})
	if err != nil {
		log.Warn("MediaPipe unavailable, using mock detector", zap.Error(err))
		return detector.NewMockDetector()
	}

	log.Info("using MediaPipe hand detection", zap.Int("max_hands", cfg.MaxHands()))
	return mp
}
