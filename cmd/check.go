package cmd

import (
	"context"
	"io"

	"reservation-monitor/scraper"
	"reservation-monitor/services"
	"reservation-monitor/storage"
	"reservation-monitor/utils"
)

func runCheck(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("Targets: %d | Dates: %d | Party size: %d | Pause: %dms",
		len(cfg.Targets), len(cfg.Dates), cfg.PartySize, cfg.RateLimitDelay)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var history storage.FindingSink
	if cfg.FindingsCSV != "" {
		history = storage.NewCSVWriter(cfg.FindingsCSV, logger)
	}

	session, err := scraper.NewSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	extractor := scraper.NewSlotScraper(cfg, session, logger)
	monitor := services.NewMonitor(cfg, extractor, store, history, services.NewReporter(out), logger)

	_, err = monitor.Run(ctx)
	return err
}
