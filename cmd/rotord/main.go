package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/svw-info/rotord/internal/config"
	"github.com/svw-info/rotord/internal/logger"
	"github.com/svw-info/rotord/internal/rotord"
)

var (
	configPath = flag.String("config", "", "Path to configuration file")
	logLevel   = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	watchDir   = flag.String("watch-dir", "", "Override the watched directory")
	maxFiles   = flag.Int("max-files", 0, "Override the number of retained generations per family")
	families   = flag.String("families", "", "Comma-separated override of the watched family names")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *logLevel != "" {
		cfg.Logger.Level = *logLevel
	}
	if *watchDir != "" {
		cfg.Watch.Directory = *watchDir
	}
	if *maxFiles > 0 {
		cfg.Watch.MaxFiles = *maxFiles
	}
	if *families != "" {
		cfg.Watch.Families = splitFamilies(*families)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	factory, err := logger.NewFactory(&cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}

	log, err := factory.Create("rotord")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	metrics := logger.NewMetricsManager(cfg.Logger.Metrics.Enabled)

	log.WithField("directory", cfg.Watch.Directory).
		WithField("families", cfg.Watch.Families).
		WithField("max_files", cfg.Watch.MaxFiles).
		Info("rotord: starting")

	coordinator, err := rotord.New(rotord.Config{
		Directory:              cfg.Watch.Directory,
		Families:               cfg.Watch.Families,
		MaxFiles:               cfg.Watch.MaxFiles,
		DeleteObsoleteArchives: cfg.Watch.DeleteObsoleteArchives,
		DeleteObsoleteLogs:     cfg.Watch.DeleteObsoleteLogs,
		ShutdownDrainDeadline:  cfg.Watch.ShutdownDrainDeadline.ToDuration(),
	}, log, metrics, nil)
	if err != nil {
		log.WithError(err).Fatal("rotord: failed to construct coordinator")
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.WithField("signal", sig).Info("rotord: received shutdown signal")
		cancel()
	}()

	if err := coordinator.Run(ctx); err != nil {
		if errors.Is(err, rotord.ErrWatchFailed) {
			log.WithError(err).Fatal("rotord: directory watch failed")
		}
		log.WithError(err).Fatal("rotord: exited with error")
	}

	log.Info("rotord: stopped")
}

func splitFamilies(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
