package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"orgscan/internal/config"
	"orgscan/internal/extract"
	"orgscan/internal/github"
	"orgscan/internal/jobs"
	"orgscan/internal/logging"
	"orgscan/internal/pdftext"
	"orgscan/internal/pipeline"
	"orgscan/internal/server"
	"orgscan/internal/worker"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			logger, err := logging.New(logging.Options{
				Level:    cfg.Logging.Level,
				Format:   cfg.Logging.Format,
				FilePath: filepath.Join(cfg.Paths.LogDir, "orgscan.log"),
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another orgscan instance holds %s", cfg.LockPath())
			}
			defer lock.Unlock() //nolint:errcheck

			store, err := jobs.Open(cfg)
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}
			defer store.Close()

			engine := buildExtractionEngine(ctx, cfg, logger)

			lookup := github.NewClient(github.Config{
				Token:             cfg.GitHub.Token,
				BaseURL:           cfg.GitHub.BaseURL,
				MemberLimit:       cfg.GitHub.MemberLimit,
				MemberPageSize:    cfg.GitHub.MemberPageSize,
				RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
				Timeout:           time.Duration(cfg.GitHub.RequestTimeout) * time.Second,
			}, github.WithLogger(logger))

			proc := pipeline.New(store, pdftext.NewCLI(), engine, lookup, logger,
				pipeline.WithSimulatedDelay(time.Duration(cfg.Workers.SimulatedDelaySeconds)*time.Second))

			var dispatcher worker.Dispatcher
			if cfg.Workers.NATSURL != "" {
				bus, err := worker.ConnectBus(cfg.Workers.NATSURL)
				if err != nil {
					return err
				}
				defer bus.Close() //nolint:errcheck

				pool, err := worker.StartPool(bus, cfg.Workers.Subject, cfg.Workers.QueueGroup, cfg.Workers.Count, proc, logger)
				if err != nil {
					return err
				}
				defer pool.Close() //nolint:errcheck

				dispatcher = worker.NewPublisher(bus, cfg.Workers.Subject, store, logger)
			} else {
				dispatcher = worker.NewInline(store, proc, logger)
			}
			defer dispatcher.Close() //nolint:errcheck

			srv := server.New(cfg, store, dispatcher, logger)
			serveErr := make(chan error, 1)
			go func() {
				serveErr <- srv.Start()
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("api server: %w", err)
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("server shutdown", logging.Error(err))
			}
			logger.Info("orgscan shut down")
			return nil
		},
	}
}

// buildExtractionEngine assembles the name extraction cascade from whatever
// backends are configured. The deterministic fallback always anchors it, so a
// fully offline deployment still works.
func buildExtractionEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) *extract.Engine {
	strategies := make([]extract.Strategy, 0, 3)

	if cfg.LLM.GeminiAPIKey != "" {
		gemini, err := extract.NewGemini(ctx, extract.GeminiConfig{
			APIKey:  cfg.LLM.GeminiAPIKey,
			Model:   cfg.LLM.GeminiModel,
			BaseURL: cfg.LLM.GeminiBaseURL,
		})
		if err != nil {
			logger.Warn("gemini backend unavailable", logging.Error(err))
		} else {
			strategies = append(strategies, gemini)
		}
	}

	hfOpts := []extract.HuggingFaceOption{
		extract.WithHuggingFaceHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.LLM.RequestTimeout) * time.Second,
		}),
	}
	if cfg.LLM.HuggingFaceURL != "" {
		hfOpts = append(hfOpts, extract.WithHuggingFaceURL(cfg.LLM.HuggingFaceURL))
	}
	strategies = append(strategies, extract.NewHuggingFace(cfg.LLM.HuggingFaceAPIKey, hfOpts...))

	strategies = append(strategies, extract.NewFallback())
	return extract.NewEngine(logger, strategies...)
}
