package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BenWassa/vox/internal/api"
	"github.com/BenWassa/vox/internal/app"
	"github.com/BenWassa/vox/internal/bot"
	"github.com/BenWassa/vox/internal/config"
	"github.com/BenWassa/vox/internal/dashboard"
	vlog "github.com/BenWassa/vox/internal/logger"
	"github.com/BenWassa/vox/internal/quiz"
	"github.com/BenWassa/vox/internal/review"
	"github.com/BenWassa/vox/internal/scheduler"
	"github.com/BenWassa/vox/internal/snapshot"
	"github.com/BenWassa/vox/internal/spaced_repetition"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := vlog.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := app.Open(cfg, nil, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer stores.Close()

	policy := spaced_repetition.NewLeitner()
	// already validated by config.Load
	policy.OnMiss, _ = spaced_repetition.ParseMissPolicy(cfg.SRS.MissPolicy)

	opts := []review.Option{review.WithLogger(logger)}
	if cfg.SRS.ShuffleWindow > 0 {
		opts = append(opts, review.WithPicker(review.NewShuffledPicker(stores.Progress, cfg.SRS.ShuffleWindow, cfg.SRS.ShuffleSeed)))
	}
	engine := review.NewEngine(stores.Progress, stores.Catalog, stores.Guard, policy, stores.Clock, opts...)
	summary := dashboard.NewAggregator(stores.Progress, stores.Clock)

	server := api.NewServer(api.Deps{
		Engine:         engine,
		Dashboard:      summary,
		Codec:          snapshot.NewCodec(stores.Progress, stores.Guard, stores.Clock),
		Grammar:        stores.Catalog,
		Backups:        stores.Guard,
		Quiz:           quiz.NewModule(stores.Catalog, cfg.SRS.ShuffleSeed),
		Logger:         logger,
		MaxImportBytes: cfg.HTTP.MaxImportBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	var jobs *scheduler.Scheduler
	if cfg.Reminder.Enabled {
		var notifier scheduler.Notifier = bot.NewLogNotifier(logger)
		if cfg.Telegram.Token != "" {
			b, err := bot.New(bot.DefaultConfig(cfg.Telegram.Token, cfg.Telegram.ChatID), summary, logger)
			if err != nil {
				logger.Fatal("failed to create bot", zap.Error(err))
			}
			notifier = b
			go func() {
				if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("bot stopped", zap.Error(err))
				}
			}()
		}

		jobs = scheduler.New(stores.Progress, notifier, stores.Clock, scheduler.Config{
			Interval:  cfg.Reminder.Interval,
			StartHour: cfg.Reminder.StartHour,
			EndHour:   cfg.Reminder.EndHour,
		}, logger)
		if err := jobs.Start(); err != nil {
			logger.Fatal("failed to start reminders", zap.Error(err))
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received signal", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}
	cancel()

	if jobs != nil {
		jobs.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}
