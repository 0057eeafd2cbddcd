package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"todo-planner/internal/api"
	"todo-planner/internal/bot"
	"todo-planner/internal/config"
	"todo-planner/internal/logging"
	"todo-planner/internal/repository"
	"todo-planner/internal/repository/mongostore"
	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

const (
	shutdownTimeout = 10 * time.Second
	jobTimeout      = 30 * time.Second
)

// app holds everything both commands share.
type app struct {
	cfg       config.Config
	log       *zap.Logger
	users     service.UserRepository
	todos     service.TodoRepository
	todoSvc   *service.TodoService
	reminders *service.ReminderService
	closeDB   func(context.Context) error
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	if err := a.openStore(ctx); err != nil {
		_ = log.Sync()
		return nil, err
	}
	a.todoSvc = service.NewTodoService(a.todos)
	a.reminders = service.NewReminderService(a.todos)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if mongostore.IsMongoURL(a.cfg.DatabaseURL) {
		store, err := mongostore.Open(ctx, a.cfg.DatabaseURL, a.cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		a.users, a.todos, a.closeDB = store.Users(), store.Todos(), store.Close
		a.log.Info("using mongodb store", zap.String("database", a.cfg.MongoDatabase))
		return nil
	}

	db, err := repository.NewDB(a.cfg.DatabaseURL, a.log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	a.users, a.todos = repository.NewUserRepository(db), repository.NewTodoRepository(db)
	a.closeDB = func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	a.log.Info("using sqlite store", zap.String("path", a.cfg.DatabaseURL))
	return nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.closeDB(ctx); err != nil {
		a.log.Warn("close db", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) newBot() (*bot.Bot, error) {
	if a.cfg.TelegramToken == "" {
		return nil, nil
	}
	return bot.New(a.cfg.TelegramToken, a.users, a.todoSvc, a.reminders, a.cfg.Location, a.log.Named("bot"))
}

func runServe(parent context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	validator, err := validation.New()
	if err != nil {
		return fmt.Errorf("validator: %w", err)
	}

	var google service.GoogleVerifier
	if a.cfg.GoogleClientID != "" {
		google = service.NewTokenInfoVerifier(a.cfg.GoogleClientID)
	}

	srv := api.NewServer(api.Options{
		Auth:        service.NewAuthService(a.users, google, a.cfg.JWTSecret, a.cfg.TokenTTL),
		Profiles:    service.NewProfileService(a.users),
		Todos:       a.todoSvc,
		Validator:   validator,
		Metrics:     api.NewMetrics(),
		Logger:      a.log.Named("http"),
		Location:    a.cfg.Location,
		CORSOrigins: a.cfg.CORSOrigins,
	})
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	telegramBot, err := a.newBot()
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	if telegramBot != nil {
		scheduler := service.NewSchedulerService(a.cfg.Location, a.log)
		id, err := scheduler.ScheduleDaily(a.cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()
			if err := telegramBot.SendDailyDigests(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("daily digest", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule digests: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		a.log.Info("digest scheduled", zap.Time("next", scheduler.Next(id)))

		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				a.log.Error("bot stopped", zap.Error(err))
			}
		}()
	} else {
		a.log.Info("TELEGRAM_TOKEN not set, bot and digests disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", zap.String("addr", a.cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server graceful shutdown failed: %w", err)
	}
	a.log.Info("shutdown complete")
	return nil
}

func runDigest(parent context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.close()

	telegramBot, err := a.newBot()
	if err != nil {
		return fmt.Errorf("bot: %w", err)
	}
	if telegramBot == nil {
		return errors.New("TELEGRAM_TOKEN is required to send digests")
	}

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	return telegramBot.SendDailyDigests(jobCtx)
}
