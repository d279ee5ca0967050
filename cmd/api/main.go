package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dina02092005/crm-sub000/internal/adapters"
	"github.com/Dina02092005/crm-sub000/internal/customers"
	"github.com/Dina02092005/crm-sub000/internal/email"
	"github.com/Dina02092005/crm-sub000/internal/employees"
	"github.com/Dina02092005/crm-sub000/internal/events"
	apphttp "github.com/Dina02092005/crm-sub000/internal/http"
	"github.com/Dina02092005/crm-sub000/internal/leads"
	"github.com/Dina02092005/crm-sub000/internal/notification"
	"github.com/Dina02092005/crm-sub000/internal/reminder"
	"github.com/Dina02092005/crm-sub000/internal/tasks"
	"github.com/Dina02092005/crm-sub000/migrations"
	"github.com/Dina02092005/crm-sub000/platform/config"
	"github.com/Dina02092005/crm-sub000/platform/db"
	"github.com/Dina02092005/crm-sub000/platform/logger"
	"github.com/Dina02092005/crm-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	employeesModule := employees.NewModule(pool, cfg, val, log)

	// Notification module subscribes to domain events.
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	notificationModule.SetEmployeeReader(adapters.NewNotificationRecipientsAdapter(employeesModule.Repository()))

	directory := adapters.NewEmployeeDirectoryAdapter(employeesModule.Repository())
	leadsModule := leads.NewModule(pool, directory, eventBus, val, log)

	customersModule := customers.NewModule(pool, log)
	leadsModule.Service().SetCustomerProvisioner(customersModule.Service())

	tasksModule := tasks.NewModule(pool, eventBus, val, log)

	// The sweep is exposed over HTTP for on-demand runs; the scheduler binary
	// drives the periodic cadence.
	sweep := reminder.NewSweep(tasksModule.Repository(), notificationModule, log)
	reminderModule := reminder.NewModule(sweep)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			employeesModule,
			leadsModule,
			tasksModule,
			customersModule,
			notificationModule,
			reminderModule,
		},
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
