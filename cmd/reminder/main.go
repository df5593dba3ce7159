package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"payment_reminder/internal/app"
	"payment_reminder/internal/domain/notification"
	"payment_reminder/internal/infra/analytics"
	"payment_reminder/internal/infra/config"
	idb "payment_reminder/internal/infra/database"
	"payment_reminder/internal/infra/httpapi"
	"payment_reminder/internal/infra/logger"
	"payment_reminder/internal/infra/memory"
	"payment_reminder/internal/infra/metrics"
	"payment_reminder/internal/infra/reliability"
	"payment_reminder/internal/infra/scheduler"
	"payment_reminder/internal/infra/sns"
	"payment_reminder/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const userAgent = "payment-reminder/telegram"

func main() {
	fmt.Println("Payment Reminder starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Location.String(),
		"locale":      cfg.Locale,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database schema")
	}
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	subscriptionRepo := idb.NewPostgresSubscriptionRepository(db)
	settingsRepo := idb.NewPostgresSettingsRepository(db)
	scheduleRepo := idb.NewPostgresScheduleRepository(db)

	var reliabilityLog notification.ReliabilityLog = memory.NewReliabilityLog(notification.ReliabilityLogLimit)
	if cfg.RedisAddr != "" {
		rdb := reliability.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger.Component("redis"))
		defer rdb.Close()
		reliabilityLog = reliability.NewRedisLog(rdb, logger.Component("reliability"))
		mainLogger.WithField("addr", cfg.RedisAddr).Info("Reliability log stored in Redis")
	}

	var mirror notification.Sink
	if cfg.SNSTopicArn != "" {
		m, err := sns.NewMirrorFromRegion(ctx, cfg.SNSRegion, cfg.SNSTopicArn)
		if err != nil {
			mainLogger.WithError(err).Warn("SNS mirror disabled")
		} else {
			mirror = m
		}
	}

	metrics.Register()

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Chat() != nil {
				entry = entry.WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	messages := app.NewMessages(cfg.Locale)
	adapter := telegram.NewTelebotAdapter(bot, cfg.TelegramChatID, cfg.AppURL, messages.Tag(), logger.Component("telegram"))
	events := analytics.NewLogSink(logger.Component("analytics"))

	// One lock for sweeps and refreshes: a sweep always sees a complete schedule.
	lock := &sync.Mutex{}

	scheduleService := app.NewScheduleService(app.ScheduleDeps{
		SubscriptionRepo: subscriptionRepo,
		SettingsProvider: settingsRepo,
		ScheduleRepo:     scheduleRepo,
		Location:         cfg.Location,
		Lock:             lock,
		Logger:           logger.Component("schedule"),
	})
	renderer := app.NewNotificationRenderer(app.RendererDeps{
		Sink:     adapter,
		Mirror:   mirror,
		Events:   events,
		Messages: messages,
		Location: cfg.Location,
		Logger:   logger.Component("renderer"),
	})
	dispatchService := app.NewDispatchService(app.DispatchDeps{
		ScheduleRepo:     scheduleRepo,
		SubscriptionRepo: subscriptionRepo,
		SettingsProvider: settingsRepo,
		Renderer:         renderer,
		Permissions:      adapter,
		Reliability:      reliabilityLog,
		Events:           events,
		Location:         cfg.Location,
		MissedThreshold:  cfg.MissedThreshold,
		UserAgent:        userAgent,
		Lock:             lock,
		Logger:           logger.Component("dispatch"),
	})
	clickRouter := app.NewClickRouter(subscriptionRepo, adapter, adapter, cfg.Location, logger.Component("clicks"))

	// Register Handlers
	botLogger := logger.Component("bot")
	telegram.RegisterBotCommands(ctx, bot, adapter, scheduleService, cfg.Location, messages.Tag(), botLogger)
	telegram.RegisterClickHandlers(ctx, bot, adapter, clickRouter, botLogger)

	if _, err := dispatchService.SyncNotificationPermissions(ctx); err != nil {
		mainLogger.WithError(err).Warn("Initial permission sync failed")
	}
	if _, err := scheduleService.RefreshSchedule(ctx); err != nil {
		mainLogger.WithError(err).Warn("Initial schedule refresh failed")
	}

	reminderScheduler := scheduler.NewReminderScheduler(
		dispatchService,
		scheduleService,
		logger.Component("scheduler"),
		cfg.Location,
		cfg.CronSpecDispatch,
		cfg.CronSpecScheduleRefresh,
	)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Dispatcher:  dispatchService,
			Scheduler:   scheduleService,
			Reliability: reliabilityLog,
			Logger:      logger.Component("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server shutdown")
	}
	bot.Stop()
	reminderScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
