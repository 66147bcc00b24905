package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"fleet_backoffice/internal/app"
	"fleet_backoffice/internal/domain/notification"
	"fleet_backoffice/internal/infra/config"
	idb "fleet_backoffice/internal/infra/database"
	"fleet_backoffice/internal/infra/httpapi"
	"fleet_backoffice/internal/infra/logger"
	"fleet_backoffice/internal/infra/scheduler"
	"fleet_backoffice/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.For("main")

	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"admin_id":    cfg.AdminTelegramID,
		"manager_id":  cfg.ManagerTelegramID,
		"timezone":    cfg.Location.String(),
		"bot_enabled": cfg.BotEnabled(),
	}).Info("Configuration loaded.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database schema")
	}
	mainLogger.Info("Database connection established and schema applied.")

	// Initialize Repositories
	vehicleRepo := idb.NewPostgresVehicleRepository(db)
	tripRepo := idb.NewPostgresTripRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)

	now := func() time.Time { return time.Now().In(cfg.Location) }

	// Telegram bot is optional; without it batches are only logged.
	var (
		bot        *telebot.Bot
		dispatcher notification.Dispatcher = app.NewLogDispatcher(logger.For("dispatcher"))
	)
	if cfg.BotEnabled() {
		botLogger := logger.For("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{
						"text":      c.Text(),
						"sender_id": c.Sender().ID,
						"chat_id":   c.Chat().ID,
					})
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		dispatcher = app.NewTelegramDispatcher(telegram.NewTelebotAdapter(bot), cfg.ManagerTelegramID, logger.For("dispatcher"))
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN not set. Bot disabled; batches will be logged only.")
	}

	// Initialize Services
	notificationService := app.NewNotificationServiceImpl(
		vehicleRepo,
		notificationRepo,
		dispatcher,
		logger.For("notification_service"),
		now,
		cfg.CatchUpDays,
	)
	tripService := app.NewTripService(tripRepo, logger.For("trip_service"), now)
	adminService := app.NewFleetAdminService(vehicleRepo, cfg.AdminTelegramID)

	// Initialize Scheduler
	notifScheduler := scheduler.NewPlateNotificationScheduler(
		notificationService,
		logger.For("scheduler"),
		cfg.Location,
		cfg.CronSpecNotify,
		cfg.DispatchTimeout,
	)
	if err := notifScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	// Register Handlers
	if bot != nil {
		handlerLogger := logger.For("telegram")
		commands := telegram.NewCommands(adminService, notificationService, cfg.AdminTelegramID, cfg.ManagerTelegramID, handlerLogger)
		telegram.RegisterBotCommands(ctx, bot, commands, handlerLogger)
		telegram.RegisterAdminHandlers(ctx, bot, commands, handlerLogger)
		go bot.Start()
		mainLogger.Info("Telegram bot started.")
	}

	// HTTP API
	httpLogger := logger.For("http")
	server := httpapi.NewApp(httpapi.NewHandlers(tripService, notificationService, httpLogger), httpLogger)
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening.")
		if err := server.Listen(cfg.HTTPAddr); err != nil {
			mainLogger.WithError(err).Error("HTTP server stopped with error")
			stop()
		}
	}()

	mainLogger.Info("Application setup complete.")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		mainLogger.WithError(err).Warn("HTTP server shutdown error")
	}
	if bot != nil {
		bot.Stop()
	}
	notifScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
