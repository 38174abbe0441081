package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/bot"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/config"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/database"
	logger "github.com/sanjaroktamovrasmiy/uzbek-talim/internal/logging"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/router"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/services"
)

func main() {
	// Bootstrap logger with defaults; config isn't loaded yet.
	log, err := logger.Init(logger.Options{Directory: "logs", MaxSize: 10, MaxBackups: 3, MaxAge: 7})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := config.Init("config", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Re-initialize with the configured rotation settings.
	log, err = logger.Init(logger.Options{
		Directory:  config.Conf.Logging.Directory,
		MaxSize:    config.Conf.Logging.MaxSize,
		MaxBackups: config.Conf.Logging.MaxBackups,
		MaxAge:     config.Conf.Logging.MaxAge,
		Compress:   config.Conf.Logging.Compress,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	database.Init(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The Telegram bot is optional; without it notifications stay
	// in-platform only.
	var sender services.TelegramSender
	if config.Conf.Bot.Enabled && config.Conf.Bot.Token != "" {
		tgBot, err := bot.New(config.Conf.Bot.Token, log)
		if err != nil {
			log.Fatal("Failed to start Telegram bot", zap.Error(err))
		}
		sender = tgBot
		go tgBot.Start(ctx)
	}

	notifier := services.NewNotifier(sender, log)

	if config.Conf.Scheduler.Enabled {
		scheduler := services.NewScheduler(notifier, config.Conf.Scheduler.ReminderLeadNumMin, log)
		scheduler.Start()
		defer scheduler.Stop()
	}

	r := router.Setup(log, notifier)

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
