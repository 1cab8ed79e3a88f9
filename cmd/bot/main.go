package main

import (
	"context"
	"math"
	"os/signal"
	"syscall"

	"order-sla-bot/internal/config"
	"order-sla-bot/internal/handler"
	"order-sla-bot/internal/logging"
	"order-sla-bot/internal/repository"
	"order-sla-bot/internal/service"
	"order-sla-bot/pkg/clock"
	"order-sla-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logging.SetLevel(cfg.LogLevel)
	logrus.Info("Config initialized...")

	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance:", err)
	}

	// SQLite leaves foreign keys off unless asked.
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logrus.Warnf("Failed to enable foreign keys: %v", err)
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create user repository")
	}
	calendarRepo, err := repository.NewGormCalendarRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create calendar repository")
	}
	leaveRepo, err := repository.NewGormLeaveRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create leave repository")
	}
	nonWorkingDayRepo, err := repository.NewGormNonWorkingDayRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create non-working day repository")
	}
	taskRepo, err := repository.NewGormTaskRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create task repository")
	}

	clk := clock.Real{}

	nonWorkingDayService := service.NewNonWorkingDayService(nonWorkingDayRepo)
	if cfg.HolidaysFile != "" {
		count, err := nonWorkingDayService.LoadFromJSON(cfg.HolidaysFile)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load holidays")
		}
		logrus.Infof("Loaded %d non-working days from %s", count, cfg.HolidaysFile)
	}

	userService := service.NewUserService(userRepo)
	calendarService := service.NewCalendarService(calendarRepo, cfg.DefaultTimezone)
	leaveService := service.NewLeaveService(leaveRepo, clk)
	schedules := service.NewScheduleResolver(calendarService, leaveRepo, nonWorkingDayService)
	taskService := service.NewTaskService(taskRepo, userRepo, schedules, clk, service.TaskSettings{
		AckMinutes:       cfg.AckMinutes,
		TaskSLAMinutes:   hoursToMinutes(cfg.TaskSLAHours),
		PhaseSLAMinutes:  hoursToMinutes(cfg.PhaseSLAHours),
		ChangeSLAMinutes: cfg.ChangeSLAMinutes,
		WebsitePhases:    cfg.WebsitePhases,
	})
	timerService := service.NewTimerService(schedules, clk, cfg.UrgentThreshold)

	if err := userService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logrus.Warnf("Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logrus.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	client, err := telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
	if err != nil {
		logrus.Fatal("Failed to create Telegram client:", err)
	}
	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	countdowns := service.NewCountdownManager(ctx, clk, cfg.CountdownTick, cfg.CountdownTTL)
	watcher := service.NewWatcher(taskRepo, userService, timerService, client, clk, cfg.EscalationInterval, cfg.SLAHoursPerDay)

	botHandler := handler.NewHandler(
		client,
		userService,
		calendarService,
		leaveService,
		nonWorkingDayService,
		taskService,
		timerService,
		countdowns,
		cfg,
	)

	updates := client.Bot.GetUpdatesChan(client.UpdateConfig)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		watcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		botHandler.HandleUpdates(gctx, updates)
		return nil
	})

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-ctx.Done()

	client.Bot.StopReceivingUpdates()
	countdowns.StopAll()
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Warn("Background workers stopped with error")
	}

	if err := sqlDB.Close(); err != nil {
		logrus.Warnf("Error closing database: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
}

func hoursToMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}
