package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	TelegramToken   string
	BaseAdminChatID int64
	DatabaseURL     string
	BotDebug        bool
	LogLevel        logrus.Level

	// Team default calendar, used when neither the resource nor the team has one stored.
	DefaultTimezone string

	SLAHoursPerDay   float64
	AckMinutes       int
	TaskSLAHours     float64
	PhaseSLAHours    float64
	ChangeSLAMinutes int
	WebsitePhases    []string

	CountdownTick      time.Duration
	CountdownTTL       time.Duration
	EscalationInterval time.Duration
	UrgentThreshold    time.Duration

	HolidaysFile string
}

var instance *BotConfig
var once sync.Once

// GetBotConfig loads the configuration once and exits on error.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load reads the configuration from the process environment.
func Load() (*BotConfig, error) {
	cfg := &BotConfig{}

	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	if cfg.TelegramToken == "" {
		return nil, errors.New("could not get bot token")
	}

	cfg.BaseAdminChatID = getEnvAsInt("BASE_ADMIN_CHAT_ID", -2)
	if cfg.BaseAdminChatID == -2 {
		return nil, errors.New("could not get admin chat id")
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	if cfg.DatabaseURL == "" {
		return nil, errors.New("could not get db url")
	}

	cfg.BotDebug = getEnvAsBool("BOT_DEBUG", false)
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.DefaultTimezone = getEnv("DEFAULT_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, err
	}

	cfg.SLAHoursPerDay = getEnvAsFloat("SLA_HOURS_PER_DAY", 9)
	cfg.AckMinutes = int(getEnvAsInt("ACK_MINUTES", 30))
	cfg.TaskSLAHours = getEnvAsFloat("TASK_SLA_HOURS", 9)
	cfg.PhaseSLAHours = getEnvAsFloat("PHASE_SLA_HOURS", 9)
	cfg.ChangeSLAMinutes = int(getEnvAsInt("CHANGE_SLA_MINUTES", 180))
	cfg.WebsitePhases = getEnvAsList("WEBSITE_PHASES", []string{"Design", "Development", "Testing", "Launch"})
	if cfg.AckMinutes <= 0 || cfg.TaskSLAHours <= 0 || cfg.PhaseSLAHours <= 0 || cfg.ChangeSLAMinutes <= 0 {
		return nil, errors.New("SLA budgets must be positive")
	}

	cfg.CountdownTick = getEnvAsDuration("COUNTDOWN_TICK", 5*time.Second)
	cfg.CountdownTTL = getEnvAsDuration("COUNTDOWN_TTL", 15*time.Minute)
	cfg.EscalationInterval = getEnvAsDuration("ESCALATION_INTERVAL", time.Minute)
	cfg.UrgentThreshold = getEnvAsDuration("URGENT_THRESHOLD", time.Hour)
	if cfg.CountdownTick <= 0 || cfg.EscalationInterval <= 0 {
		return nil, errors.New("tick intervals must be positive")
	}

	cfg.HolidaysFile = getEnv("HOLIDAYS_FILE", "")

	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}

	var items []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultVal
	}
	return items
}
