// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата сообщества, в котором бот работает (единственный разрешённый групповой чат)
	CommunityChatID int64 `envconfig:"COMMUNITY_CHAT_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"karma_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// Локальный день для лимитов и серий считается в этом поясе, а не в поясе пользователя.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Карма: множители начислений ---
	MultiplierWeekend   float64 `envconfig:"MULTIPLIER_WEEKEND" default:"1.5"`
	MultiplierFestival  float64 `envconfig:"MULTIPLIER_FESTIVAL" default:"2.0"`
	MultiplierEmergency float64 `envconfig:"MULTIPLIER_EMERGENCY" default:"2.0"`
	MultiplierEarlyBird float64 `envconfig:"MULTIPLIER_EARLY_BIRD" default:"1.25"`
	MultiplierNightOwl  float64 `envconfig:"MULTIPLIER_NIGHT_OWL" default:"1.25"`

	// Окна «ранней пташки» и «совы» в локальных часах [от, до).
	EarlyBirdStartHour int `envconfig:"EARLY_BIRD_START_HOUR" default:"5"`
	EarlyBirdEndHour   int `envconfig:"EARLY_BIRD_END_HOUR" default:"8"`
	NightOwlStartHour  int `envconfig:"NIGHT_OWL_START_HOUR" default:"22"`
	NightOwlEndHour    int `envconfig:"NIGHT_OWL_END_HOUR" default:"24"`

	// Путь к YAML-календарю городских праздников. Пустой — праздников нет.
	FestivalCalendarPath string `envconfig:"FESTIVAL_CALENDAR_PATH" default:""`

	// --- Серии ---
	StreakReminderHour    int `envconfig:"STREAK_REMINDER_HOUR" default:"20"`
	StreakReminderMinDays int `envconfig:"STREAK_REMINDER_MIN_DAYS" default:"3"`

	// --- Рейтинг ---
	LeaderboardSize int `envconfig:"LEADERBOARD_SIZE" default:"10"`
	// Cron-выражение еженедельной публикации топа в чат
	LeaderboardPostCron string `envconfig:"LEADERBOARD_POST_CRON" default:"0 12 * * 1"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureRewardsEnabled bool `envconfig:"FEATURE_REWARDS_ENABLED" default:"true"`
	FeatureBadgesEnabled  bool `envconfig:"FEATURE_BADGES_ENABLED" default:"true"`
	FeatureStreaksEnabled bool `envconfig:"FEATURE_STREAKS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.CommunityChatID == 0 {
		return fmt.Errorf("COMMUNITY_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	for _, m := range []float64{c.MultiplierWeekend, c.MultiplierFestival, c.MultiplierEmergency, c.MultiplierEarlyBird, c.MultiplierNightOwl} {
		if m <= 0 {
			return fmt.Errorf("множители начислений должны быть > 0")
		}
	}
	if !validHourWindow(c.EarlyBirdStartHour, c.EarlyBirdEndHour) || !validHourWindow(c.NightOwlStartHour, c.NightOwlEndHour) {
		return fmt.Errorf("некорректные окна EARLY_BIRD/NIGHT_OWL (часы 0-24, начало < конца)")
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("LEADERBOARD_SIZE должен быть > 0")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("некорректный APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	if _, err := cron.ParseStandard(c.LeaderboardPostCron); err != nil {
		return fmt.Errorf("некорректный LEADERBOARD_POST_CRON %q: %w", c.LeaderboardPostCron, err)
	}
	return nil
}

func validHourWindow(from, to int) bool {
	return from >= 0 && to <= 24 && from < to
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
