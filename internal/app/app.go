// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"gorodok.ru/karma-bot/internal/bot"
	"gorodok.ru/karma-bot/internal/bot/filters"
	"gorodok.ru/karma-bot/internal/config"
	"gorodok.ru/karma-bot/internal/db/postgres"
	"gorodok.ru/karma-bot/internal/features/activity"
	"gorodok.ru/karma-bot/internal/features/admin"
	"gorodok.ru/karma-bot/internal/features/leaderboard"
	"gorodok.ru/karma-bot/internal/features/members"
	"gorodok.ru/karma-bot/internal/features/rewards"
	"gorodok.ru/karma-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Часовой пояс и календарь праздников ===
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки часового пояса %q: %w", cfg.AppTimezone, err)
	}
	calendar, err := config.LoadFestivalCalendar(cfg.FestivalCalendarPath, loc)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки календаря праздников: %w", err)
	}

	// === 4. Репозитории ===
	memberRepo := members.NewRepository(pool)
	activityRepo := activity.NewRepository(pool)
	leaderboardRepo := leaderboard.NewRepository(pool)
	rewardsRepo := rewards.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 5. Сервисы ===
	memberService := members.NewService(memberRepo)
	if err := memberService.BootstrapAdmins(ctx, cfg.AdminIDs); err != nil {
		return nil, fmt.Errorf("ошибка назначения администраторов: %w", err)
	}
	activityService := activity.NewService(activityRepo, cfg, calendar, loc)
	leaderboardService := leaderboard.NewService(leaderboardRepo, cfg, loc)
	rewardsService := rewards.NewService(rewardsRepo, loc)
	adminService := admin.NewService(adminRepo, memberRepo, cfg)

	// === 6. Обработчики ===
	memberHandler := members.NewHandler(memberService)
	activityHandler := activity.NewHandler(activityService, botAPI)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService, botAPI)
	rewardsHandler := rewards.NewHandler(rewardsService, botAPI)
	adminHandler := admin.NewHandler(adminService, memberService, activityService, rewardsService, botAPI)

	// === 7. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.CommunityChatID, memberService, botAPI)

	// === 8. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService, memberHandler,
		activityService, activityHandler,
		leaderboardHandler,
		rewardsService, rewardsHandler,
		adminHandler,
		chatFilter,
	)

	// === 9. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, loc, activityService, leaderboardService,
		b.SendMessageToUser, b.SendMessageToChat)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.RunMigrations(ctx, pool, "migrations"); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002KarmaStates},
		{3, migration003Transactions},
		{4, migration004Badges},
		{5, migration005EmergencyDays},
		{6, migration006Rewards},
		{7, migration007Redemptions},
		{8, migration008Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    role VARCHAR(64),
    is_admin BOOLEAN DEFAULT FALSE,
    is_banned BOOLEAN DEFAULT FALSE,
    joined_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
`

var migration002KarmaStates = `
CREATE TABLE IF NOT EXISTS karma_states (
    user_id BIGINT PRIMARY KEY REFERENCES members(user_id),
    total_points BIGINT DEFAULT 0,
    counter_day DATE,
    daily_counters JSONB NOT NULL DEFAULT '{}',
    last_activity_day DATE,
    current_streak INTEGER DEFAULT 0,
    longest_streak INTEGER DEFAULT 0,
    reports_made BIGINT DEFAULT 0,
    recycles_logged BIGINT DEFAULT 0,
    forum_posts BIGINT DEFAULT 0,
    forum_replies BIGINT DEFAULT 0,
    events_attended BIGINT DEFAULT 0,
    micro_actions BIGINT DEFAULT 0,
    supplies_picked_up BIGINT DEFAULT 0,
    thanks_received BIGINT DEFAULT 0,
    penalties BIGINT DEFAULT 0,
    total_earned BIGINT DEFAULT 0,
    reminder_sent_today BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_karma_states_last_activity ON karma_states(last_activity_day);
`

var migration003Transactions = `
CREATE TABLE IF NOT EXISTS point_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    kind VARCHAR(32) NOT NULL,
    raw_points BIGINT NOT NULL,
    multiplier DOUBLE PRECISION NOT NULL DEFAULT 1,
    final_points BIGINT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    applied_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_transactions_user ON point_transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_point_transactions_applied_at ON point_transactions(applied_at DESC);
`

var migration004Badges = `
CREATE TABLE IF NOT EXISTS badges_earned (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    badge_id VARCHAR(64) NOT NULL,
    earned_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, badge_id)
);
CREATE INDEX IF NOT EXISTS idx_badges_earned_user ON badges_earned(user_id);
`

var migration005EmergencyDays = `
CREATE TABLE IF NOT EXISTS emergency_days (
    day DATE PRIMARY KEY,
    declared_by BIGINT,
    declared_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

var migration006Rewards = `
CREATE TABLE IF NOT EXISTS rewards (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    cost BIGINT NOT NULL,
    kind VARCHAR(32) NOT NULL DEFAULT 'instant',
    stock INTEGER,
    active BOOLEAN DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW()
);
INSERT INTO rewards (title, description, cost, kind, stock)
SELECT * FROM (VALUES
    ('Скидка 10% в «Городской кофейне»', 'Купон действует месяц', 100::bigint, 'instant', NULL::integer),
    ('Бесплатный проездной на день', 'Одна поездка по городу', 250::bigint, 'instant', 50),
    ('Футболка «Городок»', 'Фирменная футболка сообщества', 500::bigint, 'receipt_review', 20),
    ('Экскурсия в музей города', 'Для двоих, по чеку-подтверждению', 800::bigint, 'receipt_review', NULL::integer)
) AS seed(title, description, cost, kind, stock)
WHERE NOT EXISTS (SELECT 1 FROM rewards);
`

var migration007Redemptions = `
CREATE TABLE IF NOT EXISTS redemptions (
    id VARCHAR(36) PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    reward_id BIGINT NOT NULL REFERENCES rewards(id),
    points_cost BIGINT NOT NULL,
    kind VARCHAR(32) NOT NULL,
    status VARCHAR(16) NOT NULL DEFAULT 'pending',
    receipt_file_id VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    resolved_at TIMESTAMP,
    resolver_id BIGINT
);
CREATE INDEX IF NOT EXISTS idx_redemptions_user ON redemptions(user_id);
CREATE INDEX IF NOT EXISTS idx_redemptions_status ON redemptions(status);
`

var migration008Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT REFERENCES members(user_id),
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    last_activity TIMESTAMP DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
