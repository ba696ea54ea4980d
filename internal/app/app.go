// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/bot"
	"nookbot/internal/bot/filters"
	"nookbot/internal/config"
	"nookbot/internal/db/postgres"
	"nookbot/internal/features/accounts"
	"nookbot/internal/features/admin"
	"nookbot/internal/features/economy"
	"nookbot/internal/features/leaderboard"
	"nookbot/internal/features/quests"
	"nookbot/internal/features/requests"
	"nookbot/internal/jobs"
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

	// === 3. Репозитории ===
	accountRepo := accounts.NewRepository(pool)
	economyRepo := economy.NewRepository(pool, cfg.EconomyDailyBase, cfg.EconomyDailyDivisor)
	requestRepo := requests.NewRepository(pool)
	leaderboardRepo := leaderboard.NewRepository(pool)
	questRepo := quests.NewRepository(pool)

	// === 4. Сервисы ===
	accountService := accounts.NewService(accountRepo)
	economyService := economy.NewService(economyRepo, cfg.EconomyStickerTax)
	requestService := requests.NewService(requestRepo)
	leaderboardService := leaderboard.NewService(leaderboardRepo, cfg.ImmunityFraction)
	questService := quests.NewService(questRepo, economyService, cfg.QuestReward, cfg.QuestMuteDuration)

	// Каталог квестов проверяется один раз при старте
	quests.MustValidateCatalog()

	// === 5. Обработчики ===
	economyHandler := economy.NewHandler(economyService, accountService, botAPI)
	requestHandler := requests.NewHandler(requestService, accountService, botAPI)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService, accountService, botAPI, cfg.SitMuteDuration)
	questHandler := quests.NewHandler(questService, accountService, botAPI)
	adminHandler := admin.NewHandler(economyService, accountService, botAPI, cfg.IsAdmin)

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.GroupChatID, accountService, botAPI)

	// === 7. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		accountService,
		economyHandler,
		requestHandler,
		leaderboardHandler,
		questHandler,
		adminHandler,
		chatFilter,
	)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(requestService, accountService, cfg.RequestRetention)

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
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Accounts},
		{2, migration002Transactions},
		{3, migration003PendingRequests},
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

var migration001Accounts = `
CREATE TABLE IF NOT EXISTS accounts (
    user_id BIGINT PRIMARY KEY,
    username VARCHAR(255),
    balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
    last_claim_date DATE,
    last_quest_date DATE,
    muted_until TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
CREATE INDEX IF NOT EXISTS idx_accounts_balance ON accounts(balance DESC);
`

var migration002Transactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES accounts(user_id),
    kind VARCHAR(50) NOT NULL,
    amount BIGINT NOT NULL,
    target_user_id BIGINT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

var migration003PendingRequests = `
CREATE TABLE IF NOT EXISTS pending_requests (
    request_id UUID PRIMARY KEY,
    from_id BIGINT NOT NULL,
    to_id BIGINT NOT NULL,
    from_username VARCHAR(255),
    to_username VARCHAR(255),
    amount BIGINT NOT NULL CHECK (amount > 0),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_pending_requests_created_at ON pending_requests(created_at);
`
