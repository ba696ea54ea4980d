// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID группового чата, в котором живёт экономика (единственный разрешённый)
	GroupChatID int64   `envconfig:"GROUP_CHAT_ID" required:"true"`
	AdminIDsRaw string  `envconfig:"ADMIN_IDS" default:""`
	AdminIDs    []int64 `envconfig:"-"` // заполняется из AdminIDsRaw

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт — "postgres" (имя сервиса в docker-compose), для локалки DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"nookbot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Economy ---
	// Ежедневное начисление: base + balance/divisor
	EconomyDailyBase    int64 `envconfig:"ECONOMY_DAILY_BASE" default:"10"`
	EconomyDailyDivisor int64 `envconfig:"ECONOMY_DAILY_DIVISOR" default:"100"`
	// Налог на стикер (списывается, если баланс положительный)
	EconomyStickerTax int64 `envconfig:"ECONOMY_STICKER_TAX" default:"1"`

	// --- Leaderboard / Sit ---
	// Доля неприкосновенных: топ 1/N по балансу
	ImmunityFraction int64 `envconfig:"IMMUNITY_FRACTION" default:"5"`
	// На сколько мьютится жертва команды «сесть»
	SitMuteDuration time.Duration `envconfig:"SIT_MUTE_DURATION" default:"5m"`

	// --- Quests ---
	QuestReward       int64         `envconfig:"QUEST_REWARD" default:"50"`
	QuestMuteDuration time.Duration `envconfig:"QUEST_MUTE_DURATION" default:"4h"`

	// --- Requests ---
	// Сколько живёт неразрешённый запрос монет до удаления фоновой задачей
	RequestRetention time.Duration `envconfig:"REQUEST_RETENTION" default:"24h"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureQuestsEnabled bool `envconfig:"FEATURE_QUESTS_ENABLED" default:"true"`
	FeatureSitEnabled    bool `envconfig:"FEATURE_SIT_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if c.GroupChatID == 0 {
		return fmt.Errorf("GROUP_CHAT_ID не задан или равен 0")
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
	if c.EconomyDailyDivisor <= 0 {
		return fmt.Errorf("ECONOMY_DAILY_DIVISOR должен быть > 0")
	}
	if c.EconomyStickerTax < 0 {
		return fmt.Errorf("ECONOMY_STICKER_TAX не может быть отрицательным")
	}
	if c.ImmunityFraction <= 0 {
		return fmt.Errorf("IMMUNITY_FRACTION должен быть > 0")
	}
	if c.RequestRetention <= 0 {
		return fmt.Errorf("REQUEST_RETENTION должен быть > 0")
	}
	return nil
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
