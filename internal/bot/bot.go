// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики фич и запускает polling.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/bot/filters"
	"nookbot/internal/bot/middleware"
	"nookbot/internal/config"
	"nookbot/internal/features/accounts"
	"nookbot/internal/features/admin"
	"nookbot/internal/features/economy"
	"nookbot/internal/features/leaderboard"
	"nookbot/internal/features/quests"
	"nookbot/internal/features/requests"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	accountService *accounts.Service

	economyHandler     *economy.Handler
	requestHandler     *requests.Handler
	leaderboardHandler *leaderboard.Handler
	questHandler       *quests.Handler
	adminHandler       *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	accountService *accounts.Service,
	economyHandler *economy.Handler,
	requestHandler *requests.Handler,
	leaderboardHandler *leaderboard.Handler,
	questHandler *quests.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                api,
		cfg:                cfg,
		chatFilter:         chatFilter,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		accountService:     accountService,
		economyHandler:     economyHandler,
		requestHandler:     requestHandler,
		leaderboardHandler: leaderboardHandler,
		questHandler:       questHandler,
		adminHandler:       adminHandler,
		parser:             NewCommandParser(),
		inflight:           make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.rateLimiter.Close()
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	// Нажатия inline-кнопок (подтверждение запросов, выбор в квесте)
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	message := update.Message
	middleware.LogMessage(message)

	// Проверяем доступ (GROUP_CHAT_ID или DM участника)
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Аккаунт создаётся/обновляется на любое сообщение — ошибки нельзя
	// игнорировать, иначе потом будет "оно не работает"
	if err := b.accountService.EnsureAccount(ctx, userID, message.From.UserName); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureAccount failed")
	}

	inGroup := chatID == b.cfg.GroupChatID

	// Неявная экономика работает только в отслеживаемом чате
	if inGroup {
		// Первое сообщение за день приносит начисление
		b.economyHandler.HandleActivity(ctx, message)

		// Стикер облагается налогом и уходит из дальнейшей обработки
		if message.Sticker != nil {
			b.economyHandler.HandleSticker(ctx, message)
			return
		}

		// Медиа от пользователей с нулевым балансом удаляется
		if hasPaidMedia(message) {
			b.economyHandler.HandleFreeloaderMedia(ctx, message)
			return
		}
	}

	if message.Text == "" {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	// Rate limiting действует только на команды
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	b.routeCommand(ctx, chatID, userID, message.From.UserName, cmd, args)
}

// handleCallback маршрутизирует нажатие inline-кнопки к нужной фиче.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	middleware.LogCallback(cb)

	switch {
	case requests.MatchesCallback(cb.Data):
		b.requestHandler.HandleCallback(ctx, cb)
	case quests.MatchesCallback(cb.Data):
		if b.cfg.FeatureQuestsEnabled {
			b.questHandler.HandleCallback(ctx, cb)
		}
	default:
		log.WithField("data", cb.Data).Debug("Неизвестный callback")
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, username, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help":
		b.sendMessage(chatID, helpText)

	case "balance", "баланс":
		b.economyHandler.HandleBalance(ctx, chatID, userID)

	case "send", "отсыпать":
		b.economyHandler.HandleSend(ctx, chatID, userID, args)

	case "history", "транзакции":
		b.economyHandler.HandleHistory(ctx, chatID, userID)

	case "request", "попросить":
		b.requestHandler.HandleRequest(ctx, chatID, userID, username, args)

	case "leaderboard", "топ":
		b.leaderboardHandler.HandleLeaderboard(ctx, chatID)

	case "sit", "сесть":
		if b.cfg.FeatureSitEnabled {
			b.leaderboardHandler.HandleSit(ctx, chatID, userID, args)
		} else {
			b.sendMessage(chatID, "🪑 Команда временно отключена")
		}

	case "quest", "квест":
		if b.cfg.FeatureQuestsEnabled {
			b.questHandler.HandleQuest(ctx, chatID, userID)
		} else {
			b.sendMessage(chatID, "🎲 Квесты временно отключены")
		}

	case "give":
		b.adminHandler.HandleGive(ctx, chatID, userID, args)

	case "take":
		b.adminHandler.HandleTake(ctx, chatID, userID, args)
	}
}

const helpText = `🦝 Я считаю монеты этого чата.

/balance — ваш баланс
/send @user сумма — отсыпать монет
/request @user сумма — попросить монет
/history — последние транзакции
/leaderboard — таблица богатства
/sit @user — сесть на бедняка (мьют)
/quest — ежедневный квест

Первое сообщение за день приносит монеты. Стикеры платные.`

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// hasPaidMedia сообщает, содержит ли сообщение медиа, за которое нужен
// положительный баланс. Стикеры не в счёт — у них отдельный налог.
func hasPaidMedia(m *tgbotapi.Message) bool {
	return len(m.Photo) > 0 || m.Video != nil || m.Animation != nil ||
		m.VideoNote != nil || m.Document != nil
}
