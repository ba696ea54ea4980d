// Package filters решает, какие сообщения бот вообще обрабатывает.
package filters

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
	"nookbot/internal/features/accounts"
)

// ChatFilter пропускает сообщения из отслеживаемого группового чата и
// личные сообщения участников этого чата. Всё остальное игнорируется.
type ChatFilter struct {
	groupChatID    int64
	accountService *accounts.Service
	bot            *tgbotapi.BotAPI
}

func NewChatFilter(groupChatID int64, accountService *accounts.Service, bot *tgbotapi.BotAPI) *ChatFilter {
	return &ChatFilter{
		groupChatID:    groupChatID,
		accountService: accountService,
		bot:            bot,
	}
}

func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (сервисное сообщение?)")
		return false
	}
	if f.groupChatID == 0 {
		log.WithField("component", "ChatFilter").Error("groupChatID равен 0 (ошибка конфигурации)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component":     "ChatFilter",
		"chat_id":       chatID,
		"user_id":       userID,
		"group_chat_id": f.groupChatID,
	})

	// 1) Отслеживаемый чат
	if chatID == f.groupChatID {
		return true
	}

	// 2) Личка: сначала быстро по БД
	if message.Chat.IsPrivate() {
		_, err := f.accountService.GetByUserID(ctx, userID)
		if err == nil {
			logger.Debug("allow: личка, аккаунт в БД")
			return true
		}
		if !errors.Is(err, common.ErrUserNotFound) {
			logger.WithError(err).Error("Ошибка проверки аккаунта в БД")
			return false
		}

		// 2.1) БД не знает пользователя: проверяем членство через Telegram API
		cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: f.groupChatID,
				UserID: userID,
			},
		})
		if err != nil {
			logger.WithError(err).Error("Ошибка проверки членства через Telegram")
			return false
		}

		switch cm.Status {
		case "creator", "administrator", "member", "restricted":
			if err := f.accountService.EnsureAccount(ctx, userID, message.From.UserName); err != nil {
				logger.WithError(err).Warn("Не удалось пополнить аккаунт в БД (всё равно пускаем)")
			}
			logger.WithField("tg_status", cm.Status).Info("allow: личка, участник по Telegram")
			return true

		default:
			logger.WithField("tg_status", cm.Status).Info("deny: не участник чата")
			msg := tgbotapi.NewMessage(chatID, "❌ Бот работает только для участников основного чата")
			if _, sendErr := f.bot.Send(msg); sendErr != nil {
				logger.WithError(sendErr).Warn("Не удалось отправить отказ")
			}
			return false
		}
	}

	// 3) Остальные чаты игнорируем
	logger.Debug("deny: чужой чат")
	return false
}
