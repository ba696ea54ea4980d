// Package economy — handlers.go обрабатывает команды:
// /balance (баланс), /send (перевод), /history (история транзакций),
// а также неявную экономику каждого сообщения: ежедневное начисление
// и налог на стикер.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
	"nookbot/internal/features/accounts"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service        *Service
	accountService *accounts.Service // Для поиска получателя по @username
	bot            *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, accountService *accounts.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:        service,
		accountService: accountService,
		bot:            bot,
	}
}

// HandleBalance обрабатывает команду /balance — показывает баланс.
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(chatID, "❌ Ошибка получения баланса, попробуйте ещё раз")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("💰 Твой баланс: %s", common.FormatBalance(balance)))
}

// HandleSend обрабатывает команду /send @username сумма.
// Переводит указанную сумму от отправителя к получателю.
func (h *Handler) HandleSend(ctx context.Context, chatID, fromID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: /send @username сумма")
		return
	}

	username := strings.TrimPrefix(args[0], "@")
	if username == "" {
		h.sendMessage(chatID, "❌ Укажите @username получателя")
		return
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return
	}

	recipient, err := h.accountService.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ Пользователь не найден — он ещё не писал в этот чат")
		} else {
			log.WithError(err).Error("Ошибка поиска получателя")
			h.sendMessage(chatID, "❌ Ошибка поиска получателя, попробуйте ещё раз")
		}
		return
	}

	res, err := h.service.Transfer(ctx, fromID, recipient.UserID, amount)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSelfTransfer):
			h.sendMessage(chatID, "❌ Нельзя переводить монеты самому себе")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, "❌ Недостаточно монет на счёте")
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Сумма должна быть положительной")
		default:
			log.WithError(err).Error("Ошибка перевода")
			h.sendMessage(chatID, "❌ Ошибка выполнения перевода, попробуйте ещё раз")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Переведено %s @%s\nТвой баланс: %s",
		common.FormatBalance(amount), recipient.Username, common.FormatBalance(res.FromBalance)))
}

// HandleHistory обрабатывает команду /history — показывает последние транзакции.
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	history, err := h.service.GetTransactionHistory(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения транзакций")
		h.sendMessage(chatID, "❌ Ошибка получения истории транзакций")
		return
	}
	h.sendMessage(chatID, history)
}

// HandleActivity — неявная экономика любого сообщения в отслеживаемом чате:
// первое сообщение за день (UTC) приносит ежедневное начисление.
func (h *Handler) HandleActivity(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	res, err := h.service.TryClaimDaily(ctx, userID, common.TodayUTC())
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("TryClaimDaily failed")
		return
	}
	if res.AlreadyClaimed {
		return
	}

	reply := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf(
		"✅ Ежедневное начисление: %s! Твой баланс: %s",
		common.FormatAmount(res.Amount), common.FormatBalance(res.NewBalance)))
	reply.ReplyToMessageID = message.MessageID
	if _, err := h.bot.Send(reply); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// HandleSticker применяет налог на стикер: -1 монета при положительном
// балансе, удаление стикера при нулевом.
func (h *Handler) HandleSticker(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	res, err := h.service.ApplyStickerTax(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("ApplyStickerTax failed")
		return
	}

	if !res.Charged {
		// Платить нечем — контент удаляется вместо списания
		h.deleteMessage(message.Chat.ID, message.MessageID)
		return
	}

	reply := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf(
		"😼 Стикер стоил монету! Твой баланс: %s", common.FormatBalance(res.NewBalance)))
	reply.ReplyToMessageID = message.MessageID
	if _, err := h.bot.Send(reply); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// HandleFreeloaderMedia удаляет медиа (фото/видео/гифки) от пользователей
// с нулевым балансом. Стикеры сюда не попадают — у них свой налог.
func (h *Handler) HandleFreeloaderMedia(ctx context.Context, message *tgbotapi.Message) {
	balance, err := h.service.GetBalance(ctx, message.From.ID)
	if err != nil {
		log.WithError(err).Warn("Ошибка получения баланса для проверки медиа")
		return
	}
	if balance == 0 {
		h.deleteMessage(message.Chat.ID, message.MessageID)
	}
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := h.bot.Request(del); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Warn("Не удалось удалить сообщение")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
