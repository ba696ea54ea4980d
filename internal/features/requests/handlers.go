// Package requests — handlers.go обрабатывает команду /request и нажатия
// кнопок «Дать монеты» / «Отказать» под сообщением запроса.
package requests

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

// Префиксы callback data кнопок
const (
	callbackConfirmPrefix = "req_ok_"
	callbackDenyPrefix    = "req_no_"
)

// Handler обрабатывает команды и кнопки запросов монет.
type Handler struct {
	service        *Service
	accountService *accounts.Service
	bot            *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик запросов.
func NewHandler(service *Service, accountService *accounts.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:        service,
		accountService: accountService,
		bot:            bot,
	}
}

// HandleRequest обрабатывает команду /request @username сумма.
// Создаёт запрос и отправляет в чат сообщение с кнопками для адресата.
func (h *Handler) HandleRequest(ctx context.Context, chatID, fromID int64, fromUsername string, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: /request @username сумма")
		return
	}

	username := strings.TrimPrefix(args[0], "@")
	if username == "" {
		h.sendMessage(chatID, "❌ Укажите, у кого просите монеты")
		return
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return
	}

	target, err := h.accountService.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ Пользователь не найден — он ещё не писал в этот чат")
		} else {
			log.WithError(err).Error("Ошибка поиска адресата запроса")
			h.sendMessage(chatID, "❌ Ошибка поиска пользователя, попробуйте ещё раз")
		}
		return
	}

	req, err := h.service.Create(ctx, fromID, target.UserID, fromUsername, target.Username, amount)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSelfRequest):
			h.sendMessage(chatID, "❌ Нельзя запрашивать монеты у самого себя")
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Сумма должна быть положительной")
		default:
			log.WithError(err).Error("Ошибка создания запроса")
			h.sendMessage(chatID, "❌ Ошибка создания запроса, попробуйте ещё раз")
		}
		return
	}

	text := fmt.Sprintf("🙏 @%s просит %s у @%s",
		displayOr(fromUsername, fromID), common.FormatBalance(amount), target.Username)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Дать монеты", callbackConfirmPrefix+req.RequestID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отказать", callbackDenyPrefix+req.RequestID),
		),
	)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки запроса в чат")
	}
}

// MatchesCallback сообщает, относится ли callback data к кнопкам запросов.
func MatchesCallback(data string) bool {
	return strings.HasPrefix(data, callbackConfirmPrefix) || strings.HasPrefix(data, callbackDenyPrefix)
}

// HandleCallback обрабатывает нажатие кнопки под сообщением запроса.
// Повторное нажатие уже разрешённого запроса — штатная ситуация:
// пользователю отвечаем «запрос больше не существует».
func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	actorID := cb.From.ID

	var requestID string
	var confirm bool
	switch {
	case strings.HasPrefix(data, callbackConfirmPrefix):
		requestID = strings.TrimPrefix(data, callbackConfirmPrefix)
		confirm = true
	case strings.HasPrefix(data, callbackDenyPrefix):
		requestID = strings.TrimPrefix(data, callbackDenyPrefix)
	default:
		return
	}

	res, err := h.service.Resolve(ctx, requestID, actorID, confirm)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRequestNotFound):
			h.answerCallback(cb.ID, "Запрос больше не существует")
		case errors.Is(err, common.ErrNotYourRequest):
			h.answerCallback(cb.ID, "Этот запрос адресован не вам")
		default:
			log.WithError(err).Error("Ошибка разрешения запроса")
			h.answerCallback(cb.ID, "Ошибка, попробуйте ещё раз")
		}
		return
	}

	h.answerCallback(cb.ID, "")

	// Подменяем сообщение с кнопками итогом
	var text string
	switch res.Outcome {
	case OutcomeConfirmed:
		text = fmt.Sprintf("✅ @%s отсыпал %s @%s",
			displayOr(res.Request.ToUsername, res.Request.ToID),
			common.FormatBalance(res.Request.Amount),
			displayOr(res.Request.FromUsername, res.Request.FromID))
	case OutcomeDenied:
		text = fmt.Sprintf("❌ @%s отказал в запросе на %s",
			displayOr(res.Request.ToUsername, res.Request.ToID),
			common.FormatBalance(res.Request.Amount))
	case OutcomeInsufficientFunds:
		text = fmt.Sprintf("❌ У @%s не хватает монет для этого запроса — запрос снят",
			displayOr(res.Request.ToUsername, res.Request.ToID))
	}

	if cb.Message != nil {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
		if _, err := h.bot.Send(edit); err != nil {
			log.WithError(err).Warn("Не удалось обновить сообщение запроса")
		}
	}
}

func (h *Handler) answerCallback(callbackID, text string) {
	answer := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.bot.Request(answer); err != nil {
		log.WithError(err).Debug("Не удалось ответить на callback")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

func displayOr(username string, userID int64) string {
	if username != "" {
		return username
	}
	return fmt.Sprintf("id%d", userID)
}
