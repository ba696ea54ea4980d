// Package quests — handlers.go обрабатывает команду /quest и нажатия
// кнопок-вариантов под сообщением сценки.
package quests

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
	"nookbot/internal/features/accounts"
)

// Формат callback data: quest_<encounterID>_<optionIdx>
const callbackPrefix = "quest_"

// Handler обрабатывает команду /quest и кнопки выбора.
type Handler struct {
	service        *Service
	accountService *accounts.Service
	bot            *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик квестов.
func NewHandler(service *Service, accountService *accounts.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:        service,
		accountService: accountService,
		bot:            bot,
	}
}

// HandleQuest обрабатывает команду /quest: проверяет суточный лимит и
// отправляет сценку с тремя кнопками-вариантами.
func (h *Handler) HandleQuest(ctx context.Context, chatID, userID int64) {
	enc, err := h.service.Begin(ctx, userID, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrAlreadyPlayed) {
			h.sendMessage(chatID, "⏳ Вы уже играли сегодня. Приходите завтра!")
		} else {
			log.WithError(err).Error("Ошибка начала квеста")
			h.sendMessage(chatID, "❌ Ошибка, попробуйте ещё раз")
		}
		return
	}

	text := fmt.Sprintf("🎲 %s\n\n%s", enc.Title, enc.Description)
	msg := tgbotapi.NewMessage(chatID, text)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(enc.Options))
	for i, opt := range enc.Options {
		data := fmt.Sprintf("%s%d_%d", callbackPrefix, enc.ID, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Label, data),
		))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)

	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сценки в чат")
	}
}

// MatchesCallback сообщает, относится ли callback data к кнопкам квеста.
func MatchesCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix)
}

// HandleCallback обрабатывает нажатие кнопки-варианта. Кривая callback data
// (битый формат, несуществующая сценка) отклоняется молча по отношению к
// чату — пользователь получает только всплывающий ответ.
func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	encounterID, optionIdx, ok := parseCallback(cb.Data)
	if !ok {
		h.answerCallback(cb.ID, "Эта кнопка устарела")
		return
	}

	actorID := cb.From.ID
	res, err := h.service.Resolve(ctx, actorID, encounterID, optionIdx, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyPlayed):
			h.answerCallback(cb.ID, "Вы уже играли сегодня")
		case errors.Is(err, common.ErrRequestNotFound):
			h.answerCallback(cb.ID, "Эта кнопка устарела")
		case errors.Is(err, common.ErrUserNotFound):
			h.answerCallback(cb.ID, "Сначала напишите что-нибудь в чат")
		default:
			log.WithError(err).Error("Ошибка разрешения квеста")
			h.answerCallback(cb.ID, "Ошибка, попробуйте ещё раз")
		}
		return
	}

	h.answerCallback(cb.ID, "")

	// Подменяем сценку с кнопками текстом исхода
	text := fmt.Sprintf("🎲 %s\n\n%s", res.Encounter.Title, res.Option.Outcome)
	switch res.Option.Effect {
	case EffectCoins:
		text += fmt.Sprintf("\n\n💰 %s! Баланс: %s",
			common.FormatAmount(res.Reward), common.FormatBalance(res.NewBalance))
	case EffectMute:
		minutes := int(res.MuteFor.Minutes())
		text += fmt.Sprintf("\n\n🔇 Вы замьючены на %d %s", minutes, common.PluralizeMinutes(minutes))
	}

	if cb.Message != nil {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
		if _, err := h.bot.Send(edit); err != nil {
			log.WithError(err).Warn("Не удалось обновить сообщение квеста")
		}
	}

	if res.Option.Effect == EffectMute && cb.Message != nil {
		h.mutePlayer(ctx, cb.Message.Chat.ID, actorID, res.MuteFor)
	}
}

// mutePlayer мьютит самого игрока (эффект квеста, в отличие от /sit бьёт
// по действующему лицу).
func (h *Handler) mutePlayer(ctx context.Context, chatID, userID int64, d time.Duration) {
	until := time.Now().Add(d)
	restrict := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate: until.Unix(),
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages: false,
		},
	}
	if _, err := h.bot.Request(restrict); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось замьютить игрока")
		return
	}
	if err := h.accountService.RecordMute(ctx, userID, until); err != nil {
		log.WithError(err).Warn("Не удалось записать мьют в БД")
	}
}

// parseCallback разбирает "quest_<id>_<idx>".
func parseCallback(data string) (encounterID, optionIdx int, ok bool) {
	rest := strings.TrimPrefix(data, callbackPrefix)
	if rest == data {
		return 0, 0, false
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return 0, 0, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return id, idx, true
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
