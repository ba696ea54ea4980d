// Package leaderboard — handlers.go обрабатывает команды
// /leaderboard (топ-10) и /sit (@username — замьютить не-неприкосновенного бедняка).
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
	"nookbot/internal/features/accounts"
)

// Handler обрабатывает команды таблицы богатства.
type Handler struct {
	service        *Service
	accountService *accounts.Service
	bot            *tgbotapi.BotAPI
	sitDuration    time.Duration
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service, accountService *accounts.Service, bot *tgbotapi.BotAPI, sitDuration time.Duration) *Handler {
	return &Handler{
		service:        service,
		accountService: accountService,
		bot:            bot,
		sitDuration:    sitDuration,
	}
}

// HandleLeaderboard обрабатывает команду /leaderboard — топ-10 по монетам.
func (h *Handler) HandleLeaderboard(ctx context.Context, chatID int64) {
	top, err := h.service.TopN(ctx, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения таблицы")
		h.sendMessage(chatID, "❌ Ошибка получения таблицы, попробуйте ещё раз")
		return
	}

	if len(top) == 0 {
		h.sendMessage(chatID, "Ни у кого ещё нет монет. Пишите в чат — заработаете!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Таблица богатства 🏆\n\n")
	for i, st := range top {
		name := st.Username
		if name != "" {
			name = "@" + name
		} else {
			name = fmt.Sprintf("id%d", st.UserID)
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, name, common.FormatBalance(st.Balance)))
	}
	h.sendMessage(chatID, sb.String())
}

// HandleSit обрабатывает команду /sit @username.
// Сажает инициатора на цель: цель мьютится на sitDuration, если она
// не в топе по богатству и беднее инициатора.
func (h *Handler) HandleSit(ctx context.Context, chatID, actorID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Формат: /sit @username")
		return
	}

	username := strings.TrimPrefix(args[0], "@")
	if username == "" {
		h.sendMessage(chatID, "❌ Укажите, на кого садиться")
		return
	}

	target, err := h.accountService.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ Пользователь не найден — он ещё не писал в этот чат")
		} else {
			log.WithError(err).Error("Ошибка поиска цели")
			h.sendMessage(chatID, "❌ Ошибка поиска пользователя, попробуйте ещё раз")
		}
		return
	}

	if target.UserID == actorID {
		h.sendMessage(chatID, "❌ На себе сидеть нельзя")
		return
	}

	verdict, err := h.service.CanSit(ctx, actorID, target.UserID)
	if err != nil {
		log.WithError(err).Error("Ошибка проверки права сесть")
		h.sendMessage(chatID, "❌ Ошибка, попробуйте ещё раз")
		return
	}

	switch verdict {
	case SitTargetImmune:
		h.sendMessage(chatID, "🚫 Этот пользователь в топе по богатству и неприкосновенен")
		return
	case SitNotRicher:
		h.sendMessage(chatID, "❌ Чтобы сесть на пользователя, нужно быть богаче него")
		return
	}

	until := time.Now().Add(h.sitDuration)
	if err := h.restrict(chatID, target.UserID, until); err != nil {
		log.WithError(err).WithField("target", target.UserID).Error("Не удалось замьютить")
		h.sendMessage(chatID, "❌ Не удалось замьютить пользователя")
		return
	}

	if err := h.accountService.RecordMute(ctx, target.UserID, until); err != nil {
		log.WithError(err).Warn("Не удалось записать мьют в БД")
	}

	minutes := int(h.sitDuration.Minutes())
	h.sendMessage(chatID, fmt.Sprintf("🍑 Вы сели на %s! Мьют на %d %s.",
		target.DisplayName(), minutes, common.PluralizeMinutes(minutes)))
}

// restrict запрещает цели отправлять сообщения до until.
// Сам мьют применяет Telegram; движок лишь авторизовал его.
func (h *Handler) restrict(chatID, targetID int64, until time.Time) error {
	restrict := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: targetID,
		},
		UntilDate: until.Unix(),
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages: false,
		},
	}
	_, err := h.bot.Request(restrict)
	return err
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
