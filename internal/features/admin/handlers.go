// Package admin реализует административные команды /give и /take:
// выдача и изъятие монет пользователям из белого списка ADMIN_IDS.
package admin

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
	"nookbot/internal/features/economy"
)

// Handler обрабатывает административные команды.
type Handler struct {
	economyService *economy.Service
	accountService *accounts.Service
	bot            *tgbotapi.BotAPI
	isAdmin        func(userID int64) bool
}

// NewHandler создаёт обработчик. isAdmin — проверка по белому списку
// из конфигурации.
func NewHandler(economyService *economy.Service, accountService *accounts.Service, bot *tgbotapi.BotAPI, isAdmin func(int64) bool) *Handler {
	return &Handler{
		economyService: economyService,
		accountService: accountService,
		bot:            bot,
		isAdmin:        isAdmin,
	}
}

// HandleGive обрабатывает /give @username сумма — выдать монеты из воздуха.
func (h *Handler) HandleGive(ctx context.Context, chatID, actorID int64, args []string) {
	target, amount, ok := h.parseTarget(ctx, chatID, actorID, args, "/give")
	if !ok {
		return
	}

	balance, err := h.economyService.Reward(ctx, target.UserID, amount, economy.TxKindAdminGive)
	if err != nil {
		log.WithError(err).Error("Ошибка выдачи монет")
		h.sendMessage(chatID, "❌ Ошибка выдачи монет, попробуйте ещё раз")
		return
	}

	log.WithFields(log.Fields{
		"admin":  actorID,
		"target": target.UserID,
		"amount": amount,
	}).Info("Админ выдал монеты")

	h.sendMessage(chatID, fmt.Sprintf("💸 %s получает %s. Баланс: %s",
		target.DisplayName(), common.FormatBalance(amount), common.FormatBalance(balance)))
}

// HandleTake обрабатывает /take @username сумма — изъять монеты.
// Изъятие ограничено балансом: в минус пользователь не уходит.
func (h *Handler) HandleTake(ctx context.Context, chatID, actorID int64, args []string) {
	target, amount, ok := h.parseTarget(ctx, chatID, actorID, args, "/take")
	if !ok {
		return
	}

	balance, err := h.economyService.Penalize(ctx, target.UserID, amount, economy.TxKindAdminTake)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientBalance) {
			h.sendMessage(chatID, "❌ У пользователя меньше монет, чем вы изымаете")
			return
		}
		log.WithError(err).Error("Ошибка изъятия монет")
		h.sendMessage(chatID, "❌ Ошибка изъятия монет, попробуйте ещё раз")
		return
	}

	log.WithFields(log.Fields{
		"admin":  actorID,
		"target": target.UserID,
		"amount": amount,
	}).Info("Админ изъял монеты")

	h.sendMessage(chatID, fmt.Sprintf("🧾 У %s изъято %s. Баланс: %s",
		target.DisplayName(), common.FormatBalance(amount), common.FormatBalance(balance)))
}

// parseTarget выполняет общую для /give и /take часть: проверку прав,
// разбор аргументов и поиск цели.
func (h *Handler) parseTarget(ctx context.Context, chatID, actorID int64, args []string, cmd string) (*accounts.Account, int64, bool) {
	if !h.isAdmin(actorID) {
		h.sendMessage(chatID, "🚫 Команда доступна только администраторам")
		return nil, 0, false
	}

	if len(args) < 2 {
		h.sendMessage(chatID, fmt.Sprintf("❌ Формат: %s @username сумма", cmd))
		return nil, 0, false
	}

	username := strings.TrimPrefix(args[0], "@")
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return nil, 0, false
	}

	target, err := h.accountService.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ Пользователь не найден — он ещё не писал в этот чат")
		} else {
			log.WithError(err).Error("Ошибка поиска пользователя")
			h.sendMessage(chatID, "❌ Ошибка поиска пользователя, попробуйте ещё раз")
		}
		return nil, 0, false
	}

	return target, amount, true
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
