// Package economy — service.go содержит бизнес-логику экономики:
// ежедневное начисление, налог на стикер, переводы, история транзакций.
package economy

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
)

// Store — узкий интерфейс хранилища экономики.
// Реализуется *Repository; в тестах подменяется моком.
// Атомарность операций «прочитал-изменил» — обязанность реализации.
type Store interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ClaimDaily(ctx context.Context, userID int64, today time.Time) (*ClaimResult, error)
	ApplyStickerTax(ctx context.Context, userID int64, tax int64) (*TaxResult, error)
	Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error)
	Credit(ctx context.Context, userID, amount int64, kind string) (int64, error)
	Debit(ctx context.Context, userID, amount int64, kind string) (int64, error)
	GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}

// DailyClaimAmount — формула ежедневного начисления: base + balance/divisor.
// Целочисленное деление, растёт с богатством, сверху не ограничена.
func DailyClaimAmount(balance, base, divisor int64) int64 {
	return base + balance/divisor
}

// Service управляет экономикой бота (монеты).
type Service struct {
	store      Store
	stickerTax int64
}

// NewService создаёт новый сервис экономики.
func NewService(store Store, stickerTax int64) *Service {
	return &Service{store: store, stickerTax: stickerTax}
}

// GetBalance возвращает текущий баланс пользователя.
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.store.GetBalance(ctx, userID)
}

// TryClaimDaily выполняет ежедневное начисление, если сегодня (по UTC) его
// ещё не было. Вызывается на каждое сообщение в отслеживаемом чате;
// единственный источник истины о том, было ли начисление, — хранилище.
func (s *Service) TryClaimDaily(ctx context.Context, userID int64, today time.Time) (*ClaimResult, error) {
	res, err := s.store.ClaimDaily(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if !res.AlreadyClaimed {
		log.WithFields(log.Fields{
			"user_id": userID,
			"amount":  res.Amount,
			"balance": res.NewBalance,
		}).Info("Ежедневное начисление")
	}
	return res, nil
}

// ApplyStickerTax списывает налог за отправленный стикер.
// Charged=false означает нулевой баланс: вызывающая сторона должна
// удалить контент вместо списания.
func (s *Service) ApplyStickerTax(ctx context.Context, userID int64) (*TaxResult, error) {
	return s.store.ApplyStickerTax(ctx, userID, s.stickerTax)
}

// Transfer переводит монеты от одного пользователя к другому.
// Выполняет все проверки:
//   - Нельзя переводить себе
//   - Сумма должна быть положительной
//   - У отправителя должно быть достаточно монет (проверяет хранилище)
func (s *Service) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	if fromID == toID {
		return nil, common.ErrSelfTransfer
	}
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	res, err := s.store.Transfer(ctx, fromID, toID, amount)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"from":   fromID,
		"to":     toID,
		"amount": amount,
	}).Info("Перевод выполнен")

	return res, nil
}

// Reward начисляет системную награду (квест, выдача админом).
func (s *Service) Reward(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	return s.store.Credit(ctx, userID, amount, kind)
}

// Penalize списывает монеты системной операцией (изъятие админом).
func (s *Service) Penalize(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	return s.store.Debit(ctx, userID, amount, kind)
}

// GetTransactionHistory возвращает форматированную историю транзакций
// (последние 10).
func (s *Service) GetTransactionHistory(ctx context.Context, userID int64) (string, error) {
	transactions, err := s.store.GetTransactions(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return "📋 У вас пока нет транзакций", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d транзакций:\n\n", len(transactions)))
	for i, tx := range transactions {
		sb.WriteString(fmt.Sprintf("%d. %s | %s | %s\n",
			i+1,
			common.FormatDateTime(tx.CreatedAt),
			common.FormatAmount(tx.Amount),
			kindLabel(tx.Kind),
		))
	}
	return sb.String(), nil
}

func kindLabel(kind string) string {
	switch kind {
	case TxKindDailyClaim:
		return "ежедневное начисление"
	case TxKindStickerPenalty:
		return "налог на стикер"
	case TxKindSend:
		return "перевод (исходящий)"
	case TxKindReceive:
		return "перевод (входящий)"
	case TxKindQuestReward:
		return "награда за квест"
	case TxKindAdminGive:
		return "выдача админом"
	case TxKindAdminTake:
		return "изъятие админом"
	default:
		return kind
	}
}
