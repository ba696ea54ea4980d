// Package accounts — service.go содержит бизнес-логику работы со счетами.
package accounts

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store — узкий интерфейс хранилища счетов.
// Реализуется *Repository; в тестах подменяется моком.
type Store interface {
	Upsert(ctx context.Context, userID int64, username string) error
	GetByUserID(ctx context.Context, userID int64) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	SetMutedUntil(ctx context.Context, userID int64, until time.Time) error
	ClearExpiredMutes(ctx context.Context, now time.Time) (int64, error)
}

// Service управляет счетами пользователей.
type Service struct {
	store Store
}

// NewService создаёт новый сервис счетов.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// EnsureAccount гарантирует, что счёт пользователя существует.
// Вызывается на каждое входящее сообщение: создаёт счёт с нулевым балансом
// при первом взаимодействии, дальше только освежает username.
func (s *Service) EnsureAccount(ctx context.Context, userID int64, username string) error {
	return s.store.Upsert(ctx, userID, username)
}

// GetByUserID возвращает счёт по Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Account, error) {
	return s.store.GetByUserID(ctx, userID)
}

// GetByUsername возвращает счёт по @username (без @).
// Это и есть «резолвер username → id»: бот знает только тех,
// кто хоть раз написал в отслеживаемый чат.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return s.store.GetByUsername(ctx, username)
}

// RecordMute записывает срок мьюта пользователя.
func (s *Service) RecordMute(ctx context.Context, userID int64, until time.Time) error {
	if err := s.store.SetMutedUntil(ctx, userID, until); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"until":   until,
	}).Info("Мьют записан")
	return nil
}

// ClearExpiredMutes снимает отметку мьюта у всех, у кого срок истёк.
// Запускается фоновой задачей; чистая уборка, на корректность не влияет.
func (s *Service) ClearExpiredMutes(ctx context.Context, now time.Time) (int64, error) {
	return s.store.ClearExpiredMutes(ctx, now)
}
