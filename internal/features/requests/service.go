// Package requests — service.go содержит бизнес-логику жизненного цикла
// запроса монет: создание → ожидание → подтверждение/отклонение/уборка.
package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
)

// Store — узкий интерфейс хранилища запросов.
// Реализуется *Repository; в тестах подменяется моком.
type Store interface {
	Create(ctx context.Context, req *Request) error
	Resolve(ctx context.Context, requestID string, actorID int64, confirm bool) (*ResolveResult, error)
	Sweep(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service управляет запросами монет.
type Service struct {
	store Store
}

// NewService создаёт сервис запросов.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create создаёт запрос: fromID просит amount монет у toID.
// Токен запроса — uuid: не коллидирует даже при одновременных запросах
// одной и той же пары в одну секунду.
func (s *Service) Create(ctx context.Context, fromID, toID int64, fromUsername, toUsername string, amount int64) (*Request, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}
	if fromID == toID {
		return nil, common.ErrSelfRequest
	}

	req := &Request{
		RequestID:    uuid.NewString(),
		FromID:       fromID,
		ToID:         toID,
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Amount:       amount,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id": req.RequestID,
		"from":       fromID,
		"to":         toID,
		"amount":     amount,
	}).Info("Запрос монет создан")

	return req, nil
}

// Resolve разрешает запрос от имени actorID.
// «Запрос не найден» — штатный исход повторного нажатия кнопки,
// вызывающая сторона не должна считать его сбоем.
func (s *Service) Resolve(ctx context.Context, requestID string, actorID int64, confirm bool) (*ResolveResult, error) {
	res, err := s.store.Resolve(ctx, requestID, actorID, confirm)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"request_id": requestID,
		"actor":      actorID,
		"outcome":    res.Outcome,
	}).Info("Запрос разрешён")

	return res, nil
}

// Sweep удаляет запросы, висящие дольше retention.
func (s *Service) Sweep(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	removed, err := s.store.Sweep(ctx, now.Add(-retention))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.WithField("removed", removed).Info("Старые запросы убраны")
	}
	return removed, nil
}
