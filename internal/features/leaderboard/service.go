// Package leaderboard — service.go содержит логику таблицы богатства.
package leaderboard

import (
	"context"
)

// Store — узкий интерфейс чтения таблицы богатства.
// Реализуется *Repository; в тестах подменяется моком.
type Store interface {
	TopN(ctx context.Context, n int) ([]*Standing, error)
	Count(ctx context.Context) (int64, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
}

// ImmunityCount — сколько пользователей неприкосновенны при total счетах
// и доле 1/fraction: ceil(total/fraction), минимум 1, если счета есть вообще.
func ImmunityCount(total, fraction int64) int64 {
	if total <= 0 {
		return 0
	}
	n := (total + fraction - 1) / fraction
	if n < 1 {
		n = 1
	}
	return n
}

// Service считает таблицу богатства и неприкосновенность.
type Service struct {
	store    Store
	fraction int64 // неприкосновенны топ 1/fraction
}

// NewService создаёт сервис таблицы богатства.
func NewService(store Store, fraction int64) *Service {
	return &Service{store: store, fraction: fraction}
}

// TopN возвращает первые n строк таблицы.
func (s *Service) TopN(ctx context.Context, n int) ([]*Standing, error) {
	return s.store.TopN(ctx, n)
}

// ImmunitySet возвращает множество неприкосновенных user_id.
// Пересчитывается заново при каждом вызове — балансы меняются постоянно,
// кэш позволил бы сесть на уже-неприкосновенного (или наоборот).
func (s *Service) ImmunitySet(ctx context.Context) (map[int64]struct{}, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	n := ImmunityCount(total, s.fraction)
	if n == 0 {
		return map[int64]struct{}{}, nil
	}

	top, err := s.store.TopN(ctx, int(n))
	if err != nil {
		return nil, err
	}

	set := make(map[int64]struct{}, len(top))
	for _, st := range top {
		set[st.UserID] = struct{}{}
	}
	return set, nil
}

// CanSit решает, может ли actor сесть на target:
//   - цель неприкосновенна → SitTargetImmune
//   - инициатор не богаче цели → SitNotRicher
//   - иначе → SitAllowed (мьют применяет вызывающая сторона)
func (s *Service) CanSit(ctx context.Context, actorID, targetID int64) (SitVerdict, error) {
	immune, err := s.ImmunitySet(ctx)
	if err != nil {
		return SitNotRicher, err
	}
	if _, ok := immune[targetID]; ok {
		return SitTargetImmune, nil
	}

	actorBalance, err := s.store.GetBalance(ctx, actorID)
	if err != nil {
		return SitNotRicher, err
	}
	targetBalance, err := s.store.GetBalance(ctx, targetID)
	if err != nil {
		return SitNotRicher, err
	}

	if actorBalance <= targetBalance {
		return SitNotRicher, nil
	}
	return SitAllowed, nil
}
