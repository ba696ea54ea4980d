package quests

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"nookbot/internal/common"
	"nookbot/internal/features/economy"
)

// Store — узкий интерфейс хранилища квестов.
// Реализуется *Repository; в тестах подменяется моком.
type Store interface {
	HasPlayedToday(ctx context.Context, userID int64, now time.Time) (bool, error)
	MarkPlayed(ctx context.Context, userID int64, now time.Time) (bool, error)
}

// Economy — то, что квесту нужно от экономики: начислить награду.
type Economy interface {
	Reward(ctx context.Context, userID, amount int64, kind string) (int64, error)
}

// Service управляет жизненным циклом квеста: суточный гейт, выбор сценки,
// разрешение выбора и применение эффекта.
type Service struct {
	store        Store
	economy      Economy
	reward       int64
	muteDuration time.Duration
	rnd          *rand.Rand
}

// NewService создаёт сервис квестов. reward — награда за EffectCoins,
// muteDuration — срок мьюта за EffectMute.
func NewService(store Store, eco Economy, reward int64, muteDuration time.Duration) *Service {
	return &Service{
		store:        store,
		economy:      eco,
		reward:       reward,
		muteDuration: muteDuration,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Begin начинает квест: проверяет суточный гейт и выбирает случайную сценку.
// Отметка «сыграл сегодня» ставится НЕ здесь, а при разрешении выбора —
// показанная, но не сыгранная сценка попытку не тратит.
func (s *Service) Begin(ctx context.Context, userID int64, now time.Time) (*Encounter, error) {
	played, err := s.store.HasPlayedToday(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if played {
		return nil, common.ErrAlreadyPlayed
	}
	if len(Catalog) == 0 {
		return nil, fmt.Errorf("каталог квестов пуст")
	}
	return &Catalog[s.rnd.Intn(len(Catalog))], nil
}

// Resolve разрешает выбор игрока: повторно проверяет суточный гейт (между
// показом кнопок и нажатием мог пройти день или другой резолв), атомарно
// ставит отметку и применяет эффект варианта.
//
// encounterID и optionIdx приходят из callback data кнопки — чужие данные,
// проверяются полностью.
func (s *Service) Resolve(ctx context.Context, userID int64, encounterID, optionIdx int, now time.Time) (*Result, error) {
	enc := ByID(encounterID)
	if enc == nil {
		return nil, fmt.Errorf("сценка %d: %w", encounterID, common.ErrRequestNotFound)
	}
	if optionIdx < 0 || optionIdx >= len(enc.Options) {
		return nil, fmt.Errorf("сценка %d, вариант %d: %w", encounterID, optionIdx, common.ErrRequestNotFound)
	}

	// Атомарная отметка: из двух гонящихся нажатий выигрывает одно.
	marked, err := s.store.MarkPlayed(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if !marked {
		return nil, common.ErrAlreadyPlayed
	}

	opt := &enc.Options[optionIdx]
	res := &Result{Encounter: enc, Option: opt}

	switch opt.Effect {
	case EffectCoins:
		balance, err := s.economy.Reward(ctx, userID, s.reward, economy.TxKindQuestReward)
		if err != nil {
			// Отметка уже стоит: попытка потрачена, награда потеряна.
			// Честнее, чем дать переиграть удачный исход.
			return nil, fmt.Errorf("начисление награды за квест: %w", err)
		}
		res.Reward = s.reward
		res.NewBalance = balance
	case EffectMute:
		res.MuteFor = s.muteDuration
	case EffectNone:
	}

	log.WithFields(log.Fields{
		"user_id":   userID,
		"encounter": enc.ID,
		"option":    optionIdx,
		"effect":    opt.Effect,
	}).Info("Квест разрешён")

	return res, nil
}
