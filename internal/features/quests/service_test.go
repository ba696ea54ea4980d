package quests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nookbot/internal/common"
	"nookbot/internal/features/economy"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) HasPlayedToday(ctx context.Context, userID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MarkPlayed(ctx context.Context, userID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

type mockEconomy struct {
	mock.Mock
}

func (m *mockEconomy) Reward(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	args := m.Called(ctx, userID, amount, kind)
	return args.Get(0).(int64), args.Error(1)
}

func TestBegin(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("уже играл сегодня", func(t *testing.T) {
		store := new(mockStore)
		store.On("HasPlayedToday", ctx, int64(1), now).Return(true, nil)

		svc := NewService(store, new(mockEconomy), 50, 4*time.Hour)
		_, err := svc.Begin(ctx, 1, now)

		assert.ErrorIs(t, err, common.ErrAlreadyPlayed)
	})

	t.Run("сценка из каталога", func(t *testing.T) {
		store := new(mockStore)
		store.On("HasPlayedToday", ctx, int64(1), now).Return(false, nil)

		svc := NewService(store, new(mockEconomy), 50, 4*time.Hour)
		enc, err := svc.Begin(ctx, 1, now)

		require.NoError(t, err)
		require.NotNil(t, enc)
		assert.NotNil(t, ByID(enc.ID), "выбранная сценка должна быть в каталоге")
		assert.Len(t, enc.Options, 3)
	})
}

// findOption возвращает первую сценку каталога с вариантом нужного эффекта.
func findOption(t *testing.T, effect Effect) (encounterID, optionIdx int) {
	t.Helper()
	for _, e := range Catalog {
		for i, opt := range e.Options {
			if opt.Effect == effect {
				return e.ID, i
			}
		}
	}
	t.Fatalf("в каталоге нет варианта с эффектом %q", effect)
	return 0, 0
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("несуществующая сценка", func(t *testing.T) {
		svc := NewService(new(mockStore), new(mockEconomy), 50, 4*time.Hour)
		_, err := svc.Resolve(ctx, 1, 99999, 0, now)
		assert.ErrorIs(t, err, common.ErrRequestNotFound)
	})

	t.Run("индекс варианта вне диапазона", func(t *testing.T) {
		svc := NewService(new(mockStore), new(mockEconomy), 50, 4*time.Hour)

		_, err := svc.Resolve(ctx, 1, Catalog[0].ID, 3, now)
		assert.ErrorIs(t, err, common.ErrRequestNotFound)

		_, err = svc.Resolve(ctx, 1, Catalog[0].ID, -1, now)
		assert.ErrorIs(t, err, common.ErrRequestNotFound)
	})

	t.Run("повторное нажатие проигрывает гонку за отметку", func(t *testing.T) {
		store := new(mockStore)
		store.On("MarkPlayed", ctx, int64(1), now).Return(false, nil)

		svc := NewService(store, new(mockEconomy), 50, 4*time.Hour)
		_, err := svc.Resolve(ctx, 1, Catalog[0].ID, 0, now)

		assert.ErrorIs(t, err, common.ErrAlreadyPlayed)
	})

	t.Run("эффект монет начисляет награду", func(t *testing.T) {
		encID, optIdx := findOption(t, EffectCoins)

		store := new(mockStore)
		store.On("MarkPlayed", ctx, int64(1), now).Return(true, nil)
		eco := new(mockEconomy)
		eco.On("Reward", ctx, int64(1), int64(50), economy.TxKindQuestReward).
			Return(int64(150), nil)

		svc := NewService(store, eco, 50, 4*time.Hour)
		res, err := svc.Resolve(ctx, 1, encID, optIdx, now)

		require.NoError(t, err)
		assert.Equal(t, int64(50), res.Reward)
		assert.Equal(t, int64(150), res.NewBalance)
		assert.Zero(t, res.MuteFor)
		eco.AssertExpectations(t)
	})

	t.Run("эффект мьюта возвращает срок", func(t *testing.T) {
		encID, optIdx := findOption(t, EffectMute)

		store := new(mockStore)
		store.On("MarkPlayed", ctx, int64(1), now).Return(true, nil)
		eco := new(mockEconomy)

		svc := NewService(store, eco, 50, 4*time.Hour)
		res, err := svc.Resolve(ctx, 1, encID, optIdx, now)

		require.NoError(t, err)
		assert.Equal(t, 4*time.Hour, res.MuteFor)
		assert.Zero(t, res.Reward)
		eco.AssertNotCalled(t, "Reward")
	})

	t.Run("пустой эффект ничего не делает", func(t *testing.T) {
		encID, optIdx := findOption(t, EffectNone)

		store := new(mockStore)
		store.On("MarkPlayed", ctx, int64(1), now).Return(true, nil)
		eco := new(mockEconomy)

		svc := NewService(store, eco, 50, 4*time.Hour)
		res, err := svc.Resolve(ctx, 1, encID, optIdx, now)

		require.NoError(t, err)
		assert.Zero(t, res.Reward)
		assert.Zero(t, res.MuteFor)
		eco.AssertNotCalled(t, "Reward")
	})
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data   string
		wantID int
		wantIx int
		wantOK bool
	}{
		{"quest_3_1", 3, 1, true},
		{"quest_10_0", 10, 0, true},
		{"quest_", 0, 0, false},
		{"quest_abc_1", 0, 0, false},
		{"quest_1_x", 0, 0, false},
		{"quest_1_2_3", 0, 0, false},
		{"req_ok_token", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			id, idx, ok := parseCallback(tt.data)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantID, id)
				assert.Equal(t, tt.wantIx, idx)
			}
		})
	}
}
