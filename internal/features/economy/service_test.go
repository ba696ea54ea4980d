package economy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nookbot/internal/common"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ClaimDaily(ctx context.Context, userID int64, today time.Time) (*ClaimResult, error) {
	args := m.Called(ctx, userID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClaimResult), args.Error(1)
}

func (m *mockStore) ApplyStickerTax(ctx context.Context, userID int64, tax int64) (*TaxResult, error) {
	args := m.Called(ctx, userID, tax)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TaxResult), args.Error(1)
}

func (m *mockStore) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	args := m.Called(ctx, fromID, toID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TransferResult), args.Error(1)
}

func (m *mockStore) Credit(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	args := m.Called(ctx, userID, amount, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Debit(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	args := m.Called(ctx, userID, amount, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Transaction), args.Error(1)
}

func TestDailyClaimAmount(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		want    int64
	}{
		{"нулевой баланс", 0, 10},
		{"баланс меньше делителя", 99, 10},
		{"ровно делитель", 100, 11},
		{"большой баланс", 1050, 20},
		{"очень большой баланс", 100000, 1010},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DailyClaimAmount(tt.balance, 10, 100))
		})
	}
}

func TestDailyClaimAmountMonotonic(t *testing.T) {
	// Начисление не убывает с ростом баланса
	prev := int64(0)
	for balance := int64(0); balance <= 10000; balance += 37 {
		got := DailyClaimAmount(balance, 10, 100)
		require.GreaterOrEqual(t, got, prev, "balance=%d", balance)
		prev = got
	}
}

func TestTryClaimDaily(t *testing.T) {
	ctx := context.Background()
	today := common.TodayUTC()

	t.Run("первое сообщение за день", func(t *testing.T) {
		store := new(mockStore)
		store.On("ClaimDaily", ctx, int64(1), today).
			Return(&ClaimResult{Amount: 10, NewBalance: 10}, nil)

		svc := NewService(store, 1)
		res, err := svc.TryClaimDaily(ctx, 1, today)

		require.NoError(t, err)
		assert.False(t, res.AlreadyClaimed)
		assert.Equal(t, int64(10), res.Amount)
		store.AssertExpectations(t)
	})

	t.Run("повторное сообщение не начисляет", func(t *testing.T) {
		store := new(mockStore)
		store.On("ClaimDaily", ctx, int64(1), today).
			Return(&ClaimResult{AlreadyClaimed: true, NewBalance: 10}, nil)

		svc := NewService(store, 1)
		res, err := svc.TryClaimDaily(ctx, 1, today)

		require.NoError(t, err)
		assert.True(t, res.AlreadyClaimed)
		assert.Zero(t, res.Amount)
	})
}

func TestApplyStickerTax(t *testing.T) {
	ctx := context.Background()

	t.Run("есть монеты — списывается налог", func(t *testing.T) {
		store := new(mockStore)
		store.On("ApplyStickerTax", ctx, int64(1), int64(1)).
			Return(&TaxResult{Charged: true, NewBalance: 4}, nil)

		svc := NewService(store, 1)
		res, err := svc.ApplyStickerTax(ctx, 1)

		require.NoError(t, err)
		assert.True(t, res.Charged)
		assert.Equal(t, int64(4), res.NewBalance)
	})

	t.Run("нулевой баланс — списания нет", func(t *testing.T) {
		store := new(mockStore)
		store.On("ApplyStickerTax", ctx, int64(1), int64(1)).
			Return(&TaxResult{Charged: false, NewBalance: 0}, nil)

		svc := NewService(store, 1)
		res, err := svc.ApplyStickerTax(ctx, 1)

		require.NoError(t, err)
		assert.False(t, res.Charged)
	})
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("перевод самому себе запрещён", func(t *testing.T) {
		store := new(mockStore)
		svc := NewService(store, 1)

		_, err := svc.Transfer(ctx, 1, 1, 10)

		assert.ErrorIs(t, err, common.ErrSelfTransfer)
		store.AssertNotCalled(t, "Transfer")
	})

	t.Run("нулевая сумма запрещена", func(t *testing.T) {
		store := new(mockStore)
		svc := NewService(store, 1)

		_, err := svc.Transfer(ctx, 1, 2, 0)

		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("отрицательная сумма запрещена", func(t *testing.T) {
		store := new(mockStore)
		svc := NewService(store, 1)

		_, err := svc.Transfer(ctx, 1, 2, -5)

		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("успешный перевод", func(t *testing.T) {
		store := new(mockStore)
		store.On("Transfer", ctx, int64(1), int64(2), int64(30)).
			Return(&TransferResult{FromBalance: 70, ToBalance: 30}, nil)

		svc := NewService(store, 1)
		res, err := svc.Transfer(ctx, 1, 2, 30)

		require.NoError(t, err)
		assert.Equal(t, int64(70), res.FromBalance)
		assert.Equal(t, int64(30), res.ToBalance)
		store.AssertExpectations(t)
	})

	t.Run("недостаточно монет", func(t *testing.T) {
		store := new(mockStore)
		store.On("Transfer", ctx, int64(1), int64(2), int64(30)).
			Return(nil, common.ErrInsufficientBalance)

		svc := NewService(store, 1)
		_, err := svc.Transfer(ctx, 1, 2, 30)

		assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	})
}

func TestRewardAndPenalize(t *testing.T) {
	ctx := context.Background()

	t.Run("награда с нулевой суммой отклоняется", func(t *testing.T) {
		svc := NewService(new(mockStore), 1)
		_, err := svc.Reward(ctx, 1, 0, TxKindQuestReward)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("награда начисляется", func(t *testing.T) {
		store := new(mockStore)
		store.On("Credit", ctx, int64(1), int64(50), TxKindQuestReward).
			Return(int64(150), nil)

		svc := NewService(store, 1)
		balance, err := svc.Reward(ctx, 1, 50, TxKindQuestReward)

		require.NoError(t, err)
		assert.Equal(t, int64(150), balance)
	})

	t.Run("изъятие больше баланса отклоняется хранилищем", func(t *testing.T) {
		store := new(mockStore)
		store.On("Debit", ctx, int64(1), int64(500), TxKindAdminTake).
			Return(int64(0), common.ErrInsufficientBalance)

		svc := NewService(store, 1)
		_, err := svc.Penalize(ctx, 1, 500, TxKindAdminTake)

		assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	})
}

func TestGetTransactionHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("пустая история", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetTransactions", ctx, int64(1), 10).Return([]*Transaction{}, nil)

		svc := NewService(store, 1)
		text, err := svc.GetTransactionHistory(ctx, 1)

		require.NoError(t, err)
		assert.Contains(t, text, "нет транзакций")
	})

	t.Run("история форматируется", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetTransactions", ctx, int64(1), 10).Return([]*Transaction{
			{UserID: 1, Kind: TxKindDailyClaim, Amount: 10, CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
			{UserID: 1, Kind: TxKindSend, Amount: -5, CreatedAt: time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)},
		}, nil)

		svc := NewService(store, 1)
		text, err := svc.GetTransactionHistory(ctx, 1)

		require.NoError(t, err)
		assert.Contains(t, text, "+10 монет")
		assert.Contains(t, text, "-5 монет")
		assert.Contains(t, text, "ежедневное начисление")
		assert.Contains(t, text, "перевод (исходящий)")
	})
}
