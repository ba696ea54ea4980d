package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nookbot/internal/common"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, req *Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockStore) Resolve(ctx context.Context, requestID string, actorID int64, confirm bool) (*ResolveResult, error) {
	args := m.Called(ctx, requestID, actorID, confirm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ResolveResult), args.Error(1)
}

func (m *mockStore) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("нулевая сумма отклоняется", func(t *testing.T) {
		svc := NewService(new(mockStore))
		_, err := svc.Create(ctx, 1, 2, "alice", "bob", 0)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("отрицательная сумма отклоняется", func(t *testing.T) {
		svc := NewService(new(mockStore))
		_, err := svc.Create(ctx, 1, 2, "alice", "bob", -7)
		assert.ErrorIs(t, err, common.ErrInvalidAmount)
	})

	t.Run("запрос самому себе отклоняется", func(t *testing.T) {
		svc := NewService(new(mockStore))
		_, err := svc.Create(ctx, 1, 1, "alice", "alice", 10)
		assert.ErrorIs(t, err, common.ErrSelfRequest)
	})

	t.Run("валидный запрос получает uuid-токен", func(t *testing.T) {
		store := new(mockStore)
		store.On("Create", ctx, mock.AnythingOfType("*requests.Request")).Return(nil)

		svc := NewService(store)
		req, err := svc.Create(ctx, 1, 2, "alice", "bob", 10)

		require.NoError(t, err)
		assert.Equal(t, int64(1), req.FromID)
		assert.Equal(t, int64(2), req.ToID)
		assert.Equal(t, int64(10), req.Amount)

		_, parseErr := uuid.Parse(req.RequestID)
		assert.NoError(t, parseErr, "токен должен быть валидным uuid")
		store.AssertExpectations(t)
	})

	t.Run("токены разных запросов не совпадают", func(t *testing.T) {
		store := new(mockStore)
		store.On("Create", ctx, mock.Anything).Return(nil)

		svc := NewService(store)
		a, err := svc.Create(ctx, 1, 2, "alice", "bob", 10)
		require.NoError(t, err)
		b, err := svc.Create(ctx, 1, 2, "alice", "bob", 10)
		require.NoError(t, err)

		assert.NotEqual(t, a.RequestID, b.RequestID)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("повторное разрешение — запрос не найден", func(t *testing.T) {
		store := new(mockStore)
		store.On("Resolve", ctx, "token", int64(2), true).
			Return(nil, common.ErrRequestNotFound)

		svc := NewService(store)
		_, err := svc.Resolve(ctx, "token", 2, true)

		assert.ErrorIs(t, err, common.ErrRequestNotFound)
	})

	t.Run("чужой запрос трогать нельзя", func(t *testing.T) {
		store := new(mockStore)
		store.On("Resolve", ctx, "token", int64(99), true).
			Return(nil, common.ErrNotYourRequest)

		svc := NewService(store)
		_, err := svc.Resolve(ctx, "token", 99, true)

		assert.ErrorIs(t, err, common.ErrNotYourRequest)
	})

	t.Run("подтверждение возвращает итог перевода", func(t *testing.T) {
		store := new(mockStore)
		store.On("Resolve", ctx, "token", int64(2), true).
			Return(&ResolveResult{
				Request:     &Request{RequestID: "token", FromID: 1, ToID: 2, Amount: 10},
				Outcome:     OutcomeConfirmed,
				FromBalance: 10,
				ToBalance:   90,
			}, nil)

		svc := NewService(store)
		res, err := svc.Resolve(ctx, "token", 2, true)

		require.NoError(t, err)
		assert.Equal(t, OutcomeConfirmed, res.Outcome)
		assert.Equal(t, int64(10), res.FromBalance)
	})

	t.Run("нехватка монет — запрос снят без перевода", func(t *testing.T) {
		store := new(mockStore)
		store.On("Resolve", ctx, "token", int64(2), true).
			Return(&ResolveResult{
				Request: &Request{RequestID: "token", FromID: 1, ToID: 2, Amount: 1000},
				Outcome: OutcomeInsufficientFunds,
			}, nil)

		svc := NewService(store)
		res, err := svc.Resolve(ctx, "token", 2, true)

		require.NoError(t, err)
		assert.Equal(t, OutcomeInsufficientFunds, res.Outcome)
	})
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	store := new(mockStore)
	// Порог — ровно now минус retention
	store.On("Sweep", ctx, now.Add(-24*time.Hour)).Return(int64(3), nil)

	svc := NewService(store)
	removed, err := svc.Sweep(ctx, 24*time.Hour, now)

	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	store.AssertExpectations(t)
}
