package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) TopN(ctx context.Context, n int) ([]*Standing, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Standing), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) GetBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func TestImmunityCount(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		want  int64
	}{
		{"пустая таблица", 0, 0},
		{"один счёт", 1, 1},
		{"четыре счёта — минимум один", 4, 1},
		{"ровно пять", 5, 1},
		{"шесть — округление вверх", 6, 2},
		{"десять", 10, 2},
		{"двадцать один", 21, 5},
		{"сто", 100, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImmunityCount(tt.total, 5))
		})
	}
}

func TestImmunitySet(t *testing.T) {
	ctx := context.Background()

	t.Run("пустая таблица — никто не защищён", func(t *testing.T) {
		store := new(mockStore)
		store.On("Count", ctx).Return(int64(0), nil)

		svc := NewService(store, 5)
		set, err := svc.ImmunitySet(ctx)

		require.NoError(t, err)
		assert.Empty(t, set)
		store.AssertNotCalled(t, "TopN")
	})

	t.Run("топ попадает в множество", func(t *testing.T) {
		store := new(mockStore)
		store.On("Count", ctx).Return(int64(10), nil)
		store.On("TopN", ctx, 2).Return([]*Standing{
			{UserID: 7, Balance: 500},
			{UserID: 3, Balance: 300},
		}, nil)

		svc := NewService(store, 5)
		set, err := svc.ImmunitySet(ctx)

		require.NoError(t, err)
		assert.Len(t, set, 2)
		assert.Contains(t, set, int64(7))
		assert.Contains(t, set, int64(3))
		assert.NotContains(t, set, int64(1))
	})
}

func TestCanSit(t *testing.T) {
	ctx := context.Background()

	t.Run("цель в топе — неприкосновенна", func(t *testing.T) {
		store := new(mockStore)
		store.On("Count", ctx).Return(int64(5), nil)
		store.On("TopN", ctx, 1).Return([]*Standing{{UserID: 2, Balance: 1000}}, nil)

		svc := NewService(store, 5)
		verdict, err := svc.CanSit(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, SitTargetImmune, verdict)
		store.AssertNotCalled(t, "GetBalance")
	})

	t.Run("инициатор беднее цели", func(t *testing.T) {
		store := new(mockStore)
		store.On("Count", ctx).Return(int64(5), nil)
		store.On("TopN", ctx, 1).Return([]*Standing{{UserID: 9, Balance: 1000}}, nil)
		store.On("GetBalance", ctx, int64(1)).Return(int64(10), nil)
		store.On("GetBalance", ctx, int64(2)).Return(int64(50), nil)

		svc := NewService(store, 5)
		verdict, err := svc.CanSit(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, SitNotRicher, verdict)
	})

	t.Run("равные балансы — сесть нельзя", func(t *testing.T) {
		store := new(mockStore)
		store.On("Count", ctx).Return(int64(5), nil)
		store.On("TopN", ctx, 1).Return([]*Standing{{UserID: 9, Balance: 1000}}, nil)
		store.On("GetBalance", ctx, int64(1)).Return(int64(50), nil)
		store.On("GetBalance", ctx, int64(2)).Return(int64(50), nil)

		svc := NewService(store, 5)
		verdict, err := svc.CanSit(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, SitNotRicher, verdict)
	})

	t.Run("богаче и цель не защищена — можно", func(t *testing.T) {
		store := new(mockStore)
		store.On("Count", ctx).Return(int64(5), nil)
		store.On("TopN", ctx, 1).Return([]*Standing{{UserID: 9, Balance: 1000}}, nil)
		store.On("GetBalance", ctx, int64(1)).Return(int64(100), nil)
		store.On("GetBalance", ctx, int64(2)).Return(int64(50), nil)

		svc := NewService(store, 5)
		verdict, err := svc.CanSit(ctx, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, SitAllowed, verdict)
	})
}
