package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizeCoins(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "монет"},
		{1, "монета"},
		{2, "монеты"},
		{4, "монеты"},
		{5, "монет"},
		{11, "монет"},
		{12, "монет"},
		{14, "монет"},
		{21, "монета"},
		{22, "монеты"},
		{100, "монет"},
		{101, "монета"},
		{111, "монет"},
		{-1, "монета"},
		{-5, "монет"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeCoins(tt.n), "n=%d", tt.n)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "+10 монет", FormatAmount(10))
	assert.Equal(t, "+1 монета", FormatAmount(1))
	assert.Equal(t, "-5 монет", FormatAmount(-5))
	assert.Equal(t, "+0 монет", FormatAmount(0))
}

func TestPluralizeMinutes(t *testing.T) {
	assert.Equal(t, "минуту", PluralizeMinutes(1))
	assert.Equal(t, "минуты", PluralizeMinutes(2))
	assert.Equal(t, "минут", PluralizeMinutes(5))
	assert.Equal(t, "минут", PluralizeMinutes(11))
	assert.Equal(t, "минуту", PluralizeMinutes(21))
}

func TestSameDate(t *testing.T) {
	// Разное время одних суток UTC
	a := time.Date(2025, 6, 1, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)
	assert.True(t, SameDate(a, b))

	// Граница суток
	c := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.False(t, SameDate(b, c))

	// Сутки определяются по UTC, не по локальной зоне:
	// 23:00 UTC 1 июня и 02:00 MSK 2 июня — разные даты стены,
	// но 02:00 MSK == 23:00 UTC предыдущих суток
	msk := time.FixedZone("MSK", 3*60*60)
	d := time.Date(2025, 6, 2, 2, 0, 0, 0, msk) // 23:00 UTC 1 июня
	assert.True(t, SameDate(a, d))
}

func TestDateUTC(t *testing.T) {
	got := DateUTC(time.Date(2025, 6, 1, 15, 30, 45, 123, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
}
