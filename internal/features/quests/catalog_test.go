package quests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogValid(t *testing.T) {
	require.NoError(t, ValidateCatalog())
	assert.NotEmpty(t, Catalog)
}

func TestByID(t *testing.T) {
	for _, e := range Catalog {
		got := ByID(e.ID)
		require.NotNil(t, got)
		assert.Equal(t, e.Title, got.Title)
	}

	assert.Nil(t, ByID(0))
	assert.Nil(t, ByID(-1))
	assert.Nil(t, ByID(99999))
}

func TestValidateCatalogRejectsBadEntries(t *testing.T) {
	orig := Catalog
	defer func() { Catalog = orig }()

	t.Run("дублирующийся ID", func(t *testing.T) {
		Catalog = []Encounter{
			{ID: 1, Title: "a", Options: threeOptions()},
			{ID: 1, Title: "b", Options: threeOptions()},
		}
		assert.Error(t, ValidateCatalog())
	})

	t.Run("не три варианта", func(t *testing.T) {
		Catalog = []Encounter{{ID: 1, Title: "a", Options: threeOptions()[:2]}}
		assert.Error(t, ValidateCatalog())
	})

	t.Run("пустой текст варианта", func(t *testing.T) {
		opts := threeOptions()
		opts[1].Outcome = ""
		Catalog = []Encounter{{ID: 1, Title: "a", Options: opts}}
		assert.Error(t, ValidateCatalog())
	})

	t.Run("неизвестный эффект", func(t *testing.T) {
		opts := threeOptions()
		opts[2].Effect = Effect("jackpot")
		Catalog = []Encounter{{ID: 1, Title: "a", Options: opts}}
		assert.Error(t, ValidateCatalog())
	})
}

func threeOptions() []Option {
	return []Option{
		{Label: "1", Outcome: "x", Effect: EffectCoins},
		{Label: "2", Outcome: "y", Effect: EffectMute},
		{Label: "3", Outcome: "z", Effect: EffectNone},
	}
}
