// Package quests реализует ежедневный мини-квест: случайная сценка
// с тремя вариантами ответа; выбор даёт монеты, мьют или ничего.
// models.go описывает каталог сценок и исход выбора.
package quests

import "time"

// Effect — категория эффекта выбранного варианта.
type Effect string

const (
	// EffectCoins — начислить награду
	EffectCoins Effect = "coins"
	// EffectMute — замьютить самого игрока (не цель, в отличие от /sit)
	EffectMute Effect = "mute"
	// EffectNone — ничего не происходит
	EffectNone Effect = "none"
)

// Option — один из трёх вариантов ответа в сценке.
type Option struct {
	Label   string // Текст кнопки
	Outcome string // Текст исхода, показывается после выбора
	Effect  Effect
}

// Encounter — одна сценка каталога.
type Encounter struct {
	ID          int
	Title       string
	Description string
	Options     []Option // Ровно три варианта
}

// Result — исход разрешённого выбора.
type Result struct {
	Encounter *Encounter
	Option    *Option
	// Заполняются в зависимости от эффекта
	Reward     int64         // При EffectCoins: сколько начислено
	NewBalance int64         // При EffectCoins: баланс после начисления
	MuteFor    time.Duration // При EffectMute: на сколько мьютить игрока
}
