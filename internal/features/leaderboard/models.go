// Package leaderboard считает турнирную таблицу по богатству,
// множество неприкосновенных и право на команду «сесть».
package leaderboard

// Standing — одна строка турнирной таблицы.
type Standing struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Balance  int64  `db:"balance"`
}

// SitVerdict — решение, можно ли сесть на цель.
type SitVerdict int

const (
	// SitAllowed — можно, цель мьютится
	SitAllowed SitVerdict = iota
	// SitTargetImmune — цель в топе по богатству и неприкосновенна
	SitTargetImmune
	// SitNotRicher — инициатор не богаче цели
	SitNotRicher
)
