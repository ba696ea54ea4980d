// Package accounts управляет счетами пользователей: ленивой регистрацией,
// обновлением username и бухгалтерией мьютов.
// models.go описывает структуру записи в таблице accounts.
package accounts

import (
	"strconv"
	"time"
)

// Account представляет счёт пользователя.
// Создаётся лениво при первом наблюдаемом взаимодействии и никогда не удаляется.
// Балансом управляет ТОЛЬКО модуль economy — здесь баланс читается для отображения.
type Account struct {
	UserID        int64      `db:"user_id"`         // Telegram user ID (первичный ключ)
	Username      string     `db:"username"`        // @username, последнее наблюдаемое значение (может быть пустым)
	Balance       int64      `db:"balance"`         // Текущий баланс в монетах
	LastClaimDate *time.Time `db:"last_claim_date"` // Дата последнего ежедневного начисления (UTC), nil если не было
	LastQuestDate *time.Time `db:"last_quest_date"` // Дата последнего пройденного квеста (UTC), nil если не было
	MutedUntil    *time.Time `db:"muted_until"`     // До какого момента действует мьют, nil если мьюта нет
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — числовой ID.
func (a *Account) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	return "id" + strconv.FormatInt(a.UserID, 10)
}
