// Package requests реализует запросы монет: один пользователь просит сумму
// у другого, адресат подтверждает или отклоняет кнопкой.
// models.go описывает структуру запроса и исходы его разрешения.
package requests

import "time"

// Request — ожидающий решения запрос монет.
// Статус хранится неявно: строка существует ⇔ запрос не разрешён.
// Разрешение (подтверждение/отклонение) удаляет строку — это же служит
// защитой от повторного нажатия кнопки.
type Request struct {
	RequestID    string    `db:"request_id"`    // Уникальный токен (uuid)
	FromID       int64     `db:"from_id"`       // Кто просит (получатель монет)
	ToID         int64     `db:"to_id"`         // У кого просят (плательщик, он же разрешает)
	FromUsername string    `db:"from_username"` // Снимок @username на момент создания
	ToUsername   string    `db:"to_username"`
	Amount       int64     `db:"amount"`     // Запрошенная сумма (положительная)
	CreatedAt    time.Time `db:"created_at"` // Момент создания (для уборки старых)
}

// Outcome — исход разрешения запроса.
type Outcome int

const (
	// OutcomeConfirmed — плательщик подтвердил, монеты переведены
	OutcomeConfirmed Outcome = iota
	// OutcomeDenied — плательщик отклонил, монеты не двигались
	OutcomeDenied
	// OutcomeInsufficientFunds — у плательщика не хватило монет на момент
	// подтверждения; запрос всё равно удалён, повтор не предлагается
	OutcomeInsufficientFunds
)

// ResolveResult — результат разрешения запроса.
type ResolveResult struct {
	Request *Request
	Outcome Outcome
	// Балансы сторон после перевода; заполняются только при OutcomeConfirmed
	FromBalance int64 // Баланс просившего (получателя монет)
	ToBalance   int64 // Баланс плательщика
}
