// Package economy — repository.go выполняет все операции с балансами и
// таблицей transactions. Каждая операция «прочитал-изменил» выполняется
// в одной транзакции БД с блокировкой строки (SELECT ... FOR UPDATE):
// два параллельных ежедневных начисления одному пользователю не могут
// задвоить кредит, перевод не может списать без зачисления.
package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"nookbot/internal/common"
)

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db *pgxpool.Pool

	// Параметры формулы ежедневного начисления: base + balance/divisor
	dailyBase    int64
	dailyDivisor int64
}

// NewRepository создаёт репозиторий экономики.
func NewRepository(db *pgxpool.Pool, dailyBase, dailyDivisor int64) *Repository {
	return &Repository{db: db, dailyBase: dailyBase, dailyDivisor: dailyDivisor}
}

// GetBalance возвращает текущий баланс пользователя.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT balance FROM accounts WHERE user_id = $1`
	var balance int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// ClaimDaily атомарно выполняет ежедневное начисление.
// Сравнение last_claim_date и перезапись происходят под блокировкой строки,
// поэтому параллельный дубль увидит уже записанную дату и уйдёт ни с чем.
func (r *Repository) ClaimDaily(ctx context.Context, userID int64, today time.Time) (*ClaimResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	var lastClaim *time.Time
	err = tx.QueryRow(ctx, `
		SELECT balance, last_claim_date FROM accounts WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&balance, &lastClaim)
	if err != nil {
		return nil, fmt.Errorf("счёт не найден: %w", err)
	}

	day := common.DateUTC(today)
	if lastClaim != nil && common.SameDate(*lastClaim, day) {
		// Сегодня уже начисляли — никаких мутаций
		return &ClaimResult{AlreadyClaimed: true, NewBalance: balance}, nil
	}

	amount := DailyClaimAmount(balance, r.dailyBase, r.dailyDivisor)

	_, err = tx.Exec(ctx, `
		UPDATE accounts
		SET balance = balance + $2, last_claim_date = $3, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount, day)
	if err != nil {
		return nil, fmt.Errorf("ошибка начисления: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount) VALUES ($1, $2, $3)
	`, userID, TxKindDailyClaim, amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации: %w", err)
	}

	return &ClaimResult{Amount: amount, NewBalance: balance + amount}, nil
}

// ApplyStickerTax списывает налог за стикер, если баланс положительный.
// При нулевом балансе возвращает Charged=false и ничего не пишет —
// transactions не получает запись, контент удаляет вызывающая сторона.
func (r *Repository) ApplyStickerTax(ctx context.Context, userID int64, tax int64) (*TaxResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("счёт не найден: %w", err)
	}

	if balance <= 0 {
		return &TaxResult{Charged: false, NewBalance: balance}, nil
	}

	// Налог не может увести баланс в минус
	if tax > balance {
		tax = balance
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, userID, tax)
	if err != nil {
		return nil, fmt.Errorf("ошибка списания налога: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount) VALUES ($1, $2, $3)
	`, userID, TxKindStickerPenalty, -tax)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации: %w", err)
	}

	return &TaxResult{Charged: true, NewBalance: balance - tax}, nil
}

// Transfer переводит монеты от одного пользователя к другому.
// Атомарная операция: либо оба баланса обновятся, либо ни одного.
// Строки блокируются в порядке возрастания user_id, чтобы два встречных
// перевода не зашли в дедлок.
func (r *Repository) Transfer(ctx context.Context, fromID, toID, amount int64) (*TransferResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT user_id, balance FROM accounts
		WHERE user_id = ANY($1::bigint[])
		ORDER BY user_id
		FOR UPDATE
	`, []int64{fromID, toID})
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки счетов: %w", err)
	}

	balances := make(map[int64]int64, 2)
	for rows.Next() {
		var id, bal int64
		if err := rows.Scan(&id, &bal); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ошибка сканирования баланса: %w", err)
		}
		balances[id] = bal
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения балансов: %w", err)
	}

	fromBalance, ok := balances[fromID]
	if !ok {
		return nil, fmt.Errorf("отправитель user_id=%d: %w", fromID, common.ErrUserNotFound)
	}
	toBalance, ok := balances[toID]
	if !ok {
		return nil, fmt.Errorf("получатель user_id=%d: %w", toID, common.ErrUserNotFound)
	}

	if fromBalance < amount {
		return nil, fmt.Errorf("нужно %d, есть %d: %w", amount, fromBalance, common.ErrInsufficientBalance)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, fromID, amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка списания у отправителя: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1
	`, toID, amount)
	if err != nil {
		return nil, fmt.Errorf("ошибка начисления получателю: %w", err)
	}

	// Пара записей аудита: send со знаком минус у отправителя,
	// receive со знаком плюс у получателя
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount, target_user_id)
		VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)
	`,
		fromID, TxKindSend, -amount, toID,
		toID, TxKindReceive, amount, fromID,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакций: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации: %w", err)
	}

	return &TransferResult{
		FromBalance: fromBalance - amount,
		ToBalance:   toBalance + amount,
	}, nil
}

// Credit начисляет монеты системной операцией (награда за квест, выдача админом).
func (r *Repository) Credit(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING balance
	`, userID, amount).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("ошибка начисления: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount) VALUES ($1, $2, $3)
	`, userID, kind, amount)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации: %w", err)
	}
	return balance, nil
}

// Debit списывает монеты системной операцией (изъятие админом).
// Как и все пользовательские списания — защищено проверкой баланса.
func (r *Repository) Debit(ctx context.Context, userID, amount int64, kind string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("счёт не найден: %w", err)
	}

	if balance < amount {
		return 0, fmt.Errorf("нужно %d, есть %d: %w", amount, balance, common.ErrInsufficientBalance)
	}

	_, err = tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("ошибка списания: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount) VALUES ($1, $2, $3)
	`, userID, kind, -amount)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации: %w", err)
	}
	return balance - amount, nil
}

// GetTransactions возвращает последние N транзакций пользователя.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, user_id, kind, amount, target_user_id, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.Amount, &t.TargetUserID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return transactions, nil
}
