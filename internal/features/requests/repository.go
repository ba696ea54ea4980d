// Package requests — repository.go выполняет операции с таблицей
// pending_requests. Разрешение запроса — одна транзакция БД: удаление
// строки и движение балансов фиксируются вместе, поэтому параллельное
// повторное разрешение (дубль нажатия кнопки, гонка с уборкой) видит
// ноль строк и завершается исходом «запрос больше не существует».
package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nookbot/internal/common"
	"nookbot/internal/features/economy"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый запрос монет.
func (r *Repository) Create(ctx context.Context, req *Request) error {
	query := `
		INSERT INTO pending_requests (request_id, from_id, to_id, from_username, to_username, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		req.RequestID, req.FromID, req.ToID,
		req.FromUsername, req.ToUsername, req.Amount, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	return nil
}

// Resolve атомарно разрешает запрос: проверка адресата, удаление строки
// и (при подтверждении) перевод — всё в одной транзакции БД.
//
// Ошибки:
//   - common.ErrRequestNotFound — запрос уже разрешён, убран уборкой или не существовал
//   - common.ErrNotYourRequest — нажал не адресат; строка НЕ удаляется
//
// Нехватка монет у плательщика — не ошибка, а исход OutcomeInsufficientFunds:
// запрос при этом всё равно удаляется.
func (r *Repository) Resolve(ctx context.Context, requestID string, actorID int64, confirm bool) (*ResolveResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку запроса: параллельное разрешение того же request_id
	// будет ждать здесь и после нашего коммита увидит ноль строк.
	var req Request
	err = tx.QueryRow(ctx, `
		SELECT request_id, from_id, to_id, from_username, to_username, amount, created_at
		FROM pending_requests
		WHERE request_id = $1
		FOR UPDATE
	`, requestID).Scan(
		&req.RequestID, &req.FromID, &req.ToID,
		&req.FromUsername, &req.ToUsername, &req.Amount, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("запрос %s: %w", requestID, common.ErrRequestNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения запроса: %w", err)
	}

	// Разрешить запрос может только адресат (плательщик)
	if actorID != req.ToID {
		return nil, fmt.Errorf("запрос %s, нажал user_id=%d: %w", requestID, actorID, common.ErrNotYourRequest)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM pending_requests WHERE request_id = $1`, requestID); err != nil {
		return nil, fmt.Errorf("ошибка удаления запроса: %w", err)
	}

	if !confirm {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("ошибка фиксации: %w", err)
		}
		return &ResolveResult{Request: &req, Outcome: OutcomeDenied}, nil
	}

	// Подтверждение: перепроверяем баланс плательщика на момент разрешения —
	// с момента создания запроса он мог измениться.
	rows, err := tx.Query(ctx, `
		SELECT user_id, balance FROM accounts
		WHERE user_id = ANY($1::bigint[])
		ORDER BY user_id
		FOR UPDATE
	`, []int64{req.FromID, req.ToID})
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

	payerBalance, ok := balances[req.ToID]
	if !ok {
		return nil, fmt.Errorf("плательщик user_id=%d: %w", req.ToID, common.ErrUserNotFound)
	}
	requesterBalance, ok := balances[req.FromID]
	if !ok {
		return nil, fmt.Errorf("проситель user_id=%d: %w", req.FromID, common.ErrUserNotFound)
	}

	if payerBalance < req.Amount {
		// Запрос уже удалён — фиксируем только удаление, без движения монет
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("ошибка фиксации: %w", err)
		}
		return &ResolveResult{Request: &req, Outcome: OutcomeInsufficientFunds}, nil
	}

	// Переводим: плательщик (to_id) → проситель (from_id)
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1
	`, req.ToID, req.Amount); err != nil {
		return nil, fmt.Errorf("ошибка списания у плательщика: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = NOW() WHERE user_id = $1
	`, req.FromID, req.Amount); err != nil {
		return nil, fmt.Errorf("ошибка начисления просителю: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions (user_id, kind, amount, target_user_id)
		VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)
	`,
		req.ToID, economy.TxKindSend, -req.Amount, req.FromID,
		req.FromID, economy.TxKindReceive, req.Amount, req.ToID,
	); err != nil {
		return nil, fmt.Errorf("ошибка записи транзакций: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации: %w", err)
	}

	return &ResolveResult{
		Request:     &req,
		Outcome:     OutcomeConfirmed,
		FromBalance: requesterBalance + req.Amount,
		ToBalance:   payerBalance - req.Amount,
	}, nil
}

// Sweep удаляет запросы старше cutoff. Возвращает количество удалённых.
// Гонка с Resolve безопасна: оба работают удалением строки,
// второй удаляющий видит ноль строк.
func (r *Repository) Sweep(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM pending_requests WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ошибка уборки запросов: %w", err)
	}
	return tag.RowsAffected(), nil
}
