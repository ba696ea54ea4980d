// Package leaderboard — repository.go читает таблицу accounts.
// Порядок всегда один и тот же: баланс по убыванию, при равенстве —
// меньший user_id выше. Детерминированный тай-брейк гарантирует,
// что граница неприкосновенных не зависит от настроения планировщика БД.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// TopN возвращает первые n строк таблицы богатства.
func (r *Repository) TopN(ctx context.Context, n int) ([]*Standing, error) {
	query := `
		SELECT user_id, username, balance
		FROM accounts
		ORDER BY balance DESC, user_id ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса таблицы: %w", err)
	}
	defer rows.Close()

	var out []*Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.UserID, &s.Username, &s.Balance); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Count возвращает общее количество счетов.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта счетов: %w", err)
	}
	return count, nil
}

// GetBalance возвращает баланс пользователя.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}
