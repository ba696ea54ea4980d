// Package accounts — repository.go отвечает за все операции с таблицей accounts.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nookbot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Upsert создаёт счёт, если его нет, иначе обновляет username.
// Пустой username не затирает сохранённый (пользователь мог скрыть @username).
func (r *Repository) Upsert(ctx context.Context, userID int64, username string) error {
	query := `
		INSERT INTO accounts (user_id, username, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE accounts.username END,
		    updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, username); err != nil {
		return fmt.Errorf("ошибка создания/обновления счёта: %w", err)
	}
	return nil
}

// GetByUserID: если не найден — ошибка с common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Account, error) {
	query := `
		SELECT user_id, username, balance, last_claim_date, last_quest_date, muted_until,
		       created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	var a Account
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&a.UserID, &a.Username, &a.Balance,
		&a.LastClaimDate, &a.LastQuestDate, &a.MutedUntil,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("счёт user_id=%d: %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения счёта (user_id=%d): %w", userID, err)
	}
	return &a, nil
}

// GetByUsername ищет счёт по @username без учёта регистра.
// Если не найден — ошибка с common.ErrUserNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	query := `
		SELECT user_id, username, balance, last_claim_date, last_quest_date, muted_until,
		       created_at, updated_at
		FROM accounts
		WHERE LOWER(username) = LOWER($1) AND username <> ''
	`
	var a Account
	err := r.db.QueryRow(ctx, query, username).Scan(
		&a.UserID, &a.Username, &a.Balance,
		&a.LastClaimDate, &a.LastQuestDate, &a.MutedUntil,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("счёт username=%s: %w", username, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("ошибка чтения счёта (username=%s): %w", username, err)
	}
	return &a, nil
}

// SetMutedUntil записывает, до какого момента пользователь замьючен.
// Сам мьют применяет Telegram — здесь только бухгалтерия для отображения.
func (r *Repository) SetMutedUntil(ctx context.Context, userID int64, until time.Time) error {
	query := `UPDATE accounts SET muted_until = $2, updated_at = NOW() WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID, until); err != nil {
		return fmt.Errorf("ошибка записи muted_until: %w", err)
	}
	return nil
}

// ClearExpiredMutes обнуляет muted_until у пользователей, чей мьют уже истёк.
// Возвращает количество очищенных записей.
func (r *Repository) ClearExpiredMutes(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE accounts SET muted_until = NULL, updated_at = NOW() WHERE muted_until IS NOT NULL AND muted_until < $1`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки мьютов: %w", err)
	}
	return tag.RowsAffected(), nil
}
