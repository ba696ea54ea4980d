package quests

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nookbot/internal/common"
)

// Repository отвечает за суточный гейт квеста поверх accounts.last_quest_date.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// HasPlayedToday сообщает, отмечен ли у игрока квест за сегодняшнюю
// календарную дату (UTC).
func (r *Repository) HasPlayedToday(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var last *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT last_quest_date FROM accounts WHERE user_id = $1`,
		userID,
	).Scan(&last)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, fmt.Errorf("аккаунт %d: %w", userID, common.ErrUserNotFound)
		}
		return false, fmt.Errorf("чтение last_quest_date: %w", err)
	}
	if last == nil {
		return false, nil
	}
	return common.SameDate(*last, now), nil
}

// MarkPlayed атомарно ставит отметку за сегодня. Возвращает false, если
// отметка уже стояла — гонка двух резолвов схлопывается на этом апдейте.
func (r *Repository) MarkPlayed(ctx context.Context, userID int64, now time.Time) (bool, error) {
	today := common.DateUTC(now)
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts
		    SET last_quest_date = $2, updated_at = now()
		  WHERE user_id = $1
		    AND (last_quest_date IS NULL OR last_quest_date <> $2)`,
		userID, today,
	)
	if err != nil {
		return false, fmt.Errorf("отметка квеста: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
