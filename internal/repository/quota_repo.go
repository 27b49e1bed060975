package repository

import (
	"context"
	"errors"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/jackc/pgx/v5"
)

// QuotaRepository stores one counter row per user, keyed by a calendar-day
// string. Rollover is handled lazily by the service on read.
type QuotaRepository struct {
	db DBTX
}

func NewQuotaRepository(db DBTX) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Get returns the stored counter, or a zero counter when none exists yet.
func (r *QuotaRepository) Get(ctx context.Context, userID int64) (*models.DailyMessageCount, error) {
	query := `
		SELECT user_id, date, count
		FROM daily_messages
		WHERE user_id = $1
	`

	var counter models.DailyMessageCount
	err := r.db.QueryRow(ctx, query, userID).Scan(&counter.UserID, &counter.Date, &counter.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.DailyMessageCount{UserID: userID}, nil
		}
		return nil, err
	}
	return &counter, nil
}

func (r *QuotaRepository) Set(ctx context.Context, userID int64, date string, count int) error {
	query := `
		INSERT INTO daily_messages (user_id, date, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET date = EXCLUDED.date, count = EXCLUDED.count
	`
	_, err := r.db.Exec(ctx, query, userID, date, count)
	return err
}

// Increment bumps the counter for date, starting over at 1 when the stored
// row belongs to an earlier day.
func (r *QuotaRepository) Increment(ctx context.Context, userID int64, date string) (int, error) {
	query := `
		INSERT INTO daily_messages (user_id, date, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id) DO UPDATE SET
			count = CASE WHEN daily_messages.date = EXCLUDED.date THEN daily_messages.count + 1 ELSE 1 END,
			date = EXCLUDED.date
		RETURNING count
	`

	var count int
	if err := r.db.QueryRow(ctx, query, userID, date).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *QuotaRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM daily_messages WHERE user_id = $1`, userID)
	return err
}
