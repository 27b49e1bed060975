package repository

import (
	"context"

	"github.com/Mayckon02/shapebot-ai/internal/models"
)

type WeightRepository struct {
	db DBTX
}

func NewWeightRepository(db DBTX) *WeightRepository {
	return &WeightRepository{db: db}
}

func (r *WeightRepository) Create(ctx context.Context, userID int64, weightKG float64) (*models.WeightEntry, error) {
	query := `
		INSERT INTO weight_entries (user_id, weight_kg)
		VALUES ($1, $2)
		RETURNING id, user_id, weight_kg, created_at
	`

	var entry models.WeightEntry
	err := r.db.QueryRow(ctx, query, userID, weightKG).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.WeightKG,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *WeightRepository) ListByUser(ctx context.Context, userID int64) ([]models.WeightEntry, error) {
	query := `
		SELECT id, user_id, weight_kg, created_at
		FROM weight_entries
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.WeightEntry, 0)
	for rows.Next() {
		var entry models.WeightEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.WeightKG, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
