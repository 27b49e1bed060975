package repository

import (
	"context"

	"github.com/Mayckon02/shapebot-ai/internal/models"
)

type UserProfileRepository struct {
	db DBTX
}

func NewUserProfileRepository(db DBTX) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

type SaveProfileInput struct {
	WeightKG             float64
	HeightCM             float64
	Age                  int
	TargetLossKG         float64
	DurationWeeks        int
	DietDescription      string
	ActivityLevel        string
	HasGymAccess         bool
	DailyTrainingMinutes int
	Restrictions         string
	PrimaryGoal          string
}

// Save overwrites the stored profile unconditionally. The wizard persists
// exactly once, at the end, so there is never a partial row.
func (r *UserProfileRepository) Save(ctx context.Context, userID int64, input SaveProfileInput) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (
			user_id, weight_kg, height_cm, age, target_loss_kg, duration_weeks,
			diet_description, activity_level, has_gym_access, daily_training_minutes,
			restrictions, primary_goal
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			age = EXCLUDED.age,
			target_loss_kg = EXCLUDED.target_loss_kg,
			duration_weeks = EXCLUDED.duration_weeks,
			diet_description = EXCLUDED.diet_description,
			activity_level = EXCLUDED.activity_level,
			has_gym_access = EXCLUDED.has_gym_access,
			daily_training_minutes = EXCLUDED.daily_training_minutes,
			restrictions = EXCLUDED.restrictions,
			primary_goal = EXCLUDED.primary_goal,
			updated_at = NOW()
		RETURNING id, user_id, weight_kg, height_cm, age, target_loss_kg, duration_weeks,
			diet_description, activity_level, has_gym_access, daily_training_minutes,
			restrictions, primary_goal, created_at, updated_at
	`

	var profile models.UserProfile
	err := r.db.QueryRow(ctx, query,
		userID, input.WeightKG, input.HeightCM, input.Age, input.TargetLossKG,
		input.DurationWeeks, input.DietDescription, input.ActivityLevel,
		input.HasGymAccess, input.DailyTrainingMinutes, input.Restrictions, input.PrimaryGoal,
	).Scan(
		&profile.ID, &profile.UserID, &profile.WeightKG, &profile.HeightCM, &profile.Age,
		&profile.TargetLossKG, &profile.DurationWeeks, &profile.DietDescription,
		&profile.ActivityLevel, &profile.HasGymAccess, &profile.DailyTrainingMinutes,
		&profile.Restrictions, &profile.PrimaryGoal, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *UserProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `
		SELECT id, user_id, weight_kg, height_cm, age, target_loss_kg, duration_weeks,
			diet_description, activity_level, has_gym_access, daily_training_minutes,
			restrictions, primary_goal, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`

	var profile models.UserProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.WeightKG, &profile.HeightCM, &profile.Age,
		&profile.TargetLossKG, &profile.DurationWeeks, &profile.DietDescription,
		&profile.ActivityLevel, &profile.HasGymAccess, &profile.DailyTrainingMinutes,
		&profile.Restrictions, &profile.PrimaryGoal, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
