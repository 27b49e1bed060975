package models

import "time"

// UserProfile is the onboarding questionnaire result. It is saved once, at
// the end of the wizard, with every field filled; there is no partial state.
type UserProfile struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	WeightKG             float64   `json:"weight_kg"`
	HeightCM             float64   `json:"height_cm"`
	Age                  int       `json:"age"`
	TargetLossKG         float64   `json:"target_loss_kg"`
	DurationWeeks        int       `json:"duration_weeks"`
	DietDescription      string    `json:"diet_description"`
	ActivityLevel        string    `json:"activity_level"`
	HasGymAccess         bool      `json:"has_gym_access"`
	DailyTrainingMinutes int       `json:"daily_training_minutes"`
	Restrictions         string    `json:"restrictions"`
	PrimaryGoal          string    `json:"primary_goal"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type WeightEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	WeightKG  float64   `json:"weight_kg"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyMessageCount is the per-user quota counter, keyed by calendar day.
type DailyMessageCount struct {
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
	Count  int    `json:"count"`
}
