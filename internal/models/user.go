package models

import "time"

const (
	PlanFree     = "free"
	PlanStandard = "standard"
	PlanPremium  = "premium"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	default:
		return false
	}
}

// PaidPlan reports whether the plan removes the daily message limit.
func PaidPlan(plan string) bool {
	return plan == PlanStandard || plan == PlanPremium
}
