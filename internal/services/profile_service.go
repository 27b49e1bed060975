package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/repository"
)

// FreeDailyMessageLimit is the chat quota for accounts on the free plan.
const FreeDailyMessageLimit = 5

// UnlimitedMessages is the remaining-count sentinel for paid plans.
const UnlimitedMessages = -1

const dateLayout = "2006-01-02"

var activityLevels = map[string]bool{
	"sedentario": true,
	"leve":       true,
	"moderado":   true,
	"intenso":    true,
}

var primaryGoals = map[string]bool{
	"perder_peso":       true,
	"habitos_saudaveis": true,
	"tonificar":         true,
	"saude":             true,
}

type profileStore interface {
	Save(ctx context.Context, userID int64, input repository.SaveProfileInput) (*models.UserProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type quotaStore interface {
	Get(ctx context.Context, userID int64) (*models.DailyMessageCount, error)
	Set(ctx context.Context, userID int64, date string, count int) error
	Increment(ctx context.Context, userID int64, date string) (int, error)
}

type messageStore interface {
	Create(ctx context.Context, userID int64, role, content string) (*models.ChatMessage, error)
	ListByUser(ctx context.Context, userID int64) ([]models.ChatMessage, error)
	Recent(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

type weightStore interface {
	Create(ctx context.Context, userID int64, weightKG float64) (*models.WeightEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]models.WeightEntry, error)
}

// ProfileService owns the onboarding profile, the chat transcript, the daily
// message counter and the weight log.
type ProfileService struct {
	profileRepo profileStore
	quotaRepo   quotaStore
	messageRepo messageStore
	weightRepo  weightStore
	now         func() time.Time
}

func NewProfileService(
	profileRepo profileStore,
	quotaRepo quotaStore,
	messageRepo messageStore,
	weightRepo weightStore,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		quotaRepo:   quotaRepo,
		messageRepo: messageRepo,
		weightRepo:  weightRepo,
		now:         time.Now,
	}
}

func (s *ProfileService) SaveProfile(ctx context.Context, userID int64, input repository.SaveProfileInput) (*models.UserProfile, error) {
	if input.WeightKG <= 0 || input.HeightCM <= 0 || input.Age <= 0 ||
		input.TargetLossKG <= 0 || input.DurationWeeks <= 0 ||
		input.DailyTrainingMinutes <= 0 || input.DietDescription == "" {
		return nil, ErrInvalidInput
	}
	if !activityLevels[input.ActivityLevel] || !primaryGoals[input.PrimaryGoal] {
		return nil, ErrInvalidInput
	}

	return s.profileRepo.Save(ctx, userID, input)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

// DailyCount returns today's message count. A counter left over from an
// earlier day is reset to zero and persisted before returning.
func (s *ProfileService) DailyCount(ctx context.Context, userID int64) (int, error) {
	counter, err := s.quotaRepo.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	today := s.dateKey()
	if counter.Date != today {
		if err := s.quotaRepo.Set(ctx, userID, today, 0); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return counter.Count, nil
}

func (s *ProfileService) CanSendMessage(ctx context.Context, user *models.User) (bool, error) {
	if models.PaidPlan(user.Plan) {
		return true, nil
	}
	count, err := s.DailyCount(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return count < FreeDailyMessageLimit, nil
}

func (s *ProfileService) RemainingMessages(ctx context.Context, user *models.User) (int, error) {
	if models.PaidPlan(user.Plan) {
		return UnlimitedMessages, nil
	}
	count, err := s.DailyCount(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	remaining := FreeDailyMessageLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// AddMessage appends a turn to the transcript and bumps today's counter. The
// counter counts turns, not user prompts, so a bot reply spends quota too;
// this matches the original product.
func (s *ProfileService) AddMessage(ctx context.Context, userID int64, role, content string) (*models.ChatMessage, error) {
	message, err := s.messageRepo.Create(ctx, userID, role, content)
	if err != nil {
		return nil, err
	}
	if _, err := s.quotaRepo.Increment(ctx, userID, s.dateKey()); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *ProfileService) History(ctx context.Context, userID int64) ([]models.ChatMessage, error) {
	return s.messageRepo.ListByUser(ctx, userID)
}

func (s *ProfileService) RecentHistory(ctx context.Context, userID int64, limit int) ([]models.ChatMessage, error) {
	return s.messageRepo.Recent(ctx, userID, limit)
}

func (s *ProfileService) ClearHistory(ctx context.Context, userID int64) error {
	return s.messageRepo.DeleteByUser(ctx, userID)
}

func (s *ProfileService) AddWeight(ctx context.Context, userID int64, weightKG float64) (*models.WeightEntry, error) {
	if weightKG <= 0 {
		return nil, ErrInvalidInput
	}
	return s.weightRepo.Create(ctx, userID, weightKG)
}

func (s *ProfileService) ListWeights(ctx context.Context, userID int64) ([]models.WeightEntry, error) {
	return s.weightRepo.ListByUser(ctx, userID)
}

type ProgressSummary struct {
	InitialKG     float64 `json:"initial_kg"`
	CurrentKG     float64 `json:"current_kg"`
	TargetKG      float64 `json:"target_kg"`
	LostKG        float64 `json:"lost_kg"`
	PercentToGoal float64 `json:"percent_to_goal"`
}

// Progress measures the weight trend against the onboarding goal. The start
// point is the weight declared during onboarding; the current point is the
// latest logged entry, falling back to the start when nothing was logged yet.
func (s *ProfileService) Progress(ctx context.Context, userID int64) (*ProgressSummary, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.weightRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	initial := profile.WeightKG
	current := initial
	if len(entries) > 0 {
		current = entries[len(entries)-1].WeightKG
	}

	summary := &ProgressSummary{
		InitialKG: initial,
		CurrentKG: current,
		TargetKG:  initial - profile.TargetLossKG,
		LostKG:    initial - current,
	}

	if profile.TargetLossKG > 0 {
		percent := summary.LostKG / profile.TargetLossKG * 100
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		summary.PercentToGoal = percent
	}

	return summary, nil
}

func (s *ProfileService) dateKey() string {
	return s.now().Format(dateLayout)
}
