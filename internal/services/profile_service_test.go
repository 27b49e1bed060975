package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/repository"
)

type stubProfileStore struct {
	profile *models.UserProfile
	err     error
	saved   *repository.SaveProfileInput
}

func (s *stubProfileStore) Save(_ context.Context, userID int64, input repository.SaveProfileInput) (*models.UserProfile, error) {
	s.saved = &input
	return &models.UserProfile{UserID: userID, WeightKG: input.WeightKG}, nil
}

func (s *stubProfileStore) GetByUserID(_ context.Context, _ int64) (*models.UserProfile, error) {
	return s.profile, s.err
}

type stubQuotaStore struct {
	counter    models.DailyMessageCount
	setDate    string
	setCount   int
	setCalls   int
	increments []string
}

func (s *stubQuotaStore) Get(_ context.Context, userID int64) (*models.DailyMessageCount, error) {
	counter := s.counter
	counter.UserID = userID
	return &counter, nil
}

func (s *stubQuotaStore) Set(_ context.Context, _ int64, date string, count int) error {
	s.setCalls++
	s.setDate = date
	s.setCount = count
	s.counter.Date = date
	s.counter.Count = count
	return nil
}

func (s *stubQuotaStore) Increment(_ context.Context, _ int64, date string) (int, error) {
	s.increments = append(s.increments, date)
	if s.counter.Date == date {
		s.counter.Count++
	} else {
		s.counter.Date = date
		s.counter.Count = 1
	}
	return s.counter.Count, nil
}

type stubMessageStore struct {
	nextID   int64
	messages []models.ChatMessage
	cleared  bool
}

func (s *stubMessageStore) Create(_ context.Context, userID int64, role, content string) (*models.ChatMessage, error) {
	s.nextID++
	message := models.ChatMessage{
		ID:        s.nextID,
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.messages = append(s.messages, message)
	return &message, nil
}

func (s *stubMessageStore) ListByUser(_ context.Context, _ int64) ([]models.ChatMessage, error) {
	return s.messages, nil
}

func (s *stubMessageStore) Recent(_ context.Context, _ int64, limit int) ([]models.ChatMessage, error) {
	if len(s.messages) <= limit {
		return s.messages, nil
	}
	return s.messages[len(s.messages)-limit:], nil
}

func (s *stubMessageStore) DeleteByUser(_ context.Context, _ int64) error {
	s.cleared = true
	s.messages = nil
	return nil
}

type stubWeightStore struct {
	entries []models.WeightEntry
}

func (s *stubWeightStore) Create(_ context.Context, userID int64, weightKG float64) (*models.WeightEntry, error) {
	entry := models.WeightEntry{
		ID:       int64(len(s.entries) + 1),
		UserID:   userID,
		WeightKG: weightKG,
	}
	s.entries = append(s.entries, entry)
	return &entry, nil
}

func (s *stubWeightStore) ListByUser(_ context.Context, _ int64) ([]models.WeightEntry, error) {
	return s.entries, nil
}

func newTestProfileService(quota *stubQuotaStore, messages *stubMessageStore, profiles *stubProfileStore, weights *stubWeightStore) *ProfileService {
	if quota == nil {
		quota = &stubQuotaStore{}
	}
	if messages == nil {
		messages = &stubMessageStore{}
	}
	if profiles == nil {
		profiles = &stubProfileStore{err: ErrNotFound}
	}
	if weights == nil {
		weights = &stubWeightStore{}
	}
	service := NewProfileService(profiles, quota, messages, weights)
	service.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	return service
}

func TestDailyCountResetsStaleCounter(t *testing.T) {
	quota := &stubQuotaStore{counter: models.DailyMessageCount{Date: "2026-03-14", Count: 4}}
	service := newTestProfileService(quota, nil, nil, nil)

	count, err := service.DailyCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("DailyCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected stale counter to reset to 0, got %d", count)
	}
	if quota.setCalls != 1 || quota.setDate != "2026-03-15" || quota.setCount != 0 {
		t.Fatalf("expected reset persisted for today, got calls=%d date=%q count=%d", quota.setCalls, quota.setDate, quota.setCount)
	}
}

func TestDailyCountKeepsTodayCounter(t *testing.T) {
	quota := &stubQuotaStore{counter: models.DailyMessageCount{Date: "2026-03-15", Count: 3}}
	service := newTestProfileService(quota, nil, nil, nil)

	count, err := service.DailyCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("DailyCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
	if quota.setCalls != 0 {
		t.Fatalf("expected no reset, got %d Set calls", quota.setCalls)
	}
}

func TestCanSendMessageFreePlanLimit(t *testing.T) {
	quota := &stubQuotaStore{counter: models.DailyMessageCount{Date: "2026-03-15", Count: FreeDailyMessageLimit}}
	service := newTestProfileService(quota, nil, nil, nil)

	allowed, err := service.CanSendMessage(context.Background(), &models.User{ID: 1, Plan: models.PlanFree})
	if err != nil {
		t.Fatalf("CanSendMessage: %v", err)
	}
	if allowed {
		t.Fatal("expected free plan at the limit to be blocked")
	}
}

func TestCanSendMessagePaidPlanIgnoresCounter(t *testing.T) {
	quota := &stubQuotaStore{counter: models.DailyMessageCount{Date: "2026-03-15", Count: 500}}
	service := newTestProfileService(quota, nil, nil, nil)

	for _, plan := range []string{models.PlanStandard, models.PlanPremium} {
		allowed, err := service.CanSendMessage(context.Background(), &models.User{ID: 1, Plan: plan})
		if err != nil {
			t.Fatalf("CanSendMessage(%s): %v", plan, err)
		}
		if !allowed {
			t.Fatalf("expected %s plan to be unlimited", plan)
		}
	}
}

func TestRemainingMessagesClampsAtZero(t *testing.T) {
	quota := &stubQuotaStore{counter: models.DailyMessageCount{Date: "2026-03-15", Count: 9}}
	service := newTestProfileService(quota, nil, nil, nil)

	remaining, err := service.RemainingMessages(context.Background(), &models.User{ID: 1, Plan: models.PlanFree})
	if err != nil {
		t.Fatalf("RemainingMessages: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected 0, got %d", remaining)
	}
}

func TestAddMessageIncrementsCounterForBothRoles(t *testing.T) {
	quota := &stubQuotaStore{}
	messages := &stubMessageStore{}
	service := newTestProfileService(quota, messages, nil, nil)

	if _, err := service.AddMessage(context.Background(), 1, models.RoleUser, "oi"); err != nil {
		t.Fatalf("AddMessage user: %v", err)
	}
	if _, err := service.AddMessage(context.Background(), 1, models.RoleBot, "olá"); err != nil {
		t.Fatalf("AddMessage bot: %v", err)
	}

	if len(quota.increments) != 2 {
		t.Fatalf("expected 2 counter increments, got %d", len(quota.increments))
	}
	if len(messages.messages) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(messages.messages))
	}
}

func TestSaveProfileRejectsUnknownActivityLevel(t *testing.T) {
	service := newTestProfileService(nil, nil, &stubProfileStore{}, nil)

	_, err := service.SaveProfile(context.Background(), 1, repository.SaveProfileInput{
		WeightKG:             90,
		HeightCM:             175,
		Age:                  30,
		TargetLossKG:         10,
		DurationWeeks:        12,
		DietDescription:      "muito fast food",
		ActivityLevel:        "atleta",
		DailyTrainingMinutes: 30,
		PrimaryGoal:          "perder_peso",
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSaveProfileAcceptsOptionalRestrictions(t *testing.T) {
	store := &stubProfileStore{}
	service := newTestProfileService(nil, nil, store, nil)

	_, err := service.SaveProfile(context.Background(), 1, repository.SaveProfileInput{
		WeightKG:             90,
		HeightCM:             175,
		Age:                  30,
		TargetLossKG:         10,
		DurationWeeks:        12,
		DietDescription:      "muito fast food",
		ActivityLevel:        "leve",
		DailyTrainingMinutes: 30,
		PrimaryGoal:          "perder_peso",
	})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if store.saved == nil || store.saved.Restrictions != "" {
		t.Fatalf("expected empty restrictions to be saved, got %+v", store.saved)
	}
}

func TestProgressUsesLatestEntry(t *testing.T) {
	profiles := &stubProfileStore{profile: &models.UserProfile{WeightKG: 100, TargetLossKG: 10}}
	weights := &stubWeightStore{entries: []models.WeightEntry{
		{WeightKG: 98},
		{WeightKG: 95},
	}}
	service := newTestProfileService(nil, nil, profiles, weights)

	progress, err := service.Progress(context.Background(), 1)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.InitialKG != 100 || progress.CurrentKG != 95 || progress.TargetKG != 90 {
		t.Fatalf("unexpected summary: %+v", progress)
	}
	if progress.LostKG != 5 || progress.PercentToGoal != 50 {
		t.Fatalf("expected 5kg lost at 50%%, got %+v", progress)
	}
}

func TestGeneratePromptNilProfile(t *testing.T) {
	if got := GeneratePrompt(nil); got != "" {
		t.Fatalf("expected empty prompt, got %q", got)
	}
}

func TestGeneratePromptRendersProfileData(t *testing.T) {
	prompt := GeneratePrompt(&models.UserProfile{
		WeightKG:             92.5,
		HeightCM:             178,
		Age:                  34,
		TargetLossKG:         12,
		DurationWeeks:        16,
		DietDescription:      "pão e refrigerante",
		ActivityLevel:        "sedentario",
		HasGymAccess:         true,
		DailyTrainingMinutes: 45,
	})

	for _, want := range []string{
		"Você é o ShapeBot AI",
		"Peso atual: 92.5 kg",
		"Altura: 178 cm",
		"Idade: 34 anos",
		"Quanto quer emagrecer: 12 kg",
		"Tempo disponível: 16 semanas",
		"Alimentação atual: pão e refrigerante",
		"Nível de atividade física: sedentario",
		"Tem acesso à academia?: Sim",
		"Tempo disponível por dia: 45 minutos",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestGeneratePromptWithoutGym(t *testing.T) {
	prompt := GeneratePrompt(&models.UserProfile{WeightKG: 80, HeightCM: 170, Age: 25, TargetLossKG: 5, DurationWeeks: 8, DietDescription: "ok", ActivityLevel: "leve", DailyTrainingMinutes: 30})
	if !strings.Contains(prompt, "Tem acesso à academia?: Não") {
		t.Fatal("expected gym access rendered as Não")
	}
}
