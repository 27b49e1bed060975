package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/internal/repository"
	"github.com/Mayckon02/shapebot-ai/pkg/utils"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailTaken             = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrNotFound               = errors.New("not found")
	ErrQuotaExceeded          = errors.New("daily message limit reached")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPaymentGateway         = errors.New("payment gateway error")
)

// SessionService owns the account lifecycle. Authentication is intentionally
// soft: the password hash is stored but never checked, so any password signs
// in to the account behind the email. See DESIGN.md.
type SessionService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

func NewSessionService(userRepo *repository.UserRepository, jwtSecret string) *SessionService {
	return &SessionService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

func (s *SessionService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	return s.createAccount(ctx, name, email, password)
}

// Login signs in to the account behind the email, creating it on the fly when
// it does not exist yet. The password is hashed for storage only.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.createAccount(ctx, emailLocalPart(email), email, password)
		}
		return nil, "", err
	}

	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), s.jwtSecret)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *SessionService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Logout deletes the account outright. The product has no server-side session
// to invalidate, and the original behavior on sign-out is a full reset of the
// user's data.
func (s *SessionService) Logout(ctx context.Context, userID int64) error {
	return s.userRepo.Delete(ctx, userID)
}

func (s *SessionService) createAccount(ctx context.Context, name, email, password string) (*models.User, string, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Plan:         models.PlanFree,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateToken(strconv.FormatInt(user.ID, 10), s.jwtSecret)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
