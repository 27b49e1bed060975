package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Mayckon02/shapebot-ai/internal/completion"
	"github.com/Mayckon02/shapebot-ai/internal/models"
	"github.com/Mayckon02/shapebot-ai/pkg/logger"
)

// historyWindow is how many stored turns travel with each completion request.
const historyWindow = 10

// apologyMessage replaces the bot reply when the completion backend fails.
// The conversation keeps going; the quota is still spent.
const apologyMessage = "Desculpe, ocorreu um erro. Tente novamente em alguns instantes."

type completionClient interface {
	Complete(ctx context.Context, turns []completion.Turn) (string, error)
}

type chatUserReader interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type ChatService struct {
	users       chatUserReader
	profiles    *ProfileService
	completions completionClient
	log         *logger.Logger
}

func NewChatService(users chatUserReader, profiles *ProfileService, completions completionClient, log *logger.Logger) *ChatService {
	return &ChatService{
		users:       users,
		profiles:    profiles,
		completions: completions,
		log:         log,
	}
}

type SendMessageResult struct {
	UserMessage *models.ChatMessage `json:"user_message"`
	BotMessage  *models.ChatMessage `json:"bot_message"`
	Remaining   int                 `json:"remaining_messages"`
}

// SendMessage appends the user's turn, asks the coach for a reply and appends
// that too. The context window is the system prompt plus the last ten turns
// stored before the new one.
func (s *ChatService) SendMessage(ctx context.Context, userID int64, content string) (*SendMessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.profiles.CanSendMessage(ctx, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrQuotaExceeded
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	recent, err := s.profiles.RecentHistory(ctx, userID, historyWindow)
	if err != nil {
		return nil, err
	}

	userMessage, err := s.profiles.AddMessage(ctx, userID, models.RoleUser, content)
	if err != nil {
		return nil, err
	}

	turns := buildTurns(GeneratePrompt(profile), recent, content)

	reply, err := s.completions.Complete(ctx, turns)
	if err != nil {
		s.log.Errorf("completion failed for user %d: %v", userID, err)
		reply = apologyMessage
	}

	botMessage, err := s.profiles.AddMessage(ctx, userID, models.RoleBot, reply)
	if err != nil {
		return nil, err
	}

	remaining, err := s.profiles.RemainingMessages(ctx, user)
	if err != nil {
		return nil, err
	}

	return &SendMessageResult{
		UserMessage: userMessage,
		BotMessage:  botMessage,
		Remaining:   remaining,
	}, nil
}

// Messages returns the full transcript together with today's remaining quota.
func (s *ChatService) Messages(ctx context.Context, userID int64) ([]models.ChatMessage, int, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	history, err := s.profiles.History(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	remaining, err := s.profiles.RemainingMessages(ctx, user)
	if err != nil {
		return nil, 0, err
	}

	return history, remaining, nil
}

func (s *ChatService) ClearHistory(ctx context.Context, userID int64) error {
	return s.profiles.ClearHistory(ctx, userID)
}

func buildTurns(prompt string, recent []models.ChatMessage, content string) []completion.Turn {
	turns := make([]completion.Turn, 0, len(recent)+2)
	if prompt != "" {
		turns = append(turns, completion.Turn{Role: completion.RoleSystem, Content: prompt})
	}
	for _, message := range recent {
		role := completion.RoleUser
		if message.Role == models.RoleBot {
			role = completion.RoleAssistant
		}
		turns = append(turns, completion.Turn{Role: role, Content: message.Content})
	}
	return append(turns, completion.Turn{Role: completion.RoleUser, Content: content})
}
