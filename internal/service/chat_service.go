package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/chat-relay/relay-service/internal/domain"
)

const defaultMaxMessageLen = 4000

// ChatRepo is the slice of the chat repository this service needs.
type ChatRepo interface {
	Save(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error)
	History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error)
}

// ChatService validates and persists chat messages. It is the relay core's
// ChatStore.
type ChatService struct {
	chatRepo ChatRepo

	maxLen int
}

func NewChatService(chatRepo ChatRepo) *ChatService {
	return &ChatService{chatRepo: chatRepo, maxLen: defaultMaxMessageLen}
}

func (s *ChatService) SetMaxMessageLen(n int) {
	if n > 0 {
		s.maxLen = n
	}
}

// CreateMessage persists a validated message; id and createdAt are assigned
// by the store.
func (s *ChatService) CreateMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidRequest)
	}
	if len(text) > s.maxLen {
		return nil, fmt.Errorf("%w: message too long", domain.ErrInvalidRequest)
	}
	return s.chatRepo.Save(ctx, roomID, userID, text)
}

// History returns the room's persisted messages with cursor pagination.
func (s *ChatService) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	return s.chatRepo.History(ctx, roomID, after, limit)
}
