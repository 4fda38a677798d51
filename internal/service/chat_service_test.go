package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chat-relay/relay-service/internal/domain"
)

type fakeChatRepo struct {
	saved []string
}

func (r *fakeChatRepo) Save(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	r.saved = append(r.saved, text)
	return &domain.ChatMessage{
		ID:        "m1",
		Text:      text,
		CreatedAt: time.Now(),
		UserID:    userID,
		RoomID:    roomID,
	}, nil
}

func (r *fakeChatRepo) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	return nil, "", nil
}

func TestCreateMessageValidation(t *testing.T) {
	cases := []struct {
		name   string
		maxLen int
		text   string
		ok     bool
	}{
		{"plain text", 0, "hi", true},
		{"empty", 0, "", false},
		{"whitespace only", 0, " \t\n ", false},
		{"at default cap", 0, strings.Repeat("a", 4000), true},
		{"over default cap", 0, strings.Repeat("a", 4001), false},
		{"lowered cap rejects", 5, "abcdef", false},
		{"lowered cap accepts", 5, "abcde", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeChatRepo{}
			svc := NewChatService(repo)
			if tc.maxLen > 0 {
				svc.SetMaxMessageLen(tc.maxLen)
			}

			msg, err := svc.CreateMessage(context.Background(), "r1", 1, tc.text)
			if tc.ok {
				if err != nil {
					t.Fatalf("CreateMessage: %v", err)
				}
				if msg.ID == "" {
					t.Fatal("no persisted message returned")
				}
				return
			}
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
			if len(repo.saved) != 0 {
				t.Fatal("rejected message reached the repository")
			}
		})
	}
}

func TestCreateMessageTrimsBeforeSaving(t *testing.T) {
	repo := &fakeChatRepo{}
	svc := NewChatService(repo)

	msg, err := svc.CreateMessage(context.Background(), "r1", 1, "  hi there  ")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.Text != "hi there" {
		t.Errorf("returned text = %q, want trimmed", msg.Text)
	}
	if len(repo.saved) != 1 || repo.saved[0] != "hi there" {
		t.Errorf("saved = %v, want trimmed text", repo.saved)
	}
}

func TestSetMaxMessageLenIgnoresNonPositive(t *testing.T) {
	svc := NewChatService(&fakeChatRepo{})
	svc.SetMaxMessageLen(0)
	svc.SetMaxMessageLen(-1)

	if _, err := svc.CreateMessage(context.Background(), "r1", 1, strings.Repeat("a", 4000)); err != nil {
		t.Fatalf("default cap changed by non-positive SetMaxMessageLen: %v", err)
	}
}
