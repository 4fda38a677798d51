package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chat-relay/relay-service/internal/domain"
)

type fakeConn struct {
	id string

	mu       sync.Mutex
	frames   []Frame
	failSend bool
	closed   bool
}

func (c *fakeConn) Send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("socket gone")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) sent() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *fakeConn) lastFrame() (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return Frame{}, false
	}
	return c.frames[len(c.frames)-1], true
}

func (c *fakeConn) framesOfType(typ string) []Frame {
	var out []Frame
	for _, f := range c.sent() {
		if f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

type fakeRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
	err   error
	calls int
}

func newFakeRoomStore(rooms ...*domain.Room) *fakeRoomStore {
	s := &fakeRoomStore{rooms: make(map[string]*domain.Room)}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *fakeRoomStore) FindRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return r, nil
}

func (s *fakeRoomStore) deleteRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}

type fakeChatStore struct {
	mu    sync.Mutex
	err   error
	saved []*domain.ChatMessage
}

func (s *fakeChatStore) CreateMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	m := &domain.ChatMessage{
		ID:        fmt.Sprintf("m%d", len(s.saved)+1),
		Text:      text,
		CreatedAt: time.Now(),
		UserID:    userID,
		RoomID:    roomID,
	}
	s.saved = append(s.saved, m)
	return m, nil
}

func (s *fakeChatStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// stallingRoomStore never answers; it only returns once the per-call
// timeout cancels the context.
type stallingRoomStore struct{}

func (stallingRoomStore) FindRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type stallingChatStore struct{}

func (stallingChatStore) CreateMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func room(id string, userIDs ...int64) *domain.Room {
	return &domain.Room{ID: id, Name: id, AuthorizedUserIDs: userIDs}
}

func newTestCore(roomStore RoomStore, chatStore ChatStore) *Core {
	return NewCore(roomStore, chatStore, Options{StoreTimeout: time.Second})
}
