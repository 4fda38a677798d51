package ws_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chat-relay/relay-service/internal/domain"
	"github.com/chat-relay/relay-service/internal/relay"
	"github.com/chat-relay/relay-service/internal/transport/ws"

	"github.com/gorilla/websocket"
)

type stubRoomStore struct {
	rooms map[string]*domain.Room
}

func (s *stubRoomStore) FindRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return r, nil
}

type stubChatStore struct {
	mu sync.Mutex
	n  int
}

func (s *stubChatStore) CreateMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return &domain.ChatMessage{
		ID:        fmt.Sprintf("m%d", s.n),
		Text:      text,
		CreatedAt: time.Now(),
		UserID:    userID,
		RoomID:    roomID,
	}, nil
}

func newTestServer(t *testing.T) (*relay.Core, string, func()) {
	t.Helper()

	store := &stubRoomStore{rooms: map[string]*domain.Room{
		"r1": {ID: "r1", Name: "r1", AuthorizedUserIDs: []int64{1, 2}},
	}}
	core := relay.NewCore(store, &stubChatStore{}, relay.Options{StoreTimeout: time.Second})
	srv := ws.NewServer(relay.NewDispatcher(core), time.Second)

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	return core, wsURL, ts.Close
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) relay.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var f relay.Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestRegisterOverWebsocket(t *testing.T) {
	_, url, stop := newTestServer(t)
	defer stop()

	conn := dial(t, url)
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"register","roomId":"r1","userId":"1"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := readFrame(t, conn)
	if f.Type != relay.TypeRegisterSuccess || f.RoomID != "r1" || f.UserID != 1 {
		t.Fatalf("frame = %+v, want register-success r1/1", f)
	}
}

func TestMessageRelayBetweenClients(t *testing.T) {
	_, url, stop := newTestServer(t)
	defer stop()

	a := dial(t, url)
	defer a.Close()
	b := dial(t, url)
	defer b.Close()

	mustWrite(t, a, `{"type":"register","roomId":"r1","userId":1}`)
	if f := readFrame(t, a); f.Type != relay.TypeRegisterSuccess {
		t.Fatalf("a register reply = %+v", f)
	}
	mustWrite(t, b, `{"type":"register","roomId":"r1","userId":2}`)
	if f := readFrame(t, b); f.Type != relay.TypeRegisterSuccess {
		t.Fatalf("b register reply = %+v", f)
	}

	mustWrite(t, a, `{"type":"message","roomId":"r1","user_id":1,"text":"hi"}`)

	ack := readFrame(t, a)
	if ack.Type != relay.TypeMessageSent || ack.Chat == nil || ack.Chat.Text != "hi" {
		t.Fatalf("sender ack = %+v", ack)
	}
	got := readFrame(t, b)
	if got.Type != relay.TypeNewMessage || got.Chat == nil || got.Chat.ID != ack.Chat.ID {
		t.Fatalf("recipient frame = %+v, want new-message %s", got, ack.Chat.ID)
	}
}

func TestDisconnectCleansPresence(t *testing.T) {
	core, url, stop := newTestServer(t)
	defer stop()

	conn := dial(t, url)
	mustWrite(t, conn, `{"type":"register","roomId":"r1","userId":1}`)
	if f := readFrame(t, conn); f.Type != relay.TypeRegisterSuccess {
		t.Fatalf("register reply = %+v", f)
	}
	if got := core.MembersOf("r1"); len(got) != 1 {
		t.Fatalf("MembersOf = %v before close", got)
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for len(core.MembersOf("r1")) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("MembersOf = %v after close, want empty", core.MembersOf("r1"))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func mustWrite(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write %s: %v", frame, err)
	}
}
