package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chat-relay/relay-service/internal/domain"
)

// RoomStore is the external membership store. FindRoom returns the room with
// its authorized user list, or domain.ErrRoomNotFound.
type RoomStore interface {
	FindRoom(ctx context.Context, roomID string) (*domain.Room, error)
}

// ChatStore persists chat messages; id and createdAt are assigned by the store.
type ChatStore interface {
	CreateMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error)
}

type Options struct {
	// StoreTimeout bounds every external store call so a stalled store
	// surfaces as an error frame instead of hanging the connection.
	StoreTimeout time.Duration
}

const defaultStoreTimeout = 5 * time.Second

// Core owns the connection registry and the room index behind a single lock,
// so every session mutation updates both structures in one step. Store I/O
// always happens outside the lock; Register re-checks nothing after its
// store call because the map mutation is its non-blocking tail, and Send
// re-validates the room after suspension as required.
type Core struct {
	mu       sync.RWMutex
	registry *Registry
	rooms    *RoomIndex

	roomStore RoomStore
	chatStore ChatStore

	storeTimeout time.Duration
}

func NewCore(roomStore RoomStore, chatStore ChatStore, opts Options) *Core {
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Core{
		registry:     NewRegistry(),
		rooms:        NewRoomIndex(),
		roomStore:    roomStore,
		chatStore:    chatStore,
		storeTimeout: timeout,
	}
}

// Register authorizes (userID, roomID) against the room store and activates
// a session for c. Re-registering replaces the old session; its room index
// entry is removed before the new one is added so no orphaned membership
// survives a room switch.
func (k *Core) Register(ctx context.Context, c Conn, roomID string, userID int64) (Session, error) {
	if roomID == "" || userID <= 0 {
		return Session{}, fmt.Errorf("%w: roomId and a positive integer userId are required", domain.ErrInvalidRequest)
	}

	room, err := k.findRoom(ctx, roomID)
	if err != nil {
		return Session{}, err
	}
	if !room.Authorized(userID) {
		return Session{}, domain.ErrUnauthorized
	}

	s := Session{UserID: userID, RoomID: roomID}

	k.mu.Lock()
	defer k.mu.Unlock()
	if old, ok := k.registry.Lookup(c); ok {
		k.rooms.Remove(old.RoomID, old.UserID)
	}
	k.registry.Register(c, s)
	k.rooms.Add(roomID, userID)

	return s, nil
}

// Disconnect tears down whatever session c holds. Safe to call for
// connections that never registered and safe to call twice.
func (k *Core) Disconnect(c Conn) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if s, ok := k.registry.Unregister(c); ok {
		k.rooms.Remove(s.RoomID, s.UserID)
	}
}

// Send persists the message, acks the sender with the stored record, and
// fans it out to every other registered connection in the room. The roomID
// and userID in the frame must match c's session exactly; a registered
// client cannot speak for another room or user.
func (k *Core) Send(ctx context.Context, c Conn, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	k.mu.RLock()
	s, ok := k.registry.Lookup(c)
	k.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	if s.RoomID != roomID || s.UserID != userID {
		return nil, domain.ErrContextMismatch
	}

	// The room may have been deleted since registration.
	if _, err := k.findRoom(ctx, roomID); err != nil {
		return nil, err
	}

	msg, err := k.createMessage(ctx, roomID, userID, text)
	if err != nil {
		return nil, err
	}

	if err := c.Send(Frame{Type: TypeMessageSent, Chat: msg}); err != nil {
		slog.Warn("relay: sender ack failed", "conn", c.ID(), "room", roomID, "err", err)
	}
	k.fanout(c, msg)

	return msg, nil
}

// fanout delivers msg to every other live connection registered in the
// message's room. Snapshot first, send outside the lock: a close event may
// shrink the registry mid-broadcast. Per-recipient failures are logged and
// never abort delivery to the rest.
func (k *Core) fanout(sender Conn, msg *domain.ChatMessage) {
	k.mu.RLock()
	entries := k.registry.Snapshot()
	recipients := make([]Conn, 0, len(entries))
	for _, e := range entries {
		if e.Conn == sender {
			continue
		}
		if e.Session.RoomID != msg.RoomID {
			continue
		}
		if !k.rooms.Contains(msg.RoomID, e.Session.UserID) {
			continue
		}
		recipients = append(recipients, e.Conn)
	}
	k.mu.RUnlock()

	frame := Frame{Type: TypeNewMessage, Chat: msg}
	for _, rc := range recipients {
		if err := rc.Send(frame); err != nil {
			slog.Warn("relay: fanout send failed", "conn", rc.ID(), "room", msg.RoomID, "err", err)
		}
	}
}

// MembersOf reports the user ids currently registered in the room.
func (k *Core) MembersOf(roomID string) []int64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.rooms.MembersOf(roomID)
}

// SessionOf reports c's active session, if any.
func (k *Core) SessionOf(c Conn) (Session, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.registry.Lookup(c)
}

func (k *Core) findRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, k.storeTimeout)
	defer cancel()

	room, err := k.roomStore.FindRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("%w: find room: %v", domain.ErrPersistence, err)
	}
	return room, nil
}

func (k *Core) createMessage(ctx context.Context, roomID string, userID int64, text string) (*domain.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, k.storeTimeout)
	defer cancel()

	msg, err := k.chatStore.CreateMessage(ctx, roomID, userID, text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create message: %v", domain.ErrPersistence, err)
	}
	return msg, nil
}
