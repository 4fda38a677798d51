package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/chat-relay/relay-service/internal/domain"
)

// Dispatcher is the protocol boundary: it parses inbound frames, routes them
// into the core, and turns every failure into a single error frame back to
// the originating connection. Nothing escapes it; a panic anywhere below is
// recovered and answered like any other internal error.
type Dispatcher struct {
	core *Core
}

func NewDispatcher(core *Core) *Dispatcher {
	return &Dispatcher{core: core}
}

// HandleConnect is called by the transport when a connection is accepted.
// The core keeps no state for unregistered connections.
func (d *Dispatcher) HandleConnect(c Conn) {
	slog.Debug("dispatcher: connection accepted", "conn", c.ID())
}

// HandleFrame processes one inbound frame from c.
func (d *Dispatcher) HandleFrame(ctx context.Context, c Conn, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("dispatcher: panic handling frame",
				"conn", c.ID(),
				"panic", r,
				"stack", string(debug.Stack()))
			d.sendError(c, "internal error")
		}
	}()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		d.sendError(c, "invalid json")
		return
	}

	switch env.Type {
	case TypeRegister:
		d.handleRegister(ctx, c, raw)
	case TypeMessage:
		d.handleMessage(ctx, c, raw)
	default:
		// Unknown and missing types get no reply. See DESIGN.md.
		slog.Debug("dispatcher: ignoring frame", "conn", c.ID(), "type", env.Type)
	}
}

// HandleClose is called by the transport after c is gone, in any state.
func (d *Dispatcher) HandleClose(c Conn) {
	d.core.Disconnect(c)
	slog.Debug("dispatcher: connection closed", "conn", c.ID())
}

func (d *Dispatcher) handleRegister(ctx context.Context, c Conn, raw []byte) {
	var req registerRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		d.sendError(c, "invalid register request")
		return
	}

	s, err := d.core.Register(ctx, c, req.RoomID, int64(req.UserID))
	if err != nil {
		d.replyError(c, "register", err)
		return
	}

	if err := c.Send(Frame{Type: TypeRegisterSuccess, RoomID: s.RoomID, UserID: s.UserID}); err != nil {
		slog.Warn("dispatcher: register ack failed", "conn", c.ID(), "err", err)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, c Conn, raw []byte) {
	var req messageRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		d.sendError(c, "invalid message request")
		return
	}

	// Send acks the sender and fans out on success.
	if _, err := d.core.Send(ctx, c, req.RoomID, int64(req.UserID), req.Text); err != nil {
		d.replyError(c, "message", err)
	}
}

// replyError maps a core error to its wire message. Domain sentinels pass
// through verbatim; anything unexpected is logged and flattened to a generic
// message so internals never leak to clients.
func (d *Dispatcher) replyError(c Conn, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, domain.ErrContextMismatch):
		d.sendError(c, err.Error())
	case errors.Is(err, domain.ErrPersistence):
		slog.Error("dispatcher: store failure", "op", op, "conn", c.ID(), "err", err)
		d.sendError(c, domain.ErrPersistence.Error())
	default:
		slog.Error("dispatcher: unexpected error", "op", op, "conn", c.ID(), "err", err)
		d.sendError(c, "internal error")
	}
}

func (d *Dispatcher) sendError(c Conn, msg string) {
	if err := c.Send(Frame{Type: TypeError, Message: msg}); err != nil {
		slog.Debug("dispatcher: error frame send failed", "conn", c.ID(), "err", err)
	}
}
