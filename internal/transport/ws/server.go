package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/chat-relay/relay-service/internal/relay"

	"github.com/gorilla/websocket"
)

// Server owns the ws endpoint. Each accepted socket becomes a relay.Conn;
// every inbound frame goes through the dispatcher, and the dispatcher's
// close handler runs exactly once when the read loop ends, however it ends.
type Server struct {
	upgrader   websocket.Upgrader
	dispatcher *relay.Dispatcher

	pingEvery time.Duration
}

func NewServer(dispatcher *relay.Dispatcher, pingEvery time.Duration) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	return &Server{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: pingEvery,
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	s.dispatcher.HandleConnect(c)

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)

	s.dispatcher.HandleClose(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.ID(), "err", err)
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		s.dispatcher.HandleFrame(ctx, c, data)
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
		case <-c.closed:
			return
		}
	}
}
