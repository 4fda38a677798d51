package relay

// Conn is the transport-side handle the core holds for a live client.
// The core never owns the connection; the transport layer creates it on
// accept and reports its death via Dispatcher.HandleClose.
type Conn interface {
	Send(f Frame) error
	Close() error
	ID() string
}

// Session binds one connection to one authorized (userID, roomID) pair.
type Session struct {
	UserID int64
	RoomID string
}
