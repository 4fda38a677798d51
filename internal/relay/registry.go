package relay

// Registry maps each live connection to its registered session. It is the
// single source of truth for connection state; RoomIndex is derived from it.
//
// Not goroutine-safe on its own: Core guards the registry and the room index
// with one lock so they can never disagree.
type Registry struct {
	sessions map[Conn]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[Conn]Session)}
}

// Register inserts or replaces the session for c.
func (r *Registry) Register(c Conn, s Session) {
	r.sessions[c] = s
}

func (r *Registry) Lookup(c Conn) (Session, bool) {
	s, ok := r.sessions[c]
	return s, ok
}

// Unregister removes and returns the prior session. Repeated calls on an
// unregistered connection are no-ops.
func (r *Registry) Unregister(c Conn) (Session, bool) {
	s, ok := r.sessions[c]
	if ok {
		delete(r.sessions, c)
	}
	return s, ok
}

func (r *Registry) Len() int { return len(r.sessions) }

// Entry is one (connection, session) pair from a Snapshot.
type Entry struct {
	Conn    Conn
	Session Session
}

// Snapshot returns a copy of the current pairs, so fanout can iterate while
// a concurrent close mutates the live map.
func (r *Registry) Snapshot() []Entry {
	out := make([]Entry, 0, len(r.sessions))
	for c, s := range r.sessions {
		out = append(out, Entry{Conn: c, Session: s})
	}
	return out
}
