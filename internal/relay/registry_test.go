package relay

import "testing"

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	c := &fakeConn{id: "c1"}

	if _, ok := r.Lookup(c); ok {
		t.Fatal("lookup on empty registry should miss")
	}

	r.Register(c, Session{UserID: 1, RoomID: "r1"})
	s, ok := r.Lookup(c)
	if !ok || s.UserID != 1 || s.RoomID != "r1" {
		t.Fatalf("lookup after register = %+v, ok=%v", s, ok)
	}

	// replace
	r.Register(c, Session{UserID: 2, RoomID: "r2"})
	if s, _ := r.Lookup(c); s.UserID != 2 || s.RoomID != "r2" {
		t.Fatalf("register should replace, got %+v", s)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	prior, ok := r.Unregister(c)
	if !ok || prior.UserID != 2 {
		t.Fatalf("unregister = %+v, ok=%v", prior, ok)
	}
	if _, ok := r.Unregister(c); ok {
		t.Fatal("second unregister should be a no-op miss")
	}
}

func TestRegistrySnapshotIsDetached(t *testing.T) {
	r := NewRegistry()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	r.Register(c1, Session{UserID: 1, RoomID: "r1"})
	r.Register(c2, Session{UserID: 2, RoomID: "r1"})

	snap := r.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snap))
	}

	// Mutating the registry must not disturb an in-flight iteration.
	r.Unregister(c1)
	for _, e := range snap {
		if e.Conn == nil {
			t.Fatal("snapshot entry lost its connection")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("Len after unregister = %d, want 1", r.Len())
	}
}
