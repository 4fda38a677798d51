package relay

// RoomIndex maps each room to the set of user ids with at least one live
// session in it. Entries are reference-counted so that two connections
// holding the same (user, room) pair survive the close of either one; the
// set reported by MembersOf stays a plain set. A room entry is deleted
// outright when its last member leaves.
//
// Guarded by Core's lock, same as Registry.
type RoomIndex struct {
	rooms map[string]map[int64]int // roomID -> userID -> live session count
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{rooms: make(map[string]map[int64]int)}
}

func (x *RoomIndex) Add(roomID string, userID int64) {
	members, ok := x.rooms[roomID]
	if !ok {
		members = make(map[int64]int)
		x.rooms[roomID] = members
	}
	members[userID]++
}

func (x *RoomIndex) Remove(roomID string, userID int64) {
	members, ok := x.rooms[roomID]
	if !ok {
		return
	}
	members[userID]--
	if members[userID] <= 0 {
		delete(members, userID)
	}
	if len(members) == 0 {
		delete(x.rooms, roomID)
	}
}

func (x *RoomIndex) Contains(roomID string, userID int64) bool {
	members, ok := x.rooms[roomID]
	if !ok {
		return false
	}
	return members[userID] > 0
}

// MembersOf returns the user ids currently registered in the room.
// Empty slice for an unknown room.
func (x *RoomIndex) MembersOf(roomID string) []int64 {
	members := x.rooms[roomID]
	out := make([]int64, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

func (x *RoomIndex) Rooms() int { return len(x.rooms) }
