package domain

import "time"

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`

	// AuthorizedUserIDs is the room's member list: the users allowed to
	// register a live session in this room.
	AuthorizedUserIDs []int64
}

func (r *Room) Authorized(userID int64) bool {
	for _, id := range r.AuthorizedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
