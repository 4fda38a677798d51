package domain

import "time"

type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UserID    int64     `db:"user_id" json:"userId"`
	RoomID    string    `db:"room_id" json:"roomId"`
}
