package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	Name    string  `json:"name"`
	UserIDs []int64 `json:"userIds"`
}

type RoomItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserIDs   []int64   `json:"userIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomsListResponse struct {
	Items      []RoomItem `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type MemberRequest struct {
	UserID int64 `json:"userId"`
}

type ChatItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	UserID    int64     `json:"userId"`
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatHistoryResponse struct {
	Items      []ChatItem `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

type PresenceResponse struct {
	RoomID  string  `json:"roomId"`
	UserIDs []int64 `json:"userIds"`
}
