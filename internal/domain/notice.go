package domain

import "time"

type Notice struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoticePatch is a partial edit; nil fields are unchanged.
type NoticePatch struct {
	Title    *string
	Content  *string
	IsActive *bool
}
