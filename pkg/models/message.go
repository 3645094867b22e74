package models

import "time"

type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateMessage struct {
	Content string   `json:"content"`
	Files   []string `json:"files"`
}

type ListMessages struct {
	LastID int64 `json:"last_id" query:"last_id"`
	Limit  int   `json:"limit" query:"limit"`
}
