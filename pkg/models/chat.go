package models

import "time"

type ChatType string

const (
	ChatSingle         ChatType = "single"
	ChatGroup          ChatType = "group"
	ChatPrivateChannel ChatType = "private_channel"
	ChatPublicChannel  ChatType = "public_channel"
)

type Chat struct {
	ID        int64     `json:"id"`
	WsID      int64     `json:"ws_id"`
	Name      *string   `json:"name"`
	Type      ChatType  `json:"type"`
	Members   []int64   `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether uid is in the chat's member list.
func (c *Chat) HasMember(uid int64) bool {
	for _, m := range c.Members {
		if m == uid {
			return true
		}
	}
	return false
}

type CreateChat struct {
	Name    *string `json:"name"`
	Members []int64 `json:"members"`
	Public  bool    `json:"public"`
}

type UpdateChat struct {
	Name    *string `json:"name"`
	Members []int64 `json:"members"`
}
