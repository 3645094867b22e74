package events

import (
	"encoding/json"
	"fmt"

	"chatd/pkg/models"
)

// Notification channel names, matching the trigger functions shipped in the
// migrations.
const (
	ChannelChatUpdated    = "chat_updated"
	ChannelMessageCreated = "chat_message_created"
)

// Delivery pairs a decoded event with the users that must receive it.
type Delivery struct {
	Event      Event
	Recipients []int64
}

type chatUpdated struct {
	Op  string       `json:"op"`
	Old *models.Chat `json:"old"`
	New *models.Chat `json:"new"`
}

type messageCreated struct {
	Message models.Message `json:"message"`
	Members []int64        `json:"members"`
}

// DecodeChatUpdated turns a chat_updated trigger payload into deliveries.
//
// Membership-change policy: AddToChat goes only to the newly added members and
// RemoveFromChat only to the removed ones. Members whose standing did not
// change learn about it from authoritative reads, not from the stream.
func DecodeChatUpdated(payload []byte) ([]Delivery, error) {
	var n chatUpdated
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("chat_updated: %w", err)
	}

	switch n.Op {
	case "INSERT":
		if n.New == nil {
			return nil, fmt.Errorf("chat_updated: INSERT without new row")
		}
		return []Delivery{{Event: NewChat{Chat: *n.New}, Recipients: n.New.Members}}, nil

	case "UPDATE":
		if n.Old == nil || n.New == nil {
			return nil, fmt.Errorf("chat_updated: UPDATE without old/new rows")
		}
		added := diffMembers(n.New.Members, n.Old.Members)
		removed := diffMembers(n.Old.Members, n.New.Members)
		var ds []Delivery
		if len(added) > 0 {
			ds = append(ds, Delivery{Event: AddToChat{Chat: *n.New}, Recipients: added})
		}
		if len(removed) > 0 {
			ds = append(ds, Delivery{Event: RemoveFromChat{Chat: *n.New}, Recipients: removed})
		}
		return ds, nil

	case "DELETE":
		if n.Old == nil {
			return nil, fmt.Errorf("chat_updated: DELETE without old row")
		}
		return []Delivery{{Event: RemoveFromChat{Chat: *n.Old}, Recipients: n.Old.Members}}, nil

	default:
		return nil, fmt.Errorf("chat_updated: unknown op %q", n.Op)
	}
}

// DecodeMessageCreated turns a chat_message_created trigger payload into a
// delivery. The trigger embeds the chat's member list so no lookup is needed.
func DecodeMessageCreated(payload []byte) ([]Delivery, error) {
	var n messageCreated
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("chat_message_created: %w", err)
	}
	if n.Message.ID == 0 {
		return nil, fmt.Errorf("chat_message_created: missing message")
	}
	if len(n.Members) == 0 {
		return nil, nil
	}
	return []Delivery{{Event: NewMessage{Message: n.Message}, Recipients: n.Members}}, nil
}

// diffMembers returns the ids present in a but not in b.
func diffMembers(a, b []int64) []int64 {
	in := make(map[int64]bool, len(b))
	for _, id := range b {
		in[id] = true
	}
	var out []int64
	for _, id := range a {
		if !in[id] {
			out = append(out, id)
		}
	}
	return out
}
