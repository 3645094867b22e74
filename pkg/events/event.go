package events

import (
	"encoding/json"

	"chatd/pkg/models"
)

// Event is the closed set of change notifications pushed to clients. The
// sealed marker keeps the variants in this package: a new kind means a new
// type here plus updating every switch that matches on it.
type Event interface {
	// Name is the wire label carried on the outbound frame.
	Name() string
	// Payload is the entity serialized as the frame body.
	Payload() ([]byte, error)

	isEvent()
}

type NewChat struct {
	Chat models.Chat
}

type AddToChat struct {
	Chat models.Chat
}

type RemoveFromChat struct {
	Chat models.Chat
}

type NewMessage struct {
	Message models.Message
}

func (NewChat) Name() string        { return "NewChat" }
func (AddToChat) Name() string      { return "AddToChat" }
func (RemoveFromChat) Name() string { return "RemoveFromChat" }
func (NewMessage) Name() string     { return "NewMessage" }

func (e NewChat) Payload() ([]byte, error)        { return json.Marshal(e.Chat) }
func (e AddToChat) Payload() ([]byte, error)      { return json.Marshal(e.Chat) }
func (e RemoveFromChat) Payload() ([]byte, error) { return json.Marshal(e.Chat) }
func (e NewMessage) Payload() ([]byte, error)     { return json.Marshal(e.Message) }

func (NewChat) isEvent()        {}
func (AddToChat) isEvent()      {}
func (RemoveFromChat) isEvent() {}
func (NewMessage) isEvent()     {}
