package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chatd/pkg/cache"
	"chatd/pkg/models"
	"chatd/pkg/repository"
)

const chatCacheTTL = 30 * time.Second

type ChatService interface {
	Create(input models.CreateChat, wsID int64) (models.Chat, error)
	Update(input models.UpdateChat, wsID, chatID int64) (models.Chat, error)
	Delete(wsID, chatID int64) (models.Chat, error)
	GetByID(chatID int64) (models.Chat, error)
	FetchAll(wsID int64) ([]models.Chat, error)
	IsMember(chatID, userID int64) (bool, error)
}

type chatService struct {
	chats repository.ChatRepository
	users repository.AuthRepository
	redis *cache.Redis
}

func NewChatService(chats repository.ChatRepository, users repository.AuthRepository, redis *cache.Redis) ChatService {
	return &chatService{chats: chats, users: users, redis: redis}
}

func (s *chatService) Create(input models.CreateChat, wsID int64) (models.Chat, error) {
	if err := s.validateMembers(input.Name, input.Members); err != nil {
		return models.Chat{}, err
	}

	chat, err := s.chats.Create(wsID, input.Name, deriveChatType(input.Name, len(input.Members), input.Public), input.Members)
	if err != nil {
		return models.Chat{}, err
	}
	s.invalidate(wsID)
	return chat, nil
}

func (s *chatService) Update(input models.UpdateChat, wsID, chatID int64) (models.Chat, error) {
	chat, err := s.owned(wsID, chatID)
	if err != nil {
		return models.Chat{}, err
	}

	if input.Members != nil {
		name := input.Name
		if name == nil {
			name = chat.Name
		}
		if err := s.validateMembers(name, input.Members); err != nil {
			return models.Chat{}, err
		}
	}

	updated, err := s.chats.Update(chatID, input.Name, input.Members)
	if err != nil {
		return models.Chat{}, err
	}
	s.invalidate(wsID)
	return updated, nil
}

func (s *chatService) Delete(wsID, chatID int64) (models.Chat, error) {
	if _, err := s.owned(wsID, chatID); err != nil {
		return models.Chat{}, err
	}
	chat, err := s.chats.Delete(chatID)
	if err != nil {
		return models.Chat{}, err
	}
	s.invalidate(wsID)
	return chat, nil
}

func (s *chatService) GetByID(chatID int64) (models.Chat, error) {
	chat, err := s.chats.GetByID(chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, fmt.Errorf("%w: chat %d", ErrNotFound, chatID)
	}
	return chat, err
}

func (s *chatService) FetchAll(wsID int64) ([]models.Chat, error) {
	key := fmt.Sprintf("chats:ws:%d", wsID)
	var cached []models.Chat
	if s.redis.Get(key, &cached) {
		return cached, nil
	}

	chats, err := s.chats.FetchAll(wsID)
	if err != nil {
		return nil, err
	}
	s.redis.Set(key, chats, chatCacheTTL)
	return chats, nil
}

func (s *chatService) IsMember(chatID, userID int64) (bool, error) {
	return s.chats.IsMember(chatID, userID)
}

func (s *chatService) owned(wsID, chatID int64) (models.Chat, error) {
	chat, err := s.GetByID(chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if chat.WsID != wsID {
		return models.Chat{}, ErrPermissionDenied
	}
	return chat, nil
}

func (s *chatService) validateMembers(name *string, members []int64) error {
	if len(members) < 2 {
		return fmt.Errorf("%w: chat must have at least 2 members", ErrInvalidInput)
	}
	if len(members) > 8 && name == nil {
		return fmt.Errorf("%w: group chat with more than 8 members must have a name", ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(members))
	for _, id := range members {
		if seen[id] {
			return fmt.Errorf("%w: duplicate member %d", ErrInvalidInput, id)
		}
		seen[id] = true
	}

	users, err := s.users.FetchByIDs(members)
	if err != nil {
		return err
	}
	if len(users) != len(members) {
		return fmt.Errorf("%w: some members do not exist", ErrInvalidInput)
	}
	return nil
}

func (s *chatService) invalidate(wsID int64) {
	s.redis.Del(fmt.Sprintf("chats:ws:%d", wsID))
}

// deriveChatType mirrors the creation rules: two anonymous members make a
// direct chat, more make a group, and a named chat is a channel whose
// visibility the public flag decides.
func deriveChatType(name *string, memberCount int, public bool) models.ChatType {
	switch {
	case name == nil && memberCount == 2:
		return models.ChatSingle
	case name == nil:
		return models.ChatGroup
	case public:
		return models.ChatPublicChannel
	default:
		return models.ChatPrivateChannel
	}
}
