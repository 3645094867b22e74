package services

import (
	"fmt"
	"os"

	"chatd/pkg/models"
	"chatd/pkg/repository"
)

type MessageService interface {
	Create(input models.CreateMessage, chatID, senderID int64) (models.Message, error)
	List(input models.ListMessages, chatID int64) ([]models.Message, error)
}

type messageService struct {
	messages repository.MessageRepository
	baseDir  string
}

func NewMessageService(messages repository.MessageRepository, baseDir string) MessageService {
	return &messageService{messages: messages, baseDir: baseDir}
}

func (s *messageService) Create(input models.CreateMessage, chatID, senderID int64) (models.Message, error) {
	if input.Content == "" {
		return models.Message{}, fmt.Errorf("%w: content is empty", ErrInvalidInput)
	}

	// Attachments must have been uploaded first; a message never references
	// a file that is not on disk.
	for _, url := range input.Files {
		file, err := models.ParseFileURL(url)
		if err != nil {
			return models.Message{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, err := os.Stat(file.Path(s.baseDir)); err != nil {
			return models.Message{}, fmt.Errorf("%w: file %s not found", ErrInvalidInput, url)
		}
	}

	return s.messages.Create(chatID, senderID, input.Content, input.Files)
}

func (s *messageService) List(input models.ListMessages, chatID int64) ([]models.Message, error) {
	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.messages.List(chatID, input.LastID, limit)
}
