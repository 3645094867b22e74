package repository

import (
	"database/sql"
	"math"

	"chatd/pkg/models"

	"github.com/lib/pq"
)

type MessageRepository interface {
	Create(chatID, senderID int64, content string, files []string) (models.Message, error)
	List(chatID, lastID int64, limit int) ([]models.Message, error)
}

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(chatID, senderID int64, content string, files []string) (models.Message, error) {
	if files == nil {
		files = []string{}
	}
	var m models.Message
	err := r.db.QueryRow(`
		INSERT INTO messages (chat_id, sender_id, content, files)
		VALUES ($1, $2, $3, $4)
		RETURNING id, chat_id, sender_id, content, files, created_at
	`, chatID, senderID, content, pq.Array(files)).Scan(
		&m.ID, &m.ChatID, &m.SenderID, &m.Content, pq.Array(&m.Files), &m.CreatedAt,
	)
	return m, err
}

// List pages backwards by id: newest first, strictly older than lastID.
func (r *messageRepository) List(chatID, lastID int64, limit int) ([]models.Message, error) {
	if lastID <= 0 {
		lastID = math.MaxInt64
	}
	rows, err := r.db.Query(`
		SELECT id, chat_id, sender_id, content, files, created_at
		FROM messages
		WHERE chat_id = $1 AND id < $2
		ORDER BY id DESC
		LIMIT $3
	`, chatID, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, pq.Array(&m.Files), &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
