package repository

import (
	"database/sql"

	"chatd/pkg/models"

	"github.com/lib/pq"
)

type ChatRepository interface {
	Create(wsID int64, name *string, chatType models.ChatType, members []int64) (models.Chat, error)
	Update(id int64, name *string, members []int64) (models.Chat, error)
	Delete(id int64) (models.Chat, error)
	GetByID(id int64) (models.Chat, error)
	FetchAll(wsID int64) ([]models.Chat, error)
	IsMember(chatID, userID int64) (bool, error)
}

type chatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

const chatColumns = "id, ws_id, name, type, members, created_at"

func (r *chatRepository) Create(wsID int64, name *string, chatType models.ChatType, members []int64) (models.Chat, error) {
	return r.scanOne(r.db.QueryRow(`
		INSERT INTO chats (ws_id, name, type, members)
		VALUES ($1, $2, $3, $4)
		RETURNING `+chatColumns,
		wsID, name, chatType, pq.Array(members)))
}

// Update writes name and/or members; nil name and nil members leave the
// column untouched. The row trigger raises chat_updated with old and new.
func (r *chatRepository) Update(id int64, name *string, members []int64) (models.Chat, error) {
	return r.scanOne(r.db.QueryRow(`
		UPDATE chats
		SET name = COALESCE($1, name),
		    members = COALESCE($2, members)
		WHERE id = $3
		RETURNING `+chatColumns,
		name, pq.Array(members), id))
}

func (r *chatRepository) Delete(id int64) (models.Chat, error) {
	return r.scanOne(r.db.QueryRow(`
		DELETE FROM chats
		WHERE id = $1
		RETURNING `+chatColumns, id))
}

func (r *chatRepository) GetByID(id int64) (models.Chat, error) {
	return r.scanOne(r.db.QueryRow(`
		SELECT `+chatColumns+`
		FROM chats
		WHERE id = $1
	`, id))
}

func (r *chatRepository) FetchAll(wsID int64) ([]models.Chat, error) {
	rows, err := r.db.Query(`
		SELECT `+chatColumns+`
		FROM chats
		WHERE ws_id = $1
		ORDER BY id
	`, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.WsID, &c.Name, &c.Type, pq.Array(&c.Members), &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (r *chatRepository) IsMember(chatID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM chats WHERE id = $1 AND $2 = ANY(members)
		)
	`, chatID, userID).Scan(&ok)
	return ok, err
}

func (r *chatRepository) scanOne(row *sql.Row) (models.Chat, error) {
	var c models.Chat
	err := row.Scan(&c.ID, &c.WsID, &c.Name, &c.Type, pq.Array(&c.Members), &c.CreatedAt)
	return c, err
}
