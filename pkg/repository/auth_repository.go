package repository

import (
	"database/sql"

	"chatd/pkg/models"

	"github.com/lib/pq"
)

type AuthRepository interface {
	CreateUser(wsID int64, fullname, email, passwordHash string) (models.User, error)
	FindByEmail(email string) (models.User, error)
	FetchByIDs(ids []int64) ([]models.ChatUser, error)
	FetchAllByWorkspace(wsID int64) ([]models.ChatUser, error)
}

type authRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(wsID int64, fullname, email, passwordHash string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		INSERT INTO users (ws_id, fullname, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ws_id, fullname, email, created_at
	`, wsID, fullname, email, passwordHash).Scan(&u.ID, &u.WsID, &u.Fullname, &u.Email, &u.CreatedAt)
	return u, err
}

func (r *authRepository) FindByEmail(email string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		SELECT id, ws_id, fullname, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.WsID, &u.Fullname, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (r *authRepository) FetchByIDs(ids []int64) ([]models.ChatUser, error) {
	rows, err := r.db.Query(`
		SELECT id, fullname, email
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatUsers(rows)
}

func (r *authRepository) FetchAllByWorkspace(wsID int64) ([]models.ChatUser, error) {
	rows, err := r.db.Query(`
		SELECT id, fullname, email
		FROM users
		WHERE ws_id = $1
		ORDER BY id
	`, wsID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanChatUsers(rows)
}

func scanChatUsers(rows *sql.Rows) ([]models.ChatUser, error) {
	var users []models.ChatUser
	for rows.Next() {
		var u models.ChatUser
		if err := rows.Scan(&u.ID, &u.Fullname, &u.Email); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
