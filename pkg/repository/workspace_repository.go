package repository

import (
	"database/sql"

	"chatd/pkg/models"
)

type WorkspaceRepository interface {
	Create(name string, ownerID int64) (models.Workspace, error)
	FindByName(name string) (models.Workspace, error)
	FindByID(id int64) (models.Workspace, error)
	UpdateOwner(id, ownerID int64) (models.Workspace, error)
}

type workspaceRepository struct {
	db *sql.DB
}

func NewWorkspaceRepository(db *sql.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) Create(name string, ownerID int64) (models.Workspace, error) {
	var ws models.Workspace
	err := r.db.QueryRow(`
		INSERT INTO workspaces (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id, created_at
	`, name, ownerID).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	return ws, err
}

func (r *workspaceRepository) FindByName(name string) (models.Workspace, error) {
	var ws models.Workspace
	err := r.db.QueryRow(`
		SELECT id, name, owner_id, created_at
		FROM workspaces
		WHERE name = $1
	`, name).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	return ws, err
}

func (r *workspaceRepository) FindByID(id int64) (models.Workspace, error) {
	var ws models.Workspace
	err := r.db.QueryRow(`
		SELECT id, name, owner_id, created_at
		FROM workspaces
		WHERE id = $1
	`, id).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	return ws, err
}

func (r *workspaceRepository) UpdateOwner(id, ownerID int64) (models.Workspace, error) {
	var ws models.Workspace
	err := r.db.QueryRow(`
		UPDATE workspaces
		SET owner_id = $1
		WHERE id = $2
		RETURNING id, name, owner_id, created_at
	`, ownerID, id).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	return ws, err
}
