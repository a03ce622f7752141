package repository

import (
	"database/sql"
	"fmt"

	"github.com/ponyo877/sharepad/server/usecase"
)

// Repository is the durable catalog backend. The schema is a single table of
// room ids; nothing else about a room survives a restart.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) (usecase.CatalogStore, error) {
	query := "CREATE TABLE IF NOT EXISTS rooms (room_id TEXT PRIMARY KEY)"
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create rooms table: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Record(roomID string) error {
	query := "INSERT OR IGNORE INTO rooms (room_id) VALUES (?)"
	if _, err := r.db.Exec(query, roomID); err != nil {
		return fmt.Errorf("failed to insert room '%s': %w", roomID, err)
	}
	return nil
}

func (r *Repository) Remove(roomID string) error {
	query := "DELETE FROM rooms WHERE room_id = ?"
	if _, err := r.db.Exec(query, roomID); err != nil {
		return fmt.Errorf("failed to delete room '%s': %w", roomID, err)
	}
	return nil
}

func (r *Repository) LoadAll() ([]string, error) {
	query := "SELECT room_id FROM rooms ORDER BY rowid"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan room id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rooms: %w", err)
	}
	return ids, nil
}
