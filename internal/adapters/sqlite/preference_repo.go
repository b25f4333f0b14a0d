package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/example/watchful/internal/ports/secondary"
)

// PreferenceRepository implements secondary.PreferenceStore using SQLite.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetBool returns the stored value and whether the key was present.
func (r *PreferenceRepository) GetBool(ctx context.Context, key string) (bool, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("preference %s: not a bool: %q", key, raw)
	}
	return value, true, nil
}

// SetBool stores a value, replacing any previous one.
func (r *PreferenceRepository) SetBool(ctx context.Context, key string, value bool) error {
	query := `INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, key, strconv.FormatBool(value), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Ensure PreferenceRepository implements the interface
var _ secondary.PreferenceStore = (*PreferenceRepository)(nil)
