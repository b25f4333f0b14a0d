package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/watchful/internal/ports/secondary"
)

// timeLayout is fixed-width so that created_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const evidenceColumns = `local_id, server_id, evidence_type, local_path, file_size_bytes, duration_seconds,
		upload_status, created_at, uploaded_at, remote_file_id`

// EvidenceRepository implements secondary.EvidenceRepository using SQLite.
type EvidenceRepository struct {
	db *sql.DB
}

// NewEvidenceRepository creates a new EvidenceRepository.
func NewEvidenceRepository(db *sql.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// Insert persists a new row and returns its local ID.
func (r *EvidenceRepository) Insert(ctx context.Context, record *secondary.EvidenceRecord) (int64, error) {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	status := record.UploadStatus
	if status == "" {
		status = secondary.UploadStatusPending
	}

	query := `INSERT INTO evidence (server_id, evidence_type, local_path, file_size_bytes, duration_seconds,
		upload_status, created_at, uploaded_at, remote_file_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		nullInt64(record.ServerID),
		record.EvidenceType,
		record.LocalPath,
		record.FileSizeBytes,
		record.DurationSeconds,
		status,
		formatTime(createdAt),
		nullTime(record.UploadedAt),
		nullString(record.RemoteFileID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert evidence: %w", err)
	}
	return result.LastInsertId()
}

// Update applies the non-nil fields of update. Moving an uploaded row back
// to pending is rejected.
func (r *EvidenceRepository) Update(ctx context.Context, localID int64, update secondary.EvidenceUpdate) error {
	var sets []string
	var args []any

	if update.ServerID != nil {
		sets = append(sets, "server_id = ?")
		args = append(args, *update.ServerID)
	}
	if update.UploadStatus != nil {
		sets = append(sets, "upload_status = ?")
		args = append(args, *update.UploadStatus)
	}
	if update.UploadedAt != nil {
		sets = append(sets, "uploaded_at = ?")
		args = append(args, formatTime(*update.UploadedAt))
	}
	if update.RemoteFileID != nil {
		sets = append(sets, "remote_file_id = ?")
		args = append(args, nullString(*update.RemoteFileID))
	}
	if len(sets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT upload_status FROM evidence WHERE local_id = ?", localID).Scan(&current)
	if err == sql.ErrNoRows {
		return fmt.Errorf("evidence not found: %d", localID)
	}
	if err != nil {
		return err
	}
	if update.UploadStatus != nil && current == secondary.UploadStatusUploaded && *update.UploadStatus != secondary.UploadStatusUploaded {
		return fmt.Errorf("evidence %d is already uploaded", localID)
	}

	args = append(args, localID)
	query := "UPDATE evidence SET " + strings.Join(sets, ", ") + " WHERE local_id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update evidence: %w", err)
	}
	return tx.Commit()
}

// GetAll returns every row, newest first.
func (r *EvidenceRepository) GetAll(ctx context.Context) ([]*secondary.EvidenceRecord, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence ORDER BY created_at DESC, local_id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvidence(rows)
}

// GetPending returns rows awaiting upload, oldest first.
func (r *EvidenceRepository) GetPending(ctx context.Context) ([]*secondary.EvidenceRecord, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence
		WHERE upload_status = 'pending' ORDER BY created_at ASC, local_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanEvidence(rows)
}

// GetByID retrieves a row, or nil if it does not exist.
func (r *EvidenceRepository) GetByID(ctx context.Context, localID int64) (*secondary.EvidenceRecord, error) {
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE local_id = ?`

	rows, err := r.db.QueryContext(ctx, query, localID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := r.scanEvidence(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// Delete removes a row.
func (r *EvidenceRepository) Delete(ctx context.Context, localID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM evidence WHERE local_id = ?", localID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("evidence not found: %d", localID)
	}
	return nil
}

// ClearAll removes every row.
func (r *EvidenceRepository) ClearAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM evidence")
	return err
}

// CountPending returns the number of rows awaiting upload.
func (r *EvidenceRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evidence WHERE upload_status = 'pending'").Scan(&count)
	return count, err
}

func (r *EvidenceRepository) scanEvidence(rows *sql.Rows) ([]*secondary.EvidenceRecord, error) {
	var records []*secondary.EvidenceRecord
	for rows.Next() {
		var record secondary.EvidenceRecord
		var serverID sql.NullInt64
		var createdAt string
		var uploadedAt, remoteFileID sql.NullString

		err := rows.Scan(
			&record.LocalID,
			&serverID,
			&record.EvidenceType,
			&record.LocalPath,
			&record.FileSizeBytes,
			&record.DurationSeconds,
			&record.UploadStatus,
			&createdAt,
			&uploadedAt,
			&remoteFileID,
		)
		if err != nil {
			return nil, err
		}

		if serverID.Valid {
			id := serverID.Int64
			record.ServerID = &id
		}
		if record.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("evidence %d: bad created_at: %w", record.LocalID, err)
		}
		if uploadedAt.Valid {
			at, err := parseTime(uploadedAt.String)
			if err != nil {
				return nil, fmt.Errorf("evidence %d: bad uploaded_at: %w", record.LocalID, err)
			}
			record.UploadedAt = &at
		}
		record.RemoteFileID = remoteFileID.String

		records = append(records, &record)
	}
	return records, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the fixed-width layout and plain RFC3339 written by
// older installs.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Ensure EvidenceRepository implements the interface
var _ secondary.EvidenceRepository = (*EvidenceRepository)(nil)
