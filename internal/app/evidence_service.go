package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/example/watchful/internal/clock"
	"github.com/example/watchful/internal/ports/primary"
	"github.com/example/watchful/internal/ports/secondary"
)

// EvidenceServiceImpl implements the EvidenceService interface.
type EvidenceServiceImpl struct {
	repo  secondary.EvidenceRepository
	clock clock.Clock
}

// NewEvidenceService creates a new EvidenceService with injected dependencies.
func NewEvidenceService(repo secondary.EvidenceRepository, clk clock.Clock) *EvidenceServiceImpl {
	if clk == nil {
		clk = clock.Real()
	}
	return &EvidenceServiceImpl{
		repo:  repo,
		clock: clk,
	}
}

// RecordCapture queues a newly captured file as pending.
func (s *EvidenceServiceImpl) RecordCapture(ctx context.Context, req primary.RecordCaptureRequest) (*primary.Evidence, error) {
	evidenceType := strings.ToLower(strings.TrimSpace(req.EvidenceType))
	if evidenceType != secondary.EvidenceTypeVideo && evidenceType != secondary.EvidenceTypeAudio {
		return nil, fmt.Errorf("invalid evidence type %q (valid: video, audio)", req.EvidenceType)
	}
	if req.LocalPath == "" {
		return nil, fmt.Errorf("local path is required")
	}
	if req.FileSizeBytes < 0 {
		return nil, fmt.Errorf("file size must not be negative")
	}
	if req.DurationSeconds < 0 {
		return nil, fmt.Errorf("duration must not be negative")
	}

	size := req.FileSizeBytes
	if size == 0 {
		info, err := os.Stat(req.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", secondary.ErrLocalFileMissing, req.LocalPath)
		}
		size = info.Size()
	}

	record := &secondary.EvidenceRecord{
		EvidenceType:    evidenceType,
		LocalPath:       req.LocalPath,
		FileSizeBytes:   size,
		DurationSeconds: req.DurationSeconds,
		UploadStatus:    secondary.UploadStatusPending,
		CreatedAt:       s.clock.Now().UTC(),
	}
	id, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to queue evidence: %w", err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch queued evidence: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("evidence %d not found after insert", id)
	}
	return s.recordToEvidence(created), nil
}

// ListEvidence returns every queued item, newest first.
func (s *EvidenceServiceImpl) ListEvidence(ctx context.Context) ([]*primary.Evidence, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	return s.recordsToEvidence(records), nil
}

// ListPending returns items awaiting upload, oldest first.
func (s *EvidenceServiceImpl) ListPending(ctx context.Context) ([]*primary.Evidence, error) {
	records, err := s.repo.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending evidence: %w", err)
	}
	return s.recordsToEvidence(records), nil
}

// CountPending returns the number of items awaiting upload.
func (s *EvidenceServiceImpl) CountPending(ctx context.Context) (int, error) {
	count, err := s.repo.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending evidence: %w", err)
	}
	return count, nil
}

// GetEvidence retrieves one item.
func (s *EvidenceServiceImpl) GetEvidence(ctx context.Context, localID int64) (*primary.Evidence, error) {
	record, err := s.repo.GetByID(ctx, localID)
	if err != nil {
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %d", primary.ErrEvidenceNotFound, localID)
	}
	return s.recordToEvidence(record), nil
}

// DeleteEvidence removes one item from the queue. The file is left alone.
func (s *EvidenceServiceImpl) DeleteEvidence(ctx context.Context, localID int64) error {
	if err := s.repo.Delete(ctx, localID); err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}
	return nil
}

// ClearEvidence removes every item from the queue.
func (s *EvidenceServiceImpl) ClearEvidence(ctx context.Context) error {
	if err := s.repo.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear evidence: %w", err)
	}
	return nil
}

// Helper methods

func (s *EvidenceServiceImpl) recordsToEvidence(records []*secondary.EvidenceRecord) []*primary.Evidence {
	items := make([]*primary.Evidence, len(records))
	for i, r := range records {
		items[i] = s.recordToEvidence(r)
	}
	return items
}

func (s *EvidenceServiceImpl) recordToEvidence(r *secondary.EvidenceRecord) *primary.Evidence {
	return &primary.Evidence{
		LocalID:         r.LocalID,
		ServerID:        r.ServerID,
		EvidenceType:    r.EvidenceType,
		LocalPath:       r.LocalPath,
		FileSizeBytes:   r.FileSizeBytes,
		DurationSeconds: r.DurationSeconds,
		UploadStatus:    r.UploadStatus,
		CreatedAt:       r.CreatedAt,
		UploadedAt:      r.UploadedAt,
		RemoteFileID:    r.RemoteFileID,
	}
}

// Ensure EvidenceServiceImpl implements the interface
var _ primary.EvidenceService = (*EvidenceServiceImpl)(nil)
