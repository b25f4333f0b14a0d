// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/watchful/internal/ports/primary"
)

// EvidenceAdapter is a thin adapter that translates CLI operations to EvidenceService calls.
// It depends only on the EvidenceService interface, enabling easy testing with mocks.
type EvidenceAdapter struct {
	service primary.EvidenceService
	out     io.Writer
}

// NewEvidenceAdapter creates a new EvidenceAdapter with the given service.
func NewEvidenceAdapter(service primary.EvidenceService, out io.Writer) *EvidenceAdapter {
	return &EvidenceAdapter{
		service: service,
		out:     out,
	}
}

// Add queues a captured file.
func (a *EvidenceAdapter) Add(ctx context.Context, req primary.RecordCaptureRequest) (*primary.Evidence, error) {
	evidence, err := a.service.RecordCapture(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to queue evidence: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Queued %s evidence %d: %s (%d bytes)\n",
		evidence.EvidenceType, evidence.LocalID, evidence.LocalPath, evidence.FileSizeBytes)
	return evidence, nil
}

// List prints the queue, newest first. With pendingOnly it prints only
// items awaiting upload, oldest first, which is the order they will go out.
func (a *EvidenceAdapter) List(ctx context.Context, pendingOnly bool) ([]*primary.Evidence, error) {
	var (
		items []*primary.Evidence
		err   error
	)
	if pendingOnly {
		items, err = a.service.ListPending(ctx)
	} else {
		items, err = a.service.ListEvidence(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}

	if len(items) == 0 {
		if pendingOnly {
			fmt.Fprintln(a.out, "No pending evidence.")
		} else {
			fmt.Fprintln(a.out, "No evidence queued.")
		}
		return items, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tSERVER\tCREATED\tPATH")
	fmt.Fprintln(w, "--\t----\t------\t------\t-------\t----")

	for _, e := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.LocalID,
			e.EvidenceType,
			statusLabel(e),
			serverLabel(e.ServerID),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.LocalPath,
		)
	}

	w.Flush()
	return items, nil
}

// Show displays details for a single item.
func (a *EvidenceAdapter) Show(ctx context.Context, localID int64) (*primary.Evidence, error) {
	e, err := a.service.GetEvidence(ctx, localID)
	if err != nil {
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}

	fmt.Fprintf(a.out, "\nEvidence: %d\n", e.LocalID)
	fmt.Fprintf(a.out, "Type:     %s\n", e.EvidenceType)
	fmt.Fprintf(a.out, "Status:   %s\n", statusLabel(e))
	fmt.Fprintf(a.out, "Path:     %s\n", e.LocalPath)
	fmt.Fprintf(a.out, "Size:     %d bytes\n", e.FileSizeBytes)
	if e.DurationSeconds > 0 {
		fmt.Fprintf(a.out, "Duration: %s\n", time.Duration(e.DurationSeconds)*time.Second)
	}
	fmt.Fprintf(a.out, "Server:   %s\n", serverLabel(e.ServerID))
	fmt.Fprintf(a.out, "Created:  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if e.UploadedAt != nil {
		fmt.Fprintf(a.out, "Uploaded: %s\n", e.UploadedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if e.RemoteFileID != "" {
		fmt.Fprintf(a.out, "Remote:   %s\n", e.RemoteFileID)
	}
	fmt.Fprintln(a.out)

	return e, nil
}

// Remove deletes one item from the queue.
func (a *EvidenceAdapter) Remove(ctx context.Context, localID int64) error {
	if err := a.service.DeleteEvidence(ctx, localID); err != nil {
		return fmt.Errorf("failed to delete evidence: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Evidence %d removed from the queue\n", localID)
	return nil
}

// Clear empties the queue.
func (a *EvidenceAdapter) Clear(ctx context.Context) error {
	if err := a.service.ClearEvidence(ctx); err != nil {
		return fmt.Errorf("failed to clear evidence: %w", err)
	}

	fmt.Fprintln(a.out, "✓ Evidence queue cleared")
	return nil
}

func statusLabel(e *primary.Evidence) string {
	if e.GaveUp() {
		return "gave-up"
	}
	return e.UploadStatus
}

func serverLabel(serverID *int64) string {
	if serverID == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *serverID)
}
