// Package blobstore holds BlobStore implementations.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/example/watchful/internal/ports/secondary"
)

// DirStore stores evidence files in a directory, typically a mounted
// network share or a folder synced by another agent. Each upload gets a
// fresh uuid name, so retries never overwrite an earlier copy.
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at root, creating it if needed.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob store root is required")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("failed to create blob store root: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Upload copies the file into the store and returns its remote file ID.
// The copy is written under a temporary name, synced, then renamed, so a
// crash never leaves a truncated blob under a final name.
func (s *DirStore) Upload(ctx context.Context, localPath string) (string, error) {
	src, err := os.Open(localPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", secondary.ErrLocalFileMissing, localPath)
	}
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", secondary.ErrRemoteUnavailable, localPath, err)
	}
	defer src.Close()

	id := uuid.NewString() + strings.ToLower(filepath.Ext(localPath))
	final := filepath.Join(s.root, id)
	temp := final + ".partial"

	dst, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("%w: %w", secondary.ErrRemoteUnavailable, err)
	}

	if err := copyContext(ctx, dst, src); err != nil {
		dst.Close()
		os.Remove(temp)
		return "", fmt.Errorf("%w: copy %s: %w", secondary.ErrRemoteUnavailable, localPath, err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		os.Remove(temp)
		return "", fmt.Errorf("%w: sync: %w", secondary.ErrRemoteUnavailable, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(temp)
		return "", fmt.Errorf("%w: close: %w", secondary.ErrRemoteUnavailable, err)
	}
	if err := os.Rename(temp, final); err != nil {
		os.Remove(temp)
		return "", fmt.Errorf("%w: rename: %w", secondary.ErrRemoteUnavailable, err)
	}

	return id, nil
}

// Path returns where a remote file ID is stored.
func (s *DirStore) Path(remoteFileID string) string {
	return filepath.Join(s.root, filepath.Base(remoteFileID))
}

// copyContext copies in chunks, checking ctx between chunks.
func copyContext(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, 256<<10)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

// Ensure DirStore implements the interface
var _ secondary.BlobStore = (*DirStore)(nil)
