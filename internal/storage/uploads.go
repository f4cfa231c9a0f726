package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Upload is one replacement of the minifigure index.
type Upload struct {
	ID         string
	UploadedBy int64
	ObjectKey  string
	Entries    int
	CreatedAt  time.Time
}

// RecordUpload logs a successful index replacement.
func (s *SQLiteStore) RecordUpload(ctx context.Context, uploadedBy int64, objectKey string, entries int) (*Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upload := &Upload{
		ID:         uuid.New().String(),
		UploadedBy: uploadedBy,
		ObjectKey:  objectKey,
		Entries:    entries,
		CreatedAt:  s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO index_uploads (id, uploaded_by, object_key, entries, created_at) VALUES (?, ?, ?, ?, ?)`,
		upload.ID, upload.UploadedBy, upload.ObjectKey, upload.Entries, upload.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	return upload, nil
}

// LatestUpload returns the most recent upload, or nil when none is logged.
func (s *SQLiteStore) LatestUpload(ctx context.Context) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u Upload
	err := s.db.QueryRowContext(ctx,
		`SELECT id, uploaded_by, object_key, entries, created_at FROM index_uploads ORDER BY created_at DESC LIMIT 1`,
	).Scan(&u.ID, &u.UploadedBy, &u.ObjectKey, &u.Entries, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest upload: %w", err)
	}
	return &u, nil
}
