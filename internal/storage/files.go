package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// File is a stored upload.
type File struct {
	ID          uuid.UUID
	Name        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// StoreFile saves the raw bytes of an upload and returns the new file id.
func (s *Store) StoreFile(ctx context.Context, name, contentType string, data []byte) (uuid.UUID, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	id := uuid.New()

	const query = `
		INSERT INTO raw_loader_files (id, file_name, content_type, size_bytes, data)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.pool.Exec(ctx, query, toPgUUID(id), name, contentType, int64(len(data)), data); err != nil {
		return uuid.Nil, fmt.Errorf("store file %q: %w", name, err)
	}
	return id, nil
}

// OpenFile loads a stored upload by id.
func (s *Store) OpenFile(ctx context.Context, id uuid.UUID) (File, error) {
	const query = `
		SELECT id, file_name, content_type, data, created_at
		FROM raw_loader_files
		WHERE id = $1`

	var (
		f       File
		pgID    pgtype.UUID
		created pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, query, toPgUUID(id)).Scan(&pgID, &f.Name, &f.ContentType, &f.Data, &created)
	if err != nil {
		return File{}, notFound(err, "file", id)
	}
	f.ID = fromPgUUID(pgID)
	f.CreatedAt = created.Time
	return f, nil
}

// Purge deletes files uploaded before cutoff. Metadata and transformed
// records go with them.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM raw_loader_files WHERE created_at < $1`,
		pgtype.Timestamptz{Time: cutoff, Valid: true},
	)
	if err != nil {
		return 0, fmt.Errorf("purge files before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}
