package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Status is the validation status of an upload.
type Status string

const (
	StatusValidated   Status = "VALIDATED"
	StatusFailed      Status = "FAILED"
	StatusTransformed Status = "TRANSFORMED"
)

// Metadata describes one upload and the outcome of validating it.
type Metadata struct {
	ID         uuid.UUID              `json:"id"`
	FileID     uuid.UUID              `json:"fileId"`
	FileName   string                 `json:"fileName"`
	PartnerID  int64                  `json:"partnerId"`
	ConfigID   string                 `json:"configId"`
	Status     Status                 `json:"validationStatus"`
	Errors     []core.ValidationError `json:"errorMessages"`
	RowCount   int                    `json:"rowCount"`
	UploadedAt time.Time              `json:"uploadDate"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// CreateMetadata inserts m, assigning an id when m.ID is zero. The stored
// timestamps are written back into m.
func (s *Store) CreateMetadata(ctx context.Context, m *Metadata) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	errs, err := encodeErrors(m.Errors)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO raw_loader_metadata
			(id, file_id, file_name, partner_id, config_id, validation_status, error_messages, row_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING upload_date, updated_at`

	var uploaded, updated pgtype.Timestamptz
	err = s.pool.QueryRow(ctx, query,
		toPgUUID(m.ID), toPgUUID(m.FileID), m.FileName, m.PartnerID, m.ConfigID,
		string(m.Status), errs, int32(m.RowCount),
	).Scan(&uploaded, &updated)
	if err != nil {
		return fmt.Errorf("create metadata for %q: %w", m.FileName, err)
	}
	m.UploadedAt = uploaded.Time
	m.UpdatedAt = updated.Time
	return nil
}

// GetMetadata loads an upload's metadata by id.
func (s *Store) GetMetadata(ctx context.Context, id uuid.UUID) (Metadata, error) {
	return getMetadata(ctx, s.pool, id)
}

func getMetadata(ctx context.Context, db DBTX, id uuid.UUID) (Metadata, error) {
	const query = `
		SELECT id, file_id, file_name, partner_id, config_id, validation_status,
		       error_messages, row_count, upload_date, updated_at
		FROM raw_loader_metadata
		WHERE id = $1`

	var (
		m                 Metadata
		pgID, pgFile      pgtype.UUID
		status            string
		errs              []byte
		rowCount          int32
		uploaded, updated pgtype.Timestamptz
	)
	err := db.QueryRow(ctx, query, toPgUUID(id)).Scan(
		&pgID, &pgFile, &m.FileName, &m.PartnerID, &m.ConfigID, &status,
		&errs, &rowCount, &uploaded, &updated,
	)
	if err != nil {
		return Metadata{}, notFound(err, "metadata", id)
	}

	m.ID = fromPgUUID(pgID)
	m.FileID = fromPgUUID(pgFile)
	m.Status = Status(status)
	m.RowCount = int(rowCount)
	m.UploadedAt = uploaded.Time
	m.UpdatedAt = updated.Time
	if m.Errors, err = decodeErrors(errs); err != nil {
		return Metadata{}, fmt.Errorf("metadata %s: %w", id, err)
	}
	return m, nil
}

// UpdateStatus records a new validation outcome for an upload.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, errors []core.ValidationError, rowCount int) error {
	return updateStatus(ctx, s.pool, id, status, errors, rowCount)
}

func updateStatus(ctx context.Context, db DBTX, id uuid.UUID, status Status, errors []core.ValidationError, rowCount int) error {
	errs, err := encodeErrors(errors)
	if err != nil {
		return err
	}

	const query = `
		UPDATE raw_loader_metadata
		SET validation_status = $2, error_messages = $3, row_count = $4, updated_at = now()
		WHERE id = $1`

	tag, err := db.Exec(ctx, query, toPgUUID(id), string(status), errs, int32(rowCount))
	if err != nil {
		return fmt.Errorf("update metadata %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("metadata %s: %w", id, ErrNotFound)
	}
	return nil
}

// encodeErrors marshals the error list for the jsonb column. nil is stored
// as an empty array.
func encodeErrors(errs []core.ValidationError) ([]byte, error) {
	if errs == nil {
		errs = []core.ValidationError{}
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return nil, fmt.Errorf("encode validation errors: %w", err)
	}
	return data, nil
}

func decodeErrors(data []byte) ([]core.ValidationError, error) {
	errs := []core.ValidationError{}
	if len(data) == 0 {
		return errs, nil
	}
	if err := json.Unmarshal(data, &errs); err != nil {
		return nil, fmt.Errorf("decode validation errors: %w", err)
	}
	return errs, nil
}
