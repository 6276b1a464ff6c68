package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var recordColumns = []string{"metadata_id", "ordinal", "transformed_row"}

// Record is one persisted canonical record.
type Record struct {
	MetadataID uuid.UUID            `json:"metadataId"`
	Ordinal    int                  `json:"ordinal"`
	Row        core.CanonicalRecord `json:"transformedRow"`
	InsertedAt time.Time            `json:"insertedAt"`
}

// SaveTransformed replaces the records of an upload and marks it
// TRANSFORMED, all in one transaction. Records are written with COPY in
// batches and keep their sheet order as ordinals starting at 0.
func (s *Store) SaveTransformed(ctx context.Context, metadataID uuid.UUID, records []core.CanonicalRecord) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	// Lock the metadata row so concurrent transforms of one upload serialize.
	if _, err := tx.Exec(ctx, `SELECT 1 FROM raw_loader_metadata WHERE id = $1 FOR UPDATE`, toPgUUID(metadataID)); err != nil {
		return 0, fmt.Errorf("lock metadata %s: %w", metadataID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM raw_loader_transformed WHERE metadata_id = $1`, toPgUUID(metadataID)); err != nil {
		return 0, fmt.Errorf("clear records for %s: %w", metadataID, err)
	}

	var inserted int64
	for start := 0; start < len(records); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("copy cancelled at record %d: %w", start, err)
		}

		end := min(start+s.batchSize, len(records))
		rows, err := copyRows(metadataID, start, records[start:end])
		if err != nil {
			return 0, err
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"raw_loader_transformed"}, recordColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("copy records %d-%d for %s: %w", start, end-1, metadataID, err)
		}
		inserted += n
	}

	if err := updateStatus(ctx, tx, metadataID, StatusTransformed, nil, len(records)); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// ListRecords returns the persisted records of an upload in sheet order.
func (s *Store) ListRecords(ctx context.Context, metadataID uuid.UUID) ([]Record, error) {
	const query = `
		SELECT metadata_id, ordinal, transformed_row, inserted_at
		FROM raw_loader_transformed
		WHERE metadata_id = $1
		ORDER BY ordinal`

	rows, err := s.pool.Query(ctx, query, toPgUUID(metadataID))
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", metadataID, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r        Record
			pgID     pgtype.UUID
			ordinal  int32
			payload  []byte
			inserted pgtype.Timestamptz
		)
		if err := rows.Scan(&pgID, &ordinal, &payload, &inserted); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(payload, &r.Row); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", ordinal, err)
		}
		r.MetadataID = fromPgUUID(pgID)
		r.Ordinal = int(ordinal)
		r.InsertedAt = inserted.Time
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records for %s: %w", metadataID, err)
	}
	return out, nil
}

// copyRows converts a batch of records into COPY rows. offset is the
// ordinal of the first record in the batch.
func copyRows(metadataID uuid.UUID, offset int, records []core.CanonicalRecord) ([][]any, error) {
	id := toPgUUID(metadataID)
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", offset+i, err)
		}
		rows = append(rows, []any{id, int32(offset + i), payload})
	}
	return rows, nil
}
