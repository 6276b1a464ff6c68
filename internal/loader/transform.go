package loader

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/JonMunkholm/rawloader/internal/logging"
	"github.com/JonMunkholm/rawloader/internal/storage"
)

// TransformResult is the outcome of Transform.
type TransformResult struct {
	MetadataID string                 `json:"metadataId"`
	Inserted   int64                  `json:"inserted"`
	Errors     []core.ValidationError `json:"errors,omitempty"`
}

// Transform re-validates a stored upload and, when it passes, replaces its
// canonical records and marks it TRANSFORMED. When validation fails the
// metadata is marked FAILED, nothing is written, and ErrValidationFailed is
// returned with the errors in the result.
func (s *Service) Transform(ctx context.Context, id string) (TransformResult, error) {
	meta, err := s.Metadata(ctx, id)
	if err != nil {
		return TransformResult{}, err
	}

	ctx, release, err := s.acquire(ctx)
	if err != nil {
		return TransformResult{}, err
	}
	defer release()

	log := logging.WithFields(ctx, "metadata_id", meta.ID, "config_id", meta.ConfigID)
	start := time.Now()

	schema, file, err := s.inputs(ctx, meta)
	if err != nil {
		return TransformResult{}, err
	}

	out := s.engine.ValidateThenTransform(ctx, bytes.NewReader(file.Data), schema)
	result := TransformResult{MetadataID: meta.ID.String()}

	if !out.Valid() {
		log.Warn("transform rejected", "errors", len(out.Errors))
		if err := s.store.UpdateStatus(ctx, meta.ID, storage.StatusFailed, out.Errors, meta.RowCount); err != nil {
			return TransformResult{}, err
		}
		result.Errors = out.Errors
		return result, ErrValidationFailed
	}

	inserted, err := s.store.SaveTransformed(ctx, meta.ID, out.Records)
	if err != nil {
		log.Error("transform persist failed", "error", err)
		return TransformResult{}, err
	}
	result.Inserted = inserted

	log.Info("transform completed",
		"inserted", inserted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Preview transforms the first limit records of a stored upload without
// persisting anything. limit <= 0 uses the configured preview limit. An
// outcome carrying errors is returned together with ErrValidationFailed.
func (s *Service) Preview(ctx context.Context, id string, limit int) (core.Outcome, error) {
	if limit <= 0 {
		limit = s.cfg.PreviewLimit
	}

	meta, err := s.Metadata(ctx, id)
	if err != nil {
		return core.Outcome{}, err
	}

	schema, file, err := s.inputs(ctx, meta)
	if err != nil {
		return core.Outcome{}, err
	}

	out := s.engine.Preview(ctx, bytes.NewReader(file.Data), schema, limit)
	if !out.Valid() {
		return out, ErrValidationFailed
	}
	return out, nil
}

// inputs loads the schema and stored file an upload was validated against.
func (s *Service) inputs(ctx context.Context, meta storage.Metadata) (core.Schema, storage.File, error) {
	schema, err := s.schemas.GetSchema(ctx, meta.PartnerID, meta.ConfigID)
	if err != nil {
		return core.Schema{}, storage.File{}, err
	}
	file, err := s.store.OpenFile(ctx, meta.FileID)
	if err != nil {
		return core.Schema{}, storage.File{}, fmt.Errorf("stored file for %s: %w", meta.ID, lookupError(err))
	}
	return schema, file, nil
}
