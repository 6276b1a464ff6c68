package loader

import (
	"bytes"
	"context"
	"time"

	"github.com/JonMunkholm/rawloader/internal/clients"
	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/JonMunkholm/rawloader/internal/logging"
	"github.com/JonMunkholm/rawloader/internal/storage"
	"golang.org/x/sync/errgroup"
)

// Upload response messages.
const (
	MsgUploadValid   = "File validated and stored successfully"
	MsgUploadInvalid = "Validation failed"
	MsgUploadFault   = "Internal error"
)

// UploadRequest is one partner file submitted for validation.
type UploadRequest struct {
	FileName    string
	ContentType string
	PartnerID   int64
	ConfigID    string
	Data        []byte
}

// UploadResponse is the outcome of Upload.
type UploadResponse struct {
	MetadataID       string                 `json:"metadataId"`
	Valid            bool                   `json:"valid"`
	Errors           []core.ValidationError `json:"errors"`
	Message          string                 `json:"message"`
	FileName         string                 `json:"fileName"`
	ValidationStatus storage.Status         `json:"validationStatus"`
}

// Upload stores a partner file, validates it against the partner's schema
// and records the outcome as upload metadata.
//
// Failures resolving the partner or schema, or storing the upload, do not
// return an error: the response carries a single internal validation error
// and no metadata id. An error is returned only when no upload slot could
// be acquired (core.ErrTooManyUploads) or ctx ended while waiting.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	ctx, release, err := s.acquire(ctx)
	if err != nil {
		return UploadResponse{}, err
	}
	defer release()

	log := logging.WithFields(ctx,
		"partner_id", req.PartnerID,
		"config_id", req.ConfigID,
		"file", req.FileName,
	)
	start := time.Now()
	log.Info("upload started", "bytes", len(req.Data))

	schema, partner, err := s.resolve(ctx, req.PartnerID, req.ConfigID)
	if err != nil {
		log.Error("upload lookup failed", "error", err)
		return faultResponse(req.FileName, err), nil
	}
	log.Debug("upload inputs resolved", "partner", partner.PartnerName, "columns", len(schema.Columns))

	fileID, err := s.store.StoreFile(ctx, req.FileName, req.ContentType, req.Data)
	if err != nil {
		log.Error("upload store failed", "error", err)
		return faultResponse(req.FileName, err), nil
	}

	rep := s.engine.Validate(ctx, bytes.NewReader(req.Data), schema)

	meta := &storage.Metadata{
		FileID:    fileID,
		FileName:  req.FileName,
		PartnerID: req.PartnerID,
		ConfigID:  req.ConfigID,
		Status:    storage.StatusValidated,
		Errors:    rep.Errors,
		RowCount:  rep.Rows,
	}
	if !rep.Valid() {
		meta.Status = storage.StatusFailed
	}
	if err := s.store.CreateMetadata(ctx, meta); err != nil {
		log.Error("upload metadata failed", "file_id", fileID, "error", err)
		return faultResponse(req.FileName, err), nil
	}

	log.Info("upload validated",
		"metadata_id", meta.ID,
		"status", meta.Status,
		"rows", rep.Rows,
		"errors", len(rep.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	resp := UploadResponse{
		MetadataID:       meta.ID.String(),
		Valid:            rep.Valid(),
		Errors:           rep.Errors,
		Message:          MsgUploadValid,
		FileName:         req.FileName,
		ValidationStatus: meta.Status,
	}
	if !resp.Valid {
		resp.Message = MsgUploadInvalid
	}
	return resp, nil
}

// resolve fetches the schema and partner concurrently.
func (s *Service) resolve(ctx context.Context, partnerID int64, configID string) (core.Schema, clients.Partner, error) {
	var (
		schema  core.Schema
		partner clients.Partner
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		partner, err = s.partners.GetPartner(gctx, partnerID)
		return err
	})
	g.Go(func() error {
		var err error
		schema, err = s.schemas.GetSchema(gctx, partnerID, configID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Schema{}, clients.Partner{}, err
	}
	return schema, partner, nil
}

func faultResponse(fileName string, err error) UploadResponse {
	return UploadResponse{
		Valid:            false,
		Errors:           []core.ValidationError{{Field: core.FieldInternal, Message: err.Error()}},
		Message:          MsgUploadFault,
		FileName:         fileName,
		ValidationStatus: storage.StatusFailed,
	}
}
