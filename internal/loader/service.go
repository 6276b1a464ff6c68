// Package loader runs the raw loader workflow: store an upload, validate it
// against the partner's schema, and later transform it into canonical
// records.
//
// The engine in internal/core does the sheet work. This package resolves
// its inputs (partner, schema, stored bytes), bounds concurrency and
// persists the results.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/rawloader/internal/clients"
	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/JonMunkholm/rawloader/internal/storage"
	"github.com/google/uuid"
)

// DefaultPreviewLimit is used when neither the caller nor Config sets one.
const DefaultPreviewLimit = 10

// ErrValidationFailed is returned by Transform and Preview when the stored
// file no longer passes validation. The accompanying result carries the
// errors.
var ErrValidationFailed = errors.New("validation failed")

// PartnerSource looks up partners.
type PartnerSource interface {
	GetPartner(ctx context.Context, partnerID int64) (clients.Partner, error)
}

// Store is the persistence the service needs.
type Store interface {
	StoreFile(ctx context.Context, name, contentType string, data []byte) (uuid.UUID, error)
	OpenFile(ctx context.Context, id uuid.UUID) (storage.File, error)
	CreateMetadata(ctx context.Context, m *storage.Metadata) error
	GetMetadata(ctx context.Context, id uuid.UUID) (storage.Metadata, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status storage.Status, errs []core.ValidationError, rowCount int) error
	SaveTransformed(ctx context.Context, metadataID uuid.UUID, records []core.CanonicalRecord) (int64, error)
	ListRecords(ctx context.Context, metadataID uuid.UUID) ([]storage.Record, error)
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds the service's tunables. Zero values fall back to defaults.
type Config struct {
	MaxConcurrent int           // uploads and transforms in flight (default: 5)
	MaxWaitTime   time.Duration // wait for a slot before ErrTooManyUploads (default: 30s)
	Timeout       time.Duration // bound on one upload or transform (default: none)
	PreviewLimit  int           // records returned by Preview (default: 10)
}

// Service coordinates uploads, transforms and reads.
type Service struct {
	engine   *core.Engine
	schemas  clients.SchemaSource
	partners PartnerSource
	store    Store
	limiter  *core.SlotLimiter
	cfg      Config
}

// New creates a Service.
func New(engine *core.Engine, schemas clients.SchemaSource, partners PartnerSource, store Store, cfg Config) *Service {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = core.DefaultMaxConcurrentUploads
	}
	if cfg.MaxWaitTime <= 0 {
		cfg.MaxWaitTime = core.DefaultMaxWaitTime
	}
	if cfg.PreviewLimit <= 0 {
		cfg.PreviewLimit = DefaultPreviewLimit
	}
	return &Service{
		engine:   engine,
		schemas:  schemas,
		partners: partners,
		store:    store,
		limiter:  core.NewSlotLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		cfg:      cfg,
	}
}

// LimiterStatus reports upload slot usage.
func (s *Service) LimiterStatus() core.LimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until no upload or transform is running, or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// acquire takes an upload slot and applies the operation timeout. The
// returned release must be called exactly once.
func (s *Service) acquire(ctx context.Context) (context.Context, func(), error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	cancel := context.CancelFunc(func() {})
	if s.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return ctx, func() {
		cancel()
		s.limiter.Release()
	}, nil
}

// Metadata returns the stored metadata of an upload.
func (s *Service) Metadata(ctx context.Context, id string) (storage.Metadata, error) {
	mid, err := storage.ParseID(id)
	if err != nil {
		return storage.Metadata{}, lookupError(err)
	}
	m, err := s.store.GetMetadata(ctx, mid)
	if err != nil {
		return storage.Metadata{}, lookupError(err)
	}
	return m, nil
}

// lookupError labels missing or malformed upload ids so they map to UPL002.
func lookupError(err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) {
		return fmt.Errorf("upload not found: %w", err)
	}
	return err
}

// IsNotFound reports whether err means the upload does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID)
}

// Download is an original upload ready to be sent back.
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Download returns the original bytes of an upload.
func (s *Service) Download(ctx context.Context, id string) (Download, error) {
	m, err := s.Metadata(ctx, id)
	if err != nil {
		return Download{}, err
	}
	f, err := s.store.OpenFile(ctx, m.FileID)
	if err != nil {
		return Download{}, lookupError(err)
	}
	return Download{FileName: m.FileName, ContentType: f.ContentType, Data: f.Data}, nil
}

// Records returns the persisted canonical records of an upload.
func (s *Service) Records(ctx context.Context, id string) ([]storage.Record, error) {
	m, err := s.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.ListRecords(ctx, m.ID)
}
