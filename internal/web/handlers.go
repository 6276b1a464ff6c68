package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/rawloader/internal/core"
	"github.com/JonMunkholm/rawloader/internal/loader"
	"github.com/go-chi/chi/v5"
)

// MsgTransformed is the message of a successful transform.
const MsgTransformed = "Transformation completed"

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// TransformResponse is the body of POST /transform/{id}.
type TransformResponse struct {
	MetadataID string                 `json:"metadataId"`
	Inserted   int64                  `json:"inserted"`
	Message    string                 `json:"message"`
	Errors     []core.ValidationError `json:"errors,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart form with file, partnerId and configId.
// A valid file answers 202, an invalid one 400 with the validation errors.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, fmt.Errorf("%w: limit %d bytes", errFileTooBig, s.cfg.Upload.MaxFileSize), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("parse upload form: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	partnerID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("partnerId")), 10, 64)
	if err != nil {
		respondError(w, r, fmt.Errorf("partnerId must be an integer: %w", err), http.StatusBadRequest)
		return
	}
	configID := strings.TrimSpace(r.FormValue("configId"))
	if configID == "" {
		respondError(w, r, errors.New("configId is required"), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	resp, err := s.loader.Upload(r.Context(), loader.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		PartnerID:   partnerID,
		ConfigID:    configID,
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, core.ErrTooManyUploads) {
			w.Header().Set("Retry-After", "30")
		}
		respondError(w, r, err, statusFor(err))
		return
	}

	status := http.StatusAccepted
	if !resp.Valid {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.loader.Metadata(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleDownload returns the original upload as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	d, err := s.loader.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Data)
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	res, err := s.loader.Transform(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, loader.ErrValidationFailed) {
		writeJSON(w, http.StatusUnprocessableEntity, TransformResponse{
			MetadataID: res.MetadataID,
			Message:    loader.MsgUploadInvalid,
			Errors:     res.Errors,
		})
		return
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, TransformResponse{
		MetadataID: res.MetadataID,
		Inserted:   res.Inserted,
		Message:    MsgTransformed,
	})
}

// handlePreview returns the first ?limit= canonical records without storing
// them. A missing limit uses the configured default.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, r, fmt.Errorf("limit must be a positive integer, got %q", v), http.StatusBadRequest)
			return
		}
		limit = n
	}

	out, err := s.loader.Preview(r.Context(), chi.URLParam(r, "id"), limit)
	if errors.Is(err, loader.ErrValidationFailed) {
		writeJSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransformed(w http.ResponseWriter, r *http.Request) {
	records, err := s.loader.Records(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}
