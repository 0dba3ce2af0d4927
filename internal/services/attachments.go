package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/production-portal-backend/internal/data/aggregates"
	types "github.com/yungbote/production-portal-backend/internal/domain"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
	"github.com/yungbote/production-portal-backend/internal/observability"
	"github.com/yungbote/production-portal-backend/internal/platform/gcp"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
)

type LinkStatus string

const (
	LinkStatusLinked            LinkStatus = "linked"
	LinkStatusUploadedNotLinked LinkStatus = "uploaded_not_linked"
)

// UploadInput is one part of a multipart upload.
type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult reports a degraded outcome through Status rather than an error: the
// blobs exist even when linking them failed.
type UploadResult struct {
	Status  LinkStatus
	Files   []production.UploadedFile
	Request *types.ProductionRequest
	Warning string
	LinkErr error
}

type AttachmentService interface {
	Upload(ctx context.Context, requestID uuid.UUID, uploads []UploadInput) (UploadResult, error)
}

type AttachmentServiceDeps struct {
	Log        *logger.Logger
	Blobs      gcp.BlobStore
	Production ProductionService
	Metrics    *observability.Metrics
	Clock      func() time.Time
}

type attachmentService struct {
	log     *logger.Logger
	blobs   gcp.BlobStore
	prod    ProductionService
	metrics *observability.Metrics
	clock   func() time.Time
}

func NewAttachmentService(deps AttachmentServiceDeps) AttachmentService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &attachmentService{
		log:     deps.Log.With("service", "AttachmentService"),
		blobs:   deps.Blobs,
		prod:    deps.Production,
		metrics: deps.Metrics,
		clock:   deps.Clock,
	}
}

// AttachmentKey is the blob path for one uploaded file.
func AttachmentKey(requestID uuid.UUID, name string) string {
	return fmt.Sprintf("production/%s/%s-%s", requestID, uuid.NewString(), sanitizeFileName(name))
}

func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case r == '?' || r == '#' || r == '%':
			return '_'
		}
		return r
	}, name)
}

func (s *attachmentService) Upload(ctx context.Context, requestID uuid.UUID, uploads []UploadInput) (UploadResult, error) {
	const op = "production_request.upload"
	if len(uploads) == 0 {
		return UploadResult{}, aggregates.MapError(op, aggregates.ValidationError("no files uploaded"))
	}
	if s.blobs == nil {
		return UploadResult{}, domainagg.NewError(domainagg.CodeRetryable, op, "object storage is not configured", nil)
	}

	// Check before the upload so a caller who cannot link leaves no orphaned blob.
	_, scope, err := s.prod.Get(ctx, requestID)
	if err != nil {
		return UploadResult{}, err
	}
	if !scope.CanWrite(production.FieldFiles) {
		return UploadResult{}, aggregates.MapError(op, &production.ScopeViolationError{Scope: scope, Fields: []string{production.FieldFiles}})
	}

	now := s.clock().UTC()
	files := make([]production.UploadedFile, 0, len(uploads))
	for _, up := range uploads {
		key := AttachmentKey(requestID, up.Name)
		if err := s.blobs.Put(ctx, key, up.ContentType, up.Body); err != nil {
			s.log.Error("attachment upload failed", "request_id", requestID, "key", key, "uploaded", len(files), "error", err)
			s.metrics.IncAttachmentLink("upload_failed")
			s.discard(ctx, requestID, files)
			return UploadResult{}, domainagg.NewError(domainagg.CodeRetryable, op, "upload to object storage failed", err)
		}
		files = append(files, production.UploadedFile{
			ID:         key,
			Name:       sanitizeFileName(up.Name),
			Size:       up.Size,
			Type:       up.ContentType,
			URL:        s.blobs.PublicURL(key),
			UploadDate: now,
		})
	}

	res, err := s.prod.LinkFiles(ctx, requestID, files)
	if err != nil {
		s.log.Warn("attachment link failed after upload", "request_id", requestID, "files", len(files), "error", err)
		s.metrics.IncAttachmentLink(string(LinkStatusUploadedNotLinked))
		return UploadResult{
			Status:  LinkStatusUploadedNotLinked,
			Files:   files,
			Warning: "Uploaded but not linked",
			LinkErr: err,
		}, nil
	}
	s.metrics.IncAttachmentLink(string(LinkStatusLinked))
	return UploadResult{Status: LinkStatusLinked, Files: files, Request: res.Request}, nil
}

// discard removes the blobs of a batch that failed part way, so none of them is
// left in storage without a link.
func (s *attachmentService) discard(ctx context.Context, requestID uuid.UUID, files []production.UploadedFile) {
	if len(files) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, f := range files {
		if err := s.blobs.Delete(ctx, f.ID); err != nil {
			s.log.Error("orphaned attachment after failed batch", "request_id", requestID, "key", f.ID, "error", err)
		}
	}
}
