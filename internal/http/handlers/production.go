package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/production-portal-backend/internal/domain"
	domainagg "github.com/yungbote/production-portal-backend/internal/domain/aggregates"
	"github.com/yungbote/production-portal-backend/internal/domain/production"
	"github.com/yungbote/production-portal-backend/internal/http/response"
	"github.com/yungbote/production-portal-backend/internal/platform/apierr"
	"github.com/yungbote/production-portal-backend/internal/platform/logger"
	"github.com/yungbote/production-portal-backend/internal/services"
)

const maxUploadMemory = 32 << 20

// RequestView is a request plus the caller's scope on it, so clients know which
// fields are editable.
type RequestView struct {
	*types.ProductionRequest
	Scope string `json:"scope"`
}

type ProductionHandler struct {
	log         *logger.Logger
	production  services.ProductionService
	attachments services.AttachmentService
}

type ProductionHandlerDeps struct {
	Log         *logger.Logger
	Production  services.ProductionService
	Attachments services.AttachmentService
}

func NewProductionHandler(deps ProductionHandlerDeps) *ProductionHandler {
	return &ProductionHandler{
		log:         deps.Log.With("handler", "ProductionHandler"),
		production:  deps.Production,
		attachments: deps.Attachments,
	}
}

func view(req *types.ProductionRequest, scope production.Scope) RequestView {
	return RequestView{ProductionRequest: req, Scope: scope.String()}
}

func parseRequestID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAggregateError(c, apierr.BadRequest("invalid_id", fmt.Errorf("invalid request id %q", c.Param("id"))))
		return uuid.Nil, false
	}
	return id, true
}

func bindPatch(c *gin.Context) (*production.RequestPatch, bool) {
	var patch production.RequestPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.RespondAggregateError(c, apierr.BadRequest("invalid_json", err))
		return nil, false
	}
	return &patch, true
}

// POST /api/production
func (h *ProductionHandler) Create(c *gin.Context) {
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	res, err := h.production.Create(c.Request.Context(), patch)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, view(res.Request, res.Scope))
}

// GET /api/production
func (h *ProductionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	rows, total, err := h.production.List(c.Request.Context(), services.ListRequestsInput{
		Stage:          c.Query("stage"),
		AssignedUserID: c.Query("assignedUserId"),
		Department:     c.Query("department"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": rows, "total": total})
}

// GET /api/production/:id
func (h *ProductionHandler) Get(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	req, scope, err := h.production.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, view(req, scope))
}

// PUT /api/production/:id
func (h *ProductionHandler) Update(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	patch, ok := bindPatch(c)
	if !ok {
		return
	}
	res, err := h.production.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, view(res.Request, res.Scope))
}

type moveBody struct {
	Stage string `json:"stage"`
}

// PUT /api/production/:id/move
//
// An illegal transition by a caller who holds some write scope is a conflict with the
// workflow (409). A read-only caller is plainly forbidden (403).
func (h *ProductionHandler) Move(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	var body moveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAggregateError(c, apierr.BadRequest("invalid_json", err))
		return
	}
	if strings.TrimSpace(body.Stage) == "" {
		response.RespondAggregateError(c, domainagg.NewError(domainagg.CodeValidation, "production_request.move", "stage is required", nil))
		return
	}
	res, err := h.production.Move(c.Request.Context(), id, body.Stage)
	if err != nil {
		var te *production.TransitionError
		if errors.As(err, &te) && te.Scope != production.ScopeReadOnly {
			response.RespondAggregateErrorWithStatus(c, err, http.StatusConflict)
			return
		}
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, view(res.Request, res.Scope))
}

// DELETE /api/production/:id
func (h *ProductionHandler) Delete(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	if err := h.production.Delete(c.Request.Context(), id); err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/production/:id/history
func (h *ProductionHandler) History(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	rows, err := h.production.History(c.Request.Context(), id, limit, offset)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// POST /api/production/:id/files
func (h *ProductionHandler) UploadFiles(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		response.RespondAggregateError(c, apierr.BadRequest("invalid_multipart_form", err))
		return
	}
	var headers []*multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		response.RespondAggregateError(c, apierr.BadRequest("no_files", errors.New("no files in field \"files\"")))
		return
	}

	uploads := make([]services.UploadInput, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.log.Error("cannot open uploaded file", "name", fh.Filename, "error", err)
			response.RespondAggregateError(c, apierr.BadRequest("could_not_read_files", err))
			return
		}
		opened = append(opened, f)
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			buf := make([]byte, 512)
			n, _ := f.Read(buf)
			contentType = http.DetectContentType(buf[:n])
			if _, err := f.Seek(0, 0); err != nil {
				response.RespondAggregateError(c, apierr.BadRequest("could_not_read_files", err))
				return
			}
		}
		uploads = append(uploads, services.UploadInput{
			Name:        fh.Filename,
			ContentType: contentType,
			Size:        fh.Size,
			Body:        f,
		})
	}

	res, err := h.attachments.Upload(c.Request.Context(), id, uploads)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	if res.Status == services.LinkStatusUploadedNotLinked {
		c.JSON(http.StatusAccepted, gin.H{
			"status":  res.Status,
			"warning": res.Warning,
			"files":   res.Files,
		})
		return
	}
	response.RespondOK(c, gin.H{
		"status":  res.Status,
		"files":   res.Files,
		"request": res.Request,
	})
}

// DELETE /api/production/:id/files/*fileId
func (h *ProductionHandler) RemoveFile(c *gin.Context) {
	id, ok := parseRequestID(c)
	if !ok {
		return
	}
	fileID := strings.TrimPrefix(c.Param("fileId"), "/")
	if fileID == "" {
		response.RespondAggregateError(c, apierr.BadRequest("invalid_file_id", errors.New("missing file id")))
		return
	}
	res, err := h.production.RemoveFile(c.Request.Context(), id, fileID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, view(res.Request, res.Scope))
}
