package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/server/models"
	"github.com/labstack/echo/v4"
)

// EntryService is the application surface the handlers delegate to.
// Declared here so tests can substitute a double for the real service.
type EntryService interface {
	RequestUploadSlots(ctx context.Context, files []models.FileUpload) ([]models.UploadSlot, error)
	ConfirmTextEntry(ctx context.Context, text string) (*models.Entry, error)
	ConfirmFileEntry(ctx context.Context, files []models.FileRef) (*models.Entry, error)
	ListEntries(ctx context.Context) ([]models.ListRow, error)
	RequestDownloadURL(ctx context.Context, entryID string, storageKey string) (*models.DownloadLink, error)
	DeleteEntry(ctx context.Context, id string) (*models.DeleteResult, error)
}

// EntryHandler handles HTTP requests for the entry lifecycle.
type EntryHandler struct {
	service EntryService
	logger  logging.Logger
}

func NewEntryHandler(service EntryService, logger logging.Logger) *EntryHandler {
	return &EntryHandler{service: service, logger: logger}
}

type uploadSlotsRequest struct {
	Files []models.FileUpload `json:"files"`
}

type createEntryRequest struct {
	Type  string           `json:"type"`
	Text  string           `json:"text"`
	Files []models.FileRef `json:"files"`
}

type downloadURLRequest struct {
	StorageKey string `json:"storageKey"`
}

// errorJSON maps service errors onto the HTTP surface. Validation problems
// are the caller's to fix (400), unknown ids/keys are 404, everything else
// is logged and reported as 500 without leaking upstream detail.
func (h *EntryHandler) errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "entry not found"})
	case errors.Is(err, common.ErrorNotConfigured):
		h.logger.Error(c.Request().Context(), "object storage not configured")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": common.ErrorNotConfigured.Error()})
	default:
		h.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err.Error())
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// RequestUploadSlots handles POST /api/entries/upload-slots.
// Body: {"files":[{"name","size","mime"}]}. Returns one presigned slot per
// file, or rejects the whole batch.
func (h *EntryHandler) RequestUploadSlots(c echo.Context) error {
	var req uploadSlotsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	slots, err := h.service.RequestUploadSlots(c.Request().Context(), req.Files)
	if err != nil {
		return h.errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"uploads": slots})
}

// CreateEntry handles POST /api/entries. The body discriminates on "type":
// a text entry carries "text", a file entry carries the uploaded files'
// metadata including their storage keys.
func (h *EntryHandler) CreateEntry(c echo.Context) error {
	var req createEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	var entry *models.Entry
	var err error

	switch req.Type {
	case models.KindText:
		entry, err = h.service.ConfirmTextEntry(c.Request().Context(), req.Text)
	case models.KindFile:
		entry, err = h.service.ConfirmFileEntry(c.Request().Context(), req.Files)
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid type"})
	}

	if err != nil {
		return h.errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "entry": entry})
}

// ListEntries handles GET /api/entries, newest first.
func (h *EntryHandler) ListEntries(c echo.Context) error {
	rows, err := h.service.ListEntries(c.Request().Context())
	if err != nil {
		return h.errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, rows)
}

// DownloadURL handles POST /api/entries/:id/download-url. The optional body
// names which of the entry's storage keys to sign; a single-file entry
// needs no body.
func (h *EntryHandler) DownloadURL(c echo.Context) error {
	id := c.Param("id")

	var req downloadURLRequest
	// an empty body is fine here
	_ = c.Bind(&req)

	link, err := h.service.RequestDownloadURL(c.Request().Context(), id, req.StorageKey)
	if err != nil {
		return h.errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, link)
}

// DeleteEntry handles DELETE /api/entries/:id. Object deletions inside are
// best-effort; failures are logged per key and the call still succeeds.
func (h *EntryHandler) DeleteEntry(c echo.Context) error {
	id := c.Param("id")

	result, err := h.service.DeleteEntry(c.Request().Context(), id)
	if err != nil {
		return h.errorJSON(c, err)
	}

	if failed := result.Failed(); len(failed) > 0 {
		h.logger.Warn(c.Request().Context(), "entry deleted with orphaned objects", "entry_id", id, "orphans", len(failed))
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
