package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-editor/internal/application/editor"
	"github.com/garyjia/invoice-editor/internal/domain/entity"
	"github.com/garyjia/invoice-editor/internal/domain/event"
	"github.com/garyjia/invoice-editor/internal/domain/invoice"
	"github.com/garyjia/invoice-editor/internal/domain/totals"
	"github.com/garyjia/invoice-editor/internal/render"
	"github.com/garyjia/invoice-editor/internal/snapshot"
)

// eventBuffer is how many changes a slow event stream may fall behind before it misses some
const eventBuffer = 32

// Handlers contains all HTTP request handlers
type Handlers struct {
	session        *editor.Session
	formats        render.Formats
	maxUploadBytes int64
	logger         *zap.Logger
	done           <-chan struct{}
}

// NewHandlers creates a new Handlers instance
func NewHandlers(session *editor.Session, formats render.Formats, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = snapshot.MaxSize
	}
	return &Handlers{
		session:        session,
		formats:        formats,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TotalsResponse carries the derived figures, raw and formatted
type TotalsResponse struct {
	Totals      totals.Totals    `json:"totals"`
	Formatted   totals.Formatted `json:"formatted"`
	LineAmounts []string         `json:"lineAmounts"`
}

// StateResponse is the current record with its totals
type StateResponse struct {
	Invoice entity.Invoice `json:"invoice"`
	TotalsResponse
}

// EditResponse reports whether an edit applied, with the resulting state
type EditResponse struct {
	Applied bool `json:"applied"`
	StateResponse
}

// AddLineResponse reports the index of the new line
type AddLineResponse struct {
	Index int `json:"index"`
	StateResponse
}

// ChangeMessage is one entry of the event stream
type ChangeMessage struct {
	Event *event.Event `json:"event"`
	StateResponse
}

// SetFieldRequest edits a single record field
type SetFieldRequest struct {
	Field string      `json:"field" binding:"required"`
	Value interface{} `json:"value"`
}

// UpdateLineRequest edits one field of a product line
type UpdateLineRequest struct {
	Field string `json:"field" binding:"required,oneof=description quantity rate"`
	Value string `json:"value"`
}

// ResetRequest carries the answer to the reset confirmation
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

func newState(inv entity.Invoice, t totals.Totals) StateResponse {
	return StateResponse{
		Invoice: inv,
		TotalsResponse: TotalsResponse{
			Totals:      t,
			Formatted:   t.Format(),
			LineAmounts: totals.FormatLineAmounts(inv.ProductLines),
		},
	}
}

func (h *Handlers) state() StateResponse {
	return newState(h.session.State())
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Success: false,
		Error:   msg,
	})
}

func succeed(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	succeed(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// GetInvoice handles GET /api/invoice
func (h *Handlers) GetInvoice(c *gin.Context) {
	succeed(c, http.StatusOK, h.state())
}

// GetTotals handles GET /api/invoice/totals
func (h *Handlers) GetTotals(c *gin.Context) {
	succeed(c, http.StatusOK, h.state().TotalsResponse)
}

// SetField handles PATCH /api/invoice/fields
func (h *Handlers) SetField(c *gin.Context) {
	var req SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid field request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if !invoice.IsStringField(req.Field) && req.Field != invoice.FieldLogoWidth {
		fail(c, http.StatusBadRequest, "unknown field: "+req.Field)
		return
	}

	applied := h.session.SetField(req.Field, req.Value)
	if !applied {
		h.logger.Debug("Field edit rejected", zap.String("field", req.Field))
	}

	succeed(c, http.StatusOK, EditResponse{
		Applied:       applied,
		StateResponse: h.state(),
	})
}

// AddLine handles POST /api/invoice/lines
func (h *Handlers) AddLine(c *gin.Context) {
	index := h.session.AddLine()
	succeed(c, http.StatusCreated, AddLineResponse{
		Index:         index,
		StateResponse: h.state(),
	})
}

// UpdateLine handles PUT /api/invoice/lines/:index
func (h *Handlers) UpdateLine(c *gin.Context) {
	index, valid := lineIndex(c)
	if !valid {
		return
	}

	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid line request", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.session.UpdateLine(index, req.Field, req.Value) {
		fail(c, http.StatusNotFound, "product line not found")
		return
	}

	succeed(c, http.StatusOK, EditResponse{
		Applied:       true,
		StateResponse: h.state(),
	})
}

// RemoveLine handles DELETE /api/invoice/lines/:index
func (h *Handlers) RemoveLine(c *gin.Context) {
	index, valid := lineIndex(c)
	if !valid {
		return
	}

	if !h.session.RemoveLine(index) {
		fail(c, http.StatusNotFound, "product line not found")
		return
	}

	succeed(c, http.StatusOK, EditResponse{
		Applied:       true,
		StateResponse: h.state(),
	})
}

func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid line index")
		return 0, false
	}
	return index, true
}

// ExportSnapshot handles GET /api/invoice/snapshot
func (h *Handlers) ExportSnapshot(c *gin.Context) {
	data, filename, err := h.session.Export()
	if err != nil {
		h.logger.Error("Failed to export snapshot", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to export snapshot")
		return
	}

	attach(c, "attachment", filename)
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ImportSnapshot handles POST /api/invoice/snapshot.
// It takes a multipart "file" part holding a .json snapshot, or a raw JSON body.
func (h *Handlers) ImportSnapshot(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			h.uploadFailed(c, err)
			return
		}
		if !strings.EqualFold(filepath.Ext(fh.Filename), snapshot.Extension) {
			fail(c, http.StatusBadRequest, "snapshot must be a .json file")
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.uploadFailed(c, err)
			return
		}
		defer f.Close()
		body = f
	}

	if _, err := h.session.Import(c.Request.Context(), body); err != nil {
		h.uploadFailed(c, err)
		return
	}

	succeed(c, http.StatusOK, h.state())
}

func (h *Handlers) uploadFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, snapshot.ErrTooLarge):
		fail(c, http.StatusRequestEntityTooLarge, "snapshot too large")
	case errors.Is(err, http.ErrMissingFile):
		fail(c, http.StatusBadRequest, "missing snapshot file")
	default:
		fail(c, http.StatusBadRequest, err.Error())
	}
}

// Reset handles POST /api/invoice/reset
func (h *Handlers) Reset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	done := h.session.Reset(func(string) bool { return req.Confirm })
	succeed(c, http.StatusOK, gin.H{
		"reset": done,
		"state": h.state(),
	})
}

// Document returns a handler rendering the current record in format
func (h *Handlers) Document(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := h.formats.Get(format)
		if err != nil {
			fail(c, http.StatusNotFound, err.Error())
			return
		}

		inv := h.session.Invoice()
		var buf bytes.Buffer
		if err := r.Render(&buf, inv); err != nil {
			h.logger.Error("Failed to render document", zap.String("format", format), zap.Error(err))
			fail(c, http.StatusInternalServerError, "failed to render document")
			return
		}

		disposition := "attachment"
		if strings.HasPrefix(r.ContentType(), "image/") {
			disposition = "inline"
		}
		attach(c, disposition, render.FileName(inv.Title, r))
		c.Data(http.StatusOK, r.ContentType(), buf.Bytes())
	}
}

func attach(c *gin.Context, disposition, filename string) {
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
}

// Events handles GET /api/invoice/events as a server-sent event stream.
// The current state is sent first, then one "change" event per committed edit.
func (h *Handlers) Events(c *gin.Context) {
	changes := make(chan ChangeMessage, eventBuffer)
	// The first "state" event and the "change" events that follow never overlap.
	current, derived, unsubscribe := h.session.Watch(editor.ObserverFunc(func(ev *event.Event, inv entity.Invoice, t totals.Totals) {
		select {
		case changes <- ChangeMessage{Event: ev, StateResponse: newState(inv, t)}:
		default:
			h.logger.Warn("Event stream behind, dropping change", zap.String("event_id", ev.ID))
		}
	}))
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("state", newState(current, derived))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-changes:
			c.SSEvent("change", msg)
			return true
		case <-ctx.Done():
			return false
		case <-h.done:
			return false
		}
	})
}
