package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/planner"
	"github.com/apollostores/poplanner/internal/repository/spreadsheet"
	"github.com/apollostores/poplanner/internal/service/notify"
	"github.com/apollostores/poplanner/internal/service/planning"
	"github.com/apollostores/poplanner/pkg/clients/fetch"
)

// PlanHandler exposes the planning pipeline over HTTP: source uploads, plan
// views and exports, recipient configuration and manual dispatch.
type PlanHandler struct {
	planning *planning.Service
	store    *spreadsheet.Store
	notify   *notify.Service // nil when SMTP is not configured
	fetcher  fetch.Client
	logger   *zap.Logger
}

// NewPlanHandler constructs the HTTP handler adapter. notifySvc may be nil.
func NewPlanHandler(planningSvc *planning.Service, store *spreadsheet.Store, notifySvc *notify.Service, fetcher fetch.Client, logger *zap.Logger) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{
		planning: planningSvc,
		store:    store,
		notify:   notifySvc,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// UploadSource ingests a multipart spreadsheet upload, validating its header
// row before it replaces the stored source.
func (h *PlanHandler) UploadSource(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.Error("failed opening upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read upload"})
		return
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		h.logger.Error("failed buffering upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read upload"})
		return
	}

	h.ingestSource(c, file.Filename, buf.Bytes())
}

// importRequest is the body of the import-by-URL endpoint.
type importRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportSourceURL downloads a remote spreadsheet and stores it as the source.
func (h *PlanHandler) ImportSourceURL(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a url"})
		return
	}

	name, body, err := h.fetcher.Download(c.Request.Context(), req.URL)
	if err != nil {
		h.logger.Warn("source download failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.ingestSource(c, name, body)
}

// ingestSource validates the table (fatal column errors reject the upload)
// and persists it as the new source.
func (h *PlanHandler) ingestSource(c *gin.Context, filename string, data []byte) {
	headers, rows, err := spreadsheet.ParseTable(filename, bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unreadable spreadsheet: %v", err)})
		return
	}
	if _, err := planner.ResolveColumns(headers); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	path, err := h.store.SaveSource(filename, bytes.NewReader(data))
	if err != nil {
		h.logger.Error("failed storing source", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to store source"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stored": path, "rows": len(rows)})
}

// GetPlan computes and returns the full plan as JSON.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plans, err := h.planning.Plan(c.Request.Context())
	if err != nil {
		h.respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": len(plans), "plans": plans})
}

// ExportPlan computes the plan and streams it as an xlsx workbook.
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	plans, err := h.planning.Plan(c.Request.Context())
	if err != nil {
		h.respondPlanError(c, err)
		return
	}

	data, err := spreadsheet.ExportPlans(plans)
	if err != nil {
		h.logger.Error("failed exporting plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to export plan"})
		return
	}

	filename := fmt.Sprintf("po_plan_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetDeficits returns DEFICIT rows grouped by vendor.
func (h *PlanHandler) GetDeficits(c *gin.Context) {
	plans, err := h.planning.Plan(c.Request.Context())
	if err != nil {
		h.respondPlanError(c, err)
		return
	}

	groups, vendors := planning.DeficitsByVendor(plans)
	c.JSON(http.StatusOK, gin.H{"vendors": vendors, "deficits": groups})
}

// recipientRequest is the body of the recipient configuration endpoint.
type recipientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SetRecipient stores the notification recipient address.
func (h *PlanHandler) SetRecipient(c *gin.Context) {
	var req recipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a valid email"})
		return
	}

	if err := h.store.SaveRecipient(req.Email); err != nil {
		h.logger.Error("failed storing recipient", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to store recipient"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": req.Email})
}

// GetRecipient reads the configured recipient address.
func (h *PlanHandler) GetRecipient(c *gin.Context) {
	email, err := h.store.Recipient()
	if err != nil {
		if errors.Is(err, spreadsheet.ErrNoRecipient) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no recipient configured"})
			return
		}
		h.logger.Error("failed reading recipient", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to read recipient"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": email})
}

// TriggerDispatch runs the vendor-deficit mail job immediately.
func (h *PlanHandler) TriggerDispatch(c *gin.Context) {
	if h.notify == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mail dispatch is not configured"})
		return
	}

	record, err := h.notify.Dispatch(c.Request.Context())
	if err != nil {
		h.logger.Error("manual dispatch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *PlanHandler) respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, planning.ErrNoSource):
		c.JSON(http.StatusNotFound, gin.H{"error": "no source uploaded"})
	case errors.Is(err, planner.ErrColumnUnresolved):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("plan computation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to compute plan"})
	}
}
