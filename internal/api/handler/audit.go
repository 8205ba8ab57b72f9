package handler

import (
	"net/http"

	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuditHandler handles listing audit job endpoints.
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler.
// Parameters:
//   - auditService: audit pipeline service instance.
// Returns:
//   - *AuditHandler: initialized handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// CreateAuditRequest represents the job creation request.
type CreateAuditRequest struct {
	ListingURL           string `json:"listing_url" binding:"required,url"`
	MaxImages            int    `json:"max_images"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
}

// AnalyzeRequest represents the synchronous single-photo analysis request.
type AnalyzeRequest struct {
	ImageURL             string `json:"image_url" binding:"required,url"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
}

// CreateAudit handles POST /api/v1/audits. The pipeline starts in the
// background; the client gets the job ID immediately and polls GetAudit.
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.CtxWarn(ctx, "Invalid audit request: client_ip=%s, error=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID := h.auditService.CreateJob(req.ListingURL, req.MaxImages, req.WheelchairAccessible)

	logger.CtxInfo(ctx, "Audit job created: job_id=%s, listing_url=%s, max_images=%d, wheelchair=%v",
		jobID, req.ListingURL, req.MaxImages, req.WheelchairAccessible)

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// GetAudit handles GET /api/v1/audits/:id. Unknown job IDs answer a plain
// 404; that is a normal polling outcome, not a server problem.
func (h *AuditHandler) GetAudit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job ID is required"})
		return
	}

	job, ok := h.auditService.GetJob(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// Analyze handles POST /api/v1/analyze: a synchronous audit of a single
// photo with a best-effort renovation render.
func (h *AuditHandler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auditService.AnalyzeOne(ctx, req.ImageURL, req.WheelchairAccessible)
	if err != nil {
		logger.CtxError(ctx, "Analysis failed: url=%s, error=%v", req.ImageURL, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
			"audit": nil,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
