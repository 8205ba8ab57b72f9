package handler

import (
	"errors"
	"net/http"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// RenovationHandler handles on-demand renovation generation, called when a
// user clicks a specific audited photo.
type RenovationHandler struct {
	renovationService *service.RenovationService
}

// NewRenovationHandler creates a new renovation handler.
func NewRenovationHandler(renovationService *service.RenovationService) *RenovationHandler {
	return &RenovationHandler{
		renovationService: renovationService,
	}
}

// GenerateRenovationRequest represents the on-demand generation request.
// The audit block is the outcome previously returned by a listing audit.
type GenerateRenovationRequest struct {
	ImageURL             string               `json:"image_url" binding:"required,url"`
	Audit                *domain.AuditOutcome `json:"audit" binding:"required"`
	WheelchairAccessible bool                 `json:"wheelchair_accessible"`
}

// GenerateRenovationResponse represents the on-demand generation response.
type GenerateRenovationResponse struct {
	Success        bool   `json:"success"`
	RenovatedImage string `json:"renovated_image,omitempty"`
	OriginalURL    string `json:"original_url,omitempty"`
	Cached         bool   `json:"cached"`
	Error          string `json:"error,omitempty"`
}

// GenerateRenovation handles POST /api/v1/renovations.
func (h *RenovationHandler) GenerateRenovation(c *gin.Context) {
	ctx := c.Request.Context()

	var req GenerateRenovationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.renovationService.Generate(ctx, req.ImageURL, req.Audit, req.WheelchairAccessible)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, service.ErrNoRenovationPrompts) {
			status = http.StatusBadRequest
		}
		logger.CtxWarn(ctx, "Renovation request failed: url=%s, error=%v", req.ImageURL, err)
		c.JSON(status, GenerateRenovationResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, GenerateRenovationResponse{
		Success:        true,
		RenovatedImage: result.Artifact.Image,
		OriginalURL:    result.Artifact.OriginalURL,
		Cached:         result.Cached,
	})
}
