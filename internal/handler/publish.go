package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/models"
	"citypulse/internal/service"
)

type PublishHandler struct {
	Dispatcher *service.DispatcherService
	Logger     *zap.Logger
}

func (h *PublishHandler) Register(r *gin.Engine) {
	r.POST("/api/businesses/:businessID/publish", h.publish)
}

type publishRequest struct {
	ContentType string                `json:"content_type"`
	ContentID   string                `json:"content_id"`
	Content     models.PublishContent `json:"content"`

	// Auto marks the dispatch fired by content creation rather than by an
	// explicit user action; it targets auto-publish destinations only and is
	// deduplicated per content item per destination.
	Auto bool `json:"auto"`
}

// @Summary Publish a content item to all eligible destinations
// @Tags publish
// @Param businessID path string true "business id"
// @Param body body publishRequest true "content payload"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/publish [post]
func (h *PublishHandler) publish(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.ContentType = strings.TrimSpace(strings.ToLower(req.ContentType))
	req.ContentID = strings.TrimSpace(req.ContentID)
	if req.ContentID == "" {
		Error(c, http.StatusBadRequest, "content_id is required", nil)
		return
	}

	items, err := h.Dispatcher.Dispatch(c.Request.Context(), businessID, req.ContentType, req.ContentID, req.Content, req.Auto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownContentType):
			Error(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrPublishingDisabled):
			Error(c, http.StatusServiceUnavailable, err.Error(), nil)
		default:
			if h.Logger != nil {
				h.Logger.Warn("dispatch failed", zap.Error(err))
			}
			Error(c, http.StatusBadGateway, err.Error(), nil)
		}
		return
	}
	Ok(c, items, map[string]any{"attempted": len(items)})
}
