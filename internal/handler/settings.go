package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"citypulse/internal/service"
)

type SettingsHandler struct {
	Settings *service.SettingsService
	Tester   *service.TesterService
	Logger   *zap.Logger
}

func (h *SettingsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/businesses/:businessID/settings")
	g.GET("", h.list)
	g.PUT("", h.save)
	g.DELETE("", h.removeAll)
	g.DELETE("/:platform", h.remove)
	g.POST("/:platform/test", h.test)
}

// @Summary List auto-publish destinations
// @Tags settings
// @Param businessID path string true "business id"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/settings [get]
func (h *SettingsHandler) list(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	items, err := h.Settings.List(c.Request.Context(), businessID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

type saveSettingRequest struct {
	Platform            string            `json:"platform"`
	Credentials         map[string]string `json:"credentials"`
	PublishEvents       *bool             `json:"publish_events"`
	PublishPromotions   *bool             `json:"publish_promotions"`
	AutoPublishOnCreate *bool             `json:"auto_publish_on_create"`
	IsEnabled           *bool             `json:"is_enabled"`
	Validate            bool              `json:"validate"`
}

// @Summary Save or merge a destination's settings
// @Tags settings
// @Param businessID path string true "business id"
// @Param body body saveSettingRequest true "partial update"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/settings [put]
func (h *SettingsHandler) save(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	var req saveSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	summary, err := h.Settings.Save(c.Request.Context(), businessID, service.SaveInput{
		Platform:            strings.TrimSpace(strings.ToLower(req.Platform)),
		Credentials:         req.Credentials,
		PublishEvents:       req.PublishEvents,
		PublishPromotions:   req.PublishPromotions,
		AutoPublishOnCreate: req.AutoPublishOnCreate,
		IsEnabled:           req.IsEnabled,
		Validate:            req.Validate,
	})
	if err != nil {
		h.settingsError(c, err)
		return
	}
	Ok(c, summary, nil)
}

// @Summary Delete every destination of a business
// @Tags settings
// @Param businessID path string true "business id"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/settings [delete]
func (h *SettingsHandler) removeAll(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	if err := h.Settings.PurgeBusiness(c.Request.Context(), businessID); err != nil {
		h.settingsError(c, err)
		return
	}
	Ok(c, gin.H{"deleted": "all"}, nil)
}

// @Summary Delete a destination
// @Tags settings
// @Param businessID path string true "business id"
// @Param platform path string true "platform"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/settings/{platform} [delete]
func (h *SettingsHandler) remove(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	platformName := strings.TrimSpace(strings.ToLower(c.Param("platform")))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	if err := h.Settings.Delete(c.Request.Context(), businessID, platformName); err != nil {
		h.settingsError(c, err)
		return
	}
	Ok(c, gin.H{"deleted": platformName}, nil)
}

// @Summary Probe a destination's stored credentials
// @Tags settings
// @Param businessID path string true "business id"
// @Param platform path string true "platform"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/settings/{platform}/test [post]
func (h *SettingsHandler) test(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	platformName := strings.TrimSpace(strings.ToLower(c.Param("platform")))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	result, err := h.Tester.Test(c.Request.Context(), businessID, platformName)
	if err != nil {
		h.settingsError(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *SettingsHandler) settingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrUnknownPlatform):
		Error(c, http.StatusBadRequest, err.Error(), nil)
	case service.IsValidation(err):
		Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.Warn("settings request failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
