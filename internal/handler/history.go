package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"citypulse/internal/repository"
	"citypulse/internal/service"
	"citypulse/internal/stream"
)

type HistoryHandler struct {
	History *service.HistoryService
	Hub     *stream.Hub
	Logger  *zap.Logger
}

func (h *HistoryHandler) Register(r *gin.Engine) {
	g := r.Group("/api/businesses/:businessID/history")
	g.GET("", h.list)
	g.GET("/stream", h.streamHistory)
}

// @Summary List publish history, newest first
// @Tags history
// @Param businessID path string true "business id"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Param platform query string false "filter by platform"
// @Param content_type query string false "filter by content type"
// @Param status query string false "filter by status"
// @Success 200 {object} apiResponse
// @Router /api/businesses/{businessID}/history [get]
func (h *HistoryHandler) list(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	if businessID == "" {
		Error(c, http.StatusBadRequest, "invalid business id", nil)
		return
	}
	params := repository.ListPublishHistoryParams{
		BusinessID:  businessID,
		Limit:       intQuery(c, "limit", 0),
		Offset:      intQuery(c, "offset", 0),
		Platform:    strQueryPtr(c, "platform"),
		ContentType: strQueryPtr(c, "content_type"),
		Status:      strQueryPtr(c, "status"),
	}
	items, total, err := h.History.List(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	limit := params.Limit
	if limit <= 0 {
		limit = h.History.DefaultPageSize
	}
	Ok(c, items, paginationMeta(limit, params.Offset, total))
}

// streamHistory pushes terminal publish transitions for one business over a
// websocket until the client goes away.
func (h *HistoryHandler) streamHistory(c *gin.Context) {
	businessID := strings.TrimSpace(c.Param("businessID"))
	if businessID == "" || h.Hub == nil {
		Error(c, http.StatusBadRequest, "stream unavailable", nil)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket accept failed", zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	updates, cancel := h.Hub.Subscribe(businessID)
	defer cancel()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-updates:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, item); err != nil {
				return
			}
		}
	}
}
