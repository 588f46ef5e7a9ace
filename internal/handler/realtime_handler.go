package handler

import (
	"github.com/gin-gonic/gin"

	"taskboard/internal/realtime"
)

type RealtimeHandler struct {
	gateway *realtime.Gateway
}

func NewRealtimeHandler(gateway *realtime.Gateway) *RealtimeHandler {
	return &RealtimeHandler{gateway: gateway}
}

// Subscribe godoc
// @Summary  Live board updates over a websocket
// @Tags     realtime
// @Param    id    path  string true "board id"
// @Param    token query string true "access token"
// @Router   /ws/boards/{id} [get]
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	h.gateway.Serve(c.Writer, c.Request, c.Param("id"))
}
