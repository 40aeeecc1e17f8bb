package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/installdesk-backend/internal/http/response"
	"github.com/yungbote/installdesk-backend/internal/services"
)

type TicketHandler struct {
	proxy services.TicketProxyService
}

func NewTicketHandler(proxy services.TicketProxyService) *TicketHandler {
	return &TicketHandler{proxy: proxy}
}

// POST /ticket
func (h *TicketHandler) Create(c *gin.Context) {
	var in services.TicketCreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	out, err := h.proxy.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// PATCH /ticket/:id
func (h *TicketHandler) Update(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	out, err := h.proxy.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /ticket/:id
func (h *TicketHandler) Get(c *gin.Context) {
	out, err := h.proxy.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *TicketHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.RespondAPIError(c, toAPIError(err))
}
