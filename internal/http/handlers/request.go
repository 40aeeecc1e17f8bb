package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/installdesk-backend/internal/http/response"
	"github.com/yungbote/installdesk-backend/internal/services"
)

type RequestHandler struct {
	ingestion services.IngestionService
	workflow  services.InstallWorkflowService
}

func NewRequestHandler(ingestion services.IngestionService, workflow services.InstallWorkflowService) *RequestHandler {
	return &RequestHandler{ingestion: ingestion, workflow: workflow}
}

type ticketRef struct {
	TicketID     string `json:"ticketId"`
	TicketNumber string `json:"ticketNumber"`
}

// POST /api/request
func (h *RequestHandler) Create(c *gin.Context) {
	var in services.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	req, err := h.ingestion.Submit(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondCreated(c, gin.H{
		"message":   "Request created",
		"requestId": req.ID,
		"ticket":    ticketRef{TicketID: req.TicketID, TicketNumber: req.TicketNumber},
	})
}

// GET /api/requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_id", errors.New("request id must be a positive integer"))
		return
	}
	view, err := h.workflow.Status(c.Request.Context(), uint(id))
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, view)
}
