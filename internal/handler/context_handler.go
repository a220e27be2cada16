package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/service"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

// ContextHandler serves the aggregated study context.
type ContextHandler struct {
	service *service.ContextService
}

// NewContextHandler constructs a context handler.
func NewContextHandler(svc *service.ContextService) *ContextHandler {
	return &ContextHandler{service: svc}
}

// Get godoc
// @Summary Get the aggregated study context
// @Tags Context
// @Produce json
// @Produce text/plain
// @Param format query string false "Response format (json or text)"
// @Success 200 {object} response.Envelope
// @Router /insights/context [get]
func (h *ContextHandler) Get(c *gin.Context) {
	studentID, ok := studentIDFromContext(c)
	if !ok {
		return
	}
	studyContext, err := h.service.BuildContext(c.Request.Context(), studentID)
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, h.service.FlattenContext(studyContext))
		return
	}
	response.JSON(c, http.StatusOK, studyContext, nil)
}
