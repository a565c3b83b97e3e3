package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/http/response"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/feedback"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type FeedbackHandler struct {
	log      *logger.Logger
	feedback feedback.Usecases
}

func NewFeedbackHandler(log *logger.Logger, fb feedback.Usecases) *FeedbackHandler {
	return &FeedbackHandler{log: log.With("handler", "FeedbackHandler"), feedback: fb}
}

// POST /api/error-report
func (h *FeedbackHandler) ReportIssue(c *gin.Context) {
	var in feedback.ReportIssueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, malformedBody(err))
		return
	}
	res, err := h.feedback.ReportIssue(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/log-utm
// An empty body is a direct visit.
func (h *FeedbackHandler) LogVisit(c *gin.Context) {
	var in feedback.LogVisitInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			response.RespondAPIError(c, malformedBody(err))
			return
		}
	}
	if err := h.feedback.LogVisit(c.Request.Context(), in, c.ClientIP()); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
