package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/http/response"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/search"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type SearchHandler struct {
	log          *logger.Logger
	autocomplete *search.Autocomplete
}

func NewSearchHandler(log *logger.Logger, ac *search.Autocomplete) *SearchHandler {
	return &SearchHandler{log: log.With("handler", "SearchHandler"), autocomplete: ac}
}

type recordSearchRequest struct {
	Query string `json:"query"`
}

// POST /api/search-history
func (h *SearchHandler) Record(c *gin.Context) {
	var req recordSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, malformedBody(err))
		return
	}
	if err := h.autocomplete.Record(c.Request.Context(), req.Query); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/autocomplete?prefix=
func (h *SearchHandler) Suggest(c *gin.Context) {
	suggestions, err := h.autocomplete.Suggest(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestions": suggestions})
}
