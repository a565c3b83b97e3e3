package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/http/response"
	"github.com/graduation-masterpiece/demo-repository/internal/modules/engagement"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type LikeHandler struct {
	log     *logger.Logger
	limiter *engagement.Limiter
}

func NewLikeHandler(log *logger.Logger, limiter *engagement.Limiter) *LikeHandler {
	return &LikeHandler{log: log.With("handler", "LikeHandler"), limiter: limiter}
}

// PATCH /api/book/:id/like
// The client is identified by its network address.
func (h *LikeHandler) Like(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	likes, err := h.limiter.TryIncrement(c.Request.Context(), id, c.ClientIP())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"likes": likes})
}
