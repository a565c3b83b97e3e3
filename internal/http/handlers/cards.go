package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/graduation-masterpiece/demo-repository/internal/http/response"
	cardsmod "github.com/graduation-masterpiece/demo-repository/internal/modules/cards"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

type CardHandler struct {
	log   *logger.Logger
	cards cardsmod.Usecases
}

func NewCardHandler(log *logger.Logger, cards cardsmod.Usecases) *CardHandler {
	return &CardHandler{log: log.With("handler", "CardHandler"), cards: cards}
}

type createCardResponse struct {
	AlreadyExists bool      `json:"alreadyExists"`
	ID            uuid.UUID `json:"id,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Summary       []string  `json:"summary,omitempty"`
}

func toCreateResponse(res cardsmod.CreateCardResult) createCardResponse {
	if res.AlreadyExists {
		return createCardResponse{AlreadyExists: true, ID: res.BookID}
	}
	return createCardResponse{ID: res.BookID, ImageURL: res.ImageURL, Summary: res.Summary}
}

// POST /api/book
func (h *CardHandler) Create(c *gin.Context) {
	var in cardsmod.CreateCardInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondAPIError(c, malformedBody(err))
		return
	}
	res, err := h.cards.CreateCard(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, toCreateResponse(res))
}

// POST /api/book/:id/regenerate
func (h *CardHandler) Regenerate(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.cards.Regenerate(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, toCreateResponse(res))
}

// GET /api/book-cards?page=&pageSize=&sort=
func (h *CardHandler) List(c *gin.Context) {
	var in cardsmod.ListCardsInput
	if err := c.ShouldBindQuery(&in); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid query", map[string]string{"query": "page and pageSize must be integers"}))
		return
	}
	res, err := h.cards.ListCards(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/book/:id
func (h *CardHandler) Get(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view, err := h.cards.GetCard(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/my-library
func (h *CardHandler) Library(c *gin.Context) {
	items, err := h.cards.ListLibrary(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, items)
}

// DELETE /api/book/:id
func (h *CardHandler) Delete(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.cards.DeleteBook(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.log.Info("book deleted by admin", "book_id", id, "admin", c.GetString("admin_subject"))
	c.Status(http.StatusNoContent)
}

// PATCH /api/book/:id/likes/reset
func (h *CardHandler) ResetLikes(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.cards.ResetLikes(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"likes": 0})
}
