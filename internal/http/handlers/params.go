package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

func bookIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return uuid.Nil, apierr.Validation("invalid book id", map[string]string{"id": "must be a valid UUID"})
	}
	return id, nil
}

func malformedBody(err error) error {
	return &apierr.Error{Code: apierr.CodeValidation, Message: "malformed request body", Err: err}
}
