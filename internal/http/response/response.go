package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
)

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Stage   string            `json:"stage,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondAPIError writes err through the apierr taxonomy. Internal errors
// never echo their cause to the client.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae == nil {
		ae = apierr.Internal("internal error", errors.New("nil error"))
	}
	_ = c.Error(ae)
	body := APIError{
		Message: ae.Message,
		Code:    string(ae.Code),
		Stage:   ae.Stage,
		Details: ae.Details,
	}
	if ae.Code == apierr.CodeInternal || body.Message == "" {
		body.Message = http.StatusText(ae.HTTPStatus())
	}
	c.AbortWithStatusJSON(ae.HTTPStatus(), ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
