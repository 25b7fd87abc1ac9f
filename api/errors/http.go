package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mailerrors "github.com/customeros/mailagent/internal/errors"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// HTTPStatus maps an error kind to the status code returned to API clients.
func HTTPStatus(err error) int {
	if _, ok := err.(*MultiErrors); ok {
		return http.StatusBadRequest
	}
	switch mailerrors.KindOf(err) {
	case mailerrors.ErrValidation:
		return http.StatusBadRequest
	case mailerrors.ErrLookup:
		return http.StatusUnprocessableEntity
	case mailerrors.ErrParse, mailerrors.ErrTransport:
		return http.StatusBadGateway
	case mailerrors.ErrConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError writes err as {error, details} with the mapped status code.
func RespondWithError(c *gin.Context, err error) {
	response := ErrorResponse{Error: "internal error", Details: err.Error()}

	if multi, ok := err.(*MultiErrors); ok {
		response = ErrorResponse{Error: "invalid request", Details: multi.Messages()}
	} else if kind := mailerrors.KindOf(err); kind != nil {
		response.Error = kind.Error()
	}

	c.JSON(HTTPStatus(err), response)
}
