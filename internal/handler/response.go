package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps the application error taxonomy onto HTTP statuses.
// Blocked dates and scheduling conflicts are 409-class, never 5xx.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrValidation:
		status = http.StatusBadRequest
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrForbidden:
		status = http.StatusForbidden
	case apperrors.ErrBlockedDate, apperrors.ErrConflict:
		status = http.StatusConflict
	case apperrors.ErrPersistence:
		status = http.StatusInternalServerError
	}

	c.JSON(status, NewErrorResponse(apperrors.MessageOf(err)))
}
