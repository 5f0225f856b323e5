package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatsync-service/pkg/errors"
)

var statusByCode = map[errors.Code]int{
	errors.CodeInvalidArgument:  http.StatusBadRequest,
	errors.CodeUnauthenticated:  http.StatusUnauthorized,
	errors.CodePermissionDenied: http.StatusForbidden,
	errors.CodeNotFound:         http.StatusNotFound,
	errors.CodeAlreadyExists:    http.StatusConflict,
	errors.CodeInternal:         http.StatusInternalServerError,
}

// respondError maps a coded error to an HTTP response. Internal errors keep
// their detail out of the response body.
func respondError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
