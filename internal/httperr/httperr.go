package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func StatusOf(kind Kind) int {
	switch kind {
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindReconciliation:
		return http.StatusBadGateway
	case KindPaymentUnavailable:
		return http.StatusServiceUnavailable
	case KindPaymentDeclined, KindPaymentCancelled:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err using its business kind. Persistence failures keep
// their code but hide the datastore detail.
func FromError(c *gin.Context, err error) {
	be, ok := As(err)
	if !ok {
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	message := be.Error()
	if be.Kind == KindPersistence {
		message = "The change could not be saved."
	}

	Write(c, StatusOf(be.Kind), be.Code, message)
}
