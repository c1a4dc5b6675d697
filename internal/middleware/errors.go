package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	dErrors "github.com/krbank/backoffice/internal/domainerrors"
)

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeDependency:
		return http.StatusConflict
	case dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithDomainError writes err using its domain code. Errors without a
// code are reported as a 500 with fallback as the message and recorded on the
// gin context for the access log.
func RespondWithDomainError(c *gin.Context, err error, fallback string) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)
	if code == dErrors.CodeInternal {
		_ = c.Error(err)
		RespondWithError(c, status, fallback)
		return
	}
	c.JSON(status, gin.H{
		"message": dErrors.MessageOf(err),
		"code":    string(code),
	})
}
