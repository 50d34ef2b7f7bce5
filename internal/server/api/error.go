package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nriit/facultypubs/internal/objects"
	"github.com/nriit/facultypubs/internal/server/biz"
)

// JSONError returns a JSON error response and adds the error to gin context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

var kindStatus = map[biz.Kind]int{
	biz.KindValidation:       http.StatusBadRequest,
	biz.KindDuplicateTitle:   http.StatusConflict,
	biz.KindNotFound:         http.StatusNotFound,
	biz.KindForbidden:        http.StatusForbidden,
	biz.KindStoreUnavailable: http.StatusServiceUnavailable,
	biz.KindUnauthenticated:  http.StatusUnauthorized,
	biz.KindCanceled:         http.StatusRequestTimeout,
}

// BizError writes a service error. The error type is its kind so clients can match on it.
func BizError(c *gin.Context, err error) {
	kind := biz.KindOf(err)

	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if kind == biz.KindStoreUnavailable {
		// Driver errors stay in the access log.
		message = biz.ErrStoreUnavailable.Error()
	}

	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    string(kind),
			Message: message,
		},
	})
}
