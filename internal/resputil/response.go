package resputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raids-lab/tracker/pkg/tracker"
)

// Response is the uniform envelope of every endpoint. The generic parameter
// only exists so swagger can render typed payloads.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data any, code ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

func Success(c *gin.Context, data any) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, http.StatusInternalServerError, msg, nil, errorCode)
}

func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

// DomainError maps the tracker error taxonomy onto HTTP status codes:
// validation failures are 4xx, storage trouble is 5xx, and partial state is
// never visible either way.
func DomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		HTTPError(c, http.StatusNotFound, err.Error(), NotFound)
	case errors.Is(err, tracker.ErrInvalidHierarchy):
		HTTPError(c, http.StatusBadRequest, err.Error(), InvalidRequest)
	case errors.Is(err, tracker.ErrConflict):
		HTTPError(c, http.StatusConflict, err.Error(), Conflict)
	default:
		Error(c, err.Error(), NotSpecified)
	}
}
