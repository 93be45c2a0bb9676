package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/price-oracle/internal/common"
)

// Response is the envelope every API endpoint answers with. Code carries the
// machine-readable error class on failures.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Fail(c *gin.Context, httpErr *common.HttpError) {
	c.JSON(httpErr.StatusCode, FailureBody(httpErr))
}

// Abort writes httpErr and stops the handler chain.
func Abort(c *gin.Context, httpErr *common.HttpError) {
	c.AbortWithStatusJSON(httpErr.StatusCode, FailureBody(httpErr))
}

func FailureBody(httpErr *common.HttpError) Response {
	return Response{
		Success: false,
		Code:    httpErr.Code,
		Error:   httpErr.Message,
	}
}

func BadRequest(c *gin.Context, msg string) {
	Fail(c, common.HTTPErrorBadRequest(msg))
}

func NotFound(c *gin.Context, msg string) {
	Fail(c, common.HTTPErrorNotFound(msg))
}

func HandleError(c *gin.Context, err error) {
	Fail(c, ToHttpError(err))
}
