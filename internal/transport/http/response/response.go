package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeOK                   = 0
	CodeBadRequest           = 40000
	CodeEmailExists          = 40002
	CodeInactiveUser         = 40003
	CodeInvalidProjectName   = 40004
	CodeInvalidMessage       = 40005
	CodeEmptyFile            = 40006
	CodeUnauthorized         = 40100
	CodeInvalidCredentials   = 40101
	CodeNotFound             = 40400
	CodeProjectNotFound      = 40401
	CodeFileNotFound         = 40402
	CodeFileTooLarge         = 41300
	CodeUnsupportedMediaType = 41500
	CodeTooManyRequests      = 42900
	CodeInternalServer       = 50000
	CodeStorage              = 50001
	CodeServiceUnavailable   = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
	})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// Abort writes an error and stops the handler chain.
func Abort(c *gin.Context, httpStatus, code int, message string) {
	Error(c, httpStatus, code, message)
	c.Abort()
}
