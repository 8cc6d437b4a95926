package utils

import "github.com/gin-gonic/gin"

// JSONResponse defines the uniform structure for API error responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON envelope with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success envelope.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// ErrorKind returns an error envelope carrying a stable machine readable kind.
func ErrorKind(ctx *gin.Context, status int, code int, kind, message string) {
	ctx.JSON(status, JSONResponse{Code: code, Kind: kind, Message: message})
}

// ValidationError returns a 400 envelope listing the rejected fields.
func ValidationError(ctx *gin.Context, code int, violations interface{}) {
	ctx.JSON(400, JSONResponse{
		Code:    code,
		Kind:    "INVALID_REQUEST",
		Message: "invalid request payload",
		Errors:  violations,
	})
}
