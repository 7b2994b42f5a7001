package response

import "net/http"

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodePayloadTooLarge = 413
	CodeTooManyRequests = 429
	CodeInternal        = 500
)

// HTTPStatus 业务错误码映射为 HTTP 状态码（网关重试依赖真实状态码）
func HTTPStatus(code int) int {
	if code >= 400 && code <= 599 {
		return code
	}
	if code == CodeOK {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
