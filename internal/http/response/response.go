package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 与路由中间件写入的键一致
const requestIDKey = "request_id"

// Response 接口统一信封，分页接口额外携带 pagination
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// BuildPagination pageSize 为 0 时总页数为 0
func BuildPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

func write(c *gin.Context, httpStatus int, body Response) {
	c.JSON(httpStatus, body)
}

func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data})
}

func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, http.StatusOK, Response{StatusCode: CodeOK, Msg: msg, Data: data})
}

// Created 新建资源，HTTP 201
func Created(c *gin.Context, msg string, data interface{}) {
	write(c, http.StatusCreated, Response{StatusCode: CodeOK, Msg: msg, Data: data})
}

func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data, Pagination: &pagination})
}

// Error 错误响应，HTTP 状态与业务码一致，data 中带 request_id 便于排查
func Error(c *gin.Context, code int, msg string) {
	var data interface{}
	if id := c.GetString(requestIDKey); id != "" {
		data = gin.H{requestIDKey: id}
	}
	write(c, HTTPStatus(code), Response{StatusCode: code, Msg: msg, Data: data})
}

func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}
