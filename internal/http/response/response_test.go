package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorUsesBusinessCodeAsHTTPStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")

	Error(c, CodeConflict, "conflict")

	if w.Code != http.StatusConflict {
		t.Fatalf("expected http 409, got %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body.StatusCode != CodeConflict || body.Msg != "conflict" {
		t.Fatalf("unexpected body: %+v", body)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok || data["request_id"] != "req-1" {
		t.Fatalf("expected request id in data, got %+v", body.Data)
	}
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(2, 20, 41)
	if p.TotalPage != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPage)
	}
}

func TestSuccessOmitsPaginationUnlessPaged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Success(c, gin.H{"saldo": "9.90"})
	var plain map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &plain); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if _, ok := plain["pagination"]; ok {
		t.Fatalf("plain success should not carry pagination: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	SuccessWithPage(c, []string{}, BuildPagination(1, 20, 0))
	var paged Response
	if err := json.Unmarshal(w.Body.Bytes(), &paged); err != nil {
		t.Fatalf("decode paged body failed: %v", err)
	}
	if paged.Pagination == nil || paged.Pagination.PageSize != 20 {
		t.Fatalf("expected pagination, got %s", w.Body.String())
	}
}
