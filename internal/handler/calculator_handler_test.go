package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/preptly/cbt-gateway/internal/validator"
)

func calcRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()

	r := gin.New()
	r.POST("/api/v1/tools/calculate", NewCalculatorHandler().Calculate)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCalculateEndpoint(t *testing.T) {
	r := calcRouter()

	w := postJSON(t, r, "/api/v1/tools/calculate", `{"expression":"2+3*4"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Result float64 `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Result != 14 {
		t.Fatalf("result = %v, want 14", resp.Data.Result)
	}
}

func TestCalculateEndpointRejectsBadExpression(t *testing.T) {
	r := calcRouter()

	w := postJSON(t, r, "/api/v1/tools/calculate", `{"expression":"2/0"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_EXPRESSION") {
		t.Fatalf("body missing error code: %s", w.Body.String())
	}
}

func TestCalculateEndpointValidation(t *testing.T) {
	r := calcRouter()

	// Missing expression fails binding, not evaluation.
	w := postJSON(t, r, "/api/v1/tools/calculate", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "VALIDATION_ERROR") {
		t.Fatalf("body missing validation code: %s", w.Body.String())
	}
}
