package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc, headers map[string]string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.POST("/", h)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	ok := func(c *gin.Context) { Success(c, http.StatusOK, nil) }

	w := serve(ok, map[string]string{"X-Request-ID": "abc-123"})
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Metadata.RequestID != "abc-123" {
		t.Errorf("metadata request id = %q", body.Metadata.RequestID)
	}

	w = serve(ok, map[string]string{"X-Request-ID": strings.Repeat("x", 65)})
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("oversized id not replaced, got %q", got)
	}
}

func TestSuccessOrRedirect(t *testing.T) {
	h := func(c *gin.Context) { SuccessOrRedirect(c, http.StatusCreated, gin.H{"id": 1}, "/dashboard") }

	w := serve(h, map[string]string{"Accept": "text/html,application/xhtml+xml"})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/dashboard" {
		t.Errorf("browser got %d %q, want 303 /dashboard", w.Code, w.Header().Get("Location"))
	}

	w = serve(h, map[string]string{"Accept": "application/json"})
	if w.Code != http.StatusCreated {
		t.Errorf("api client got %d, want 201", w.Code)
	}
}

func TestFailWithFields(t *testing.T) {
	h := func(c *gin.Context) {
		FailWithFields(c, http.StatusBadRequest, ErrValidation, map[string]string{"year": "year is a required field"})
	}

	w := serve(h, nil)
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != ErrValidation || body.Error.Fields["year"] == "" {
		t.Fatalf("error = %+v", body.Error)
	}
	if body.Error.Message != GetMessage(ErrValidation) {
		t.Errorf("message = %q", body.Error.Message)
	}
}
