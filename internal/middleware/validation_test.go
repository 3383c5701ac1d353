package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dimitarkovachev/seating/internal/api"
)

const invitePath = "/events/boda/invites/550e8400-e29b-41d4-a716-446655440000"

func setupValidationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	spec, err := api.GetSwagger()
	if err != nil {
		t.Fatalf("failed to load openapi spec: %v", err)
	}

	mw, err := NewOpenAPIValidator(spec)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	r := gin.New()
	r.Use(mw)
	r.PUT("/events/:eventId/invites/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/events/:eventId/invites/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func putJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestValidation_ValidPutRequest(t *testing.T) {
	r := setupValidationRouter(t)

	w := putJSON(r, invitePath, map[string]any{
		"attending":  true,
		"confirmed":  map[string]int{"adults": 2, "kids": 1},
		"companions": map[string][]string{"adults": {"Иван Петров", "Мария"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestValidation_NegativeCount(t *testing.T) {
	r := setupValidationRouter(t)

	w := putJSON(r, invitePath, map[string]any{
		"attending": true,
		"confirmed": map[string]int{"adults": -1},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative count, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["code"] != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %q", body["code"])
	}
	if strings.Contains(body["message"], "Schema:") {
		t.Fatalf("expected schema dump stripped, got %q", body["message"])
	}
}

func TestValidation_UnknownCategory(t *testing.T) {
	r := setupValidationRouter(t)

	w := putJSON(r, invitePath, map[string]any{
		"attending": true,
		"confirmed": map[string]int{"elders": 1},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d: %s", w.Code, w.Body.String())
	}
}

func TestValidation_MissingRequiredAttending(t *testing.T) {
	r := setupValidationRouter(t)

	w := putJSON(r, invitePath, map[string]any{
		"companions": map[string][]string{"adults": {"Иван"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing attending, got %d: %s", w.Code, w.Body.String())
	}
}

func TestValidation_BadEventID(t *testing.T) {
	r := setupValidationRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events/bad%20event/invites/550e8400-e29b-41d4-a716-446655440000", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad event id, got %d: %s", w.Code, w.Body.String())
	}
}

func TestValidation_UnknownRoute(t *testing.T) {
	r := setupValidationRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/events/boda/guests", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestValidation_HealthEndpointPassesThrough(t *testing.T) {
	r := setupValidationRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d: %s", w.Code, w.Body.String())
	}
}
