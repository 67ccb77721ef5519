package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zmikicdroin/jobtracker/api"
)

func TestSystemHandlers(t *testing.T) {
	h := &api.SystemHandler{}

	t.Run("Index", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.IndexHandler("1.2.3")(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp["version"] != "1.2.3" || resp["status"] != "running" {
			t.Fatalf("unexpected response: %v", resp)
		}
	})

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp["status"] != "ok" {
			t.Fatalf("unexpected response: %v", resp)
		}
	})

	t.Run("Version", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.VersionHandler("1.2.3", "2024-01-15T00:00:00Z")(w, httptest.NewRequest(http.MethodGet, "/version", nil))
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp["version"] != "1.2.3" || resp["buildTime"] != "2024-01-15T00:00:00Z" {
			t.Fatalf("unexpected response: %v", resp)
		}
	})
}
