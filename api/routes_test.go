package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/zmikicdroin/jobtracker/api"
	dbfs "github.com/zmikicdroin/jobtracker/db"
	"github.com/zmikicdroin/jobtracker/internal/config"
	"github.com/zmikicdroin/jobtracker/internal/db"
	"github.com/zmikicdroin/jobtracker/internal/storage"
	"github.com/zmikicdroin/jobtracker/pkg/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	database, err := db.New(ctx, filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		t.Fatalf("db.Migrate: %v", err)
	}

	files, err := storage.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:       "testsecret",
		TokenDuration:   time.Hour,
		MaxUploadBytes:  16 << 20,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}

	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", database, files, nil))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, srv.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username, email string) string {
	t.Helper()
	res, body := doJSON(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "email": email, "password": "secret1",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register: status = %d, body=%s", res.StatusCode, body)
	}

	res, body = doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": "secret1",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d, body=%s", res.StatusCode, body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("login returned no token")
	}
	return resp.Token
}

func TestAPIFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice", "alice@example.com")

	// unauthenticated requests are rejected
	res, _ := doJSON(t, srv, http.MethodGet, "/api/applications", "", nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: status = %d, want 401", res.StatusCode)
	}

	// create, multipart as the browser sends it
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("company", "Acme")
	mw.WriteField("application_date", "2024-01-15")
	mw.WriteField("cover_letter", "Dear team")
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/applications", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	createRes, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	createBody, _ := io.ReadAll(createRes.Body)
	createRes.Body.Close()
	if createRes.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, body=%s", createRes.StatusCode, createBody)
	}
	var created struct {
		ApplicationID int64 `json:"application_id"`
	}
	if err := json.Unmarshal(createBody, &created); err != nil {
		t.Fatalf("unmarshal create: %v", err)
	}

	// list shows the fresh record as pending
	res, body := doJSON(t, srv, http.MethodGet, "/api/applications", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, body=%s", res.StatusCode, body)
	}
	var apps []models.Application
	if err := json.Unmarshal(body, &apps); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(apps) != 1 || apps[0].Status != models.StatusPending {
		t.Fatalf("unexpected list: %#v", apps)
	}

	// flip the status
	path := "/api/applications/" + strconv.FormatInt(created.ApplicationID, 10)
	res, body = doJSON(t, srv, http.MethodPatch, path+"/status", token, map[string]string{"status": "accepted"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("patch: status = %d, body=%s", res.StatusCode, body)
	}

	res, body = doJSON(t, srv, http.MethodGet, path, token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get: status = %d, body=%s", res.StatusCode, body)
	}
	var got models.Application
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal get: %v", err)
	}
	if got.Status != models.StatusAccepted {
		t.Fatalf("status after patch = %q, want accepted", got.Status)
	}

	// stats reflect the single accepted application
	res, body = doJSON(t, srv, http.MethodGet, "/api/stats", token, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("stats: status = %d, body=%s", res.StatusCode, body)
	}
	var stats models.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Total != 1 || stats.Accepted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// another user cannot see it
	otherToken := registerAndLogin(t, srv, "bob", "bob@example.com")
	res, _ = doJSON(t, srv, http.MethodGet, path, otherToken, nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("cross-user get: status = %d, want 404", res.StatusCode)
	}

	// draft endpoint answers 503 when no engine is configured
	res, body = doJSON(t, srv, http.MethodPost, path+"/draft", token, nil)
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("draft: status = %d, body=%s", res.StatusCode, body)
	}
}

func TestAPIPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/applications", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight: status = %d, want 204", res.StatusCode)
	}
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q", got)
	}
}
