package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zmikicdroin/jobtracker/api"
	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/repository/mock"
)

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := time.Hour

	tests := []struct {
		name       string
		path       string
		body       any
		prepare    func(m *mock.Mocks)
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "Register_InvalidJSON",
			path:       "/api/register",
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_MissingFields",
			path:       "/api/register",
			body:       map[string]string{"username": "alice", "password": "secret1"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Register_ShortPassword",
			path:       "/api/register",
			body:       map[string]string{"username": "alice", "email": "alice@x.com", "password": "12345"},
			wantStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("at least 6 characters")) {
					t.Fatalf("unexpected body: %s", b)
				}
			},
		},
		{
			name:       "Register_Success",
			path:       "/api/register",
			body:       map[string]string{"username": "alice", "email": "alice@x.com", "password": "secret1"},
			wantStatus: http.StatusCreated,
			checkBody: func(t *testing.T, b []byte) {
				var resp struct {
					UserID   int64  `json:"user_id"`
					Username string `json:"username"`
				}
				if err := json.Unmarshal(b, &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if resp.UserID != 1 || resp.Username != "alice" {
					t.Fatalf("unexpected response: %+v", resp)
				}
			},
		},
		{
			name: "Register_DuplicateUsername",
			path: "/api/register",
			body: map[string]string{"username": "alice", "email": "new@x.com", "password": "secret1"},
			prepare: func(m *mock.Mocks) {
				m.UserRepo.Stored = &models.User{ID: 1, Username: "alice", Email: "alice@x.com"}
			},
			wantStatus: http.StatusConflict,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("Username already exists")) {
					t.Fatalf("unexpected body: %s", b)
				}
			},
		},
		{
			name: "Register_DuplicateEmail",
			path: "/api/register",
			body: map[string]string{"username": "bob", "email": "alice@x.com", "password": "secret1"},
			prepare: func(m *mock.Mocks) {
				m.UserRepo.Stored = &models.User{ID: 1, Username: "alice", Email: "alice@x.com"}
			},
			wantStatus: http.StatusConflict,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("Email already exists")) {
					t.Fatalf("unexpected body: %s", b)
				}
			},
		},
		{
			name:       "Login_MissingFields",
			path:       "/api/login",
			body:       map[string]string{"username": "alice"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Login_UnknownUser",
			path:       "/api/login",
			body:       map[string]string{"username": "ghost", "password": "secret1"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Login_WrongPassword",
			path: "/api/login",
			body: map[string]string{"username": "alice", "password": "wrongpw"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("rightpw"), bcrypt.DefaultCost)
				m.UserRepo.Stored = &models.User{ID: 1, Username: "alice", PasswordHash: string(hash)}
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Login_Success",
			path: "/api/login",
			body: map[string]string{"username": "alice", "password": "secret1"},
			prepare: func(m *mock.Mocks) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.DefaultCost)
				m.UserRepo.Stored = &models.User{ID: 42, Username: "alice", PasswordHash: string(hash)}
			},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var resp struct {
					Token    string `json:"token"`
					Username string `json:"username"`
				}
				if err := json.Unmarshal(b, &resp); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if resp.Token == "" || resp.Username != "alice" {
					t.Fatalf("unexpected response: %+v", resp)
				}

				tok, err := jwt.Parse(resp.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil || !tok.Valid {
					t.Fatalf("invalid token: %v", err)
				}
				claims, ok := tok.Claims.(jwt.MapClaims)
				if !ok {
					t.Fatalf("unexpected claims type")
				}
				if id, _ := claims["user_id"].(float64); int64(id) != 42 {
					t.Fatalf("user_id claim = %v, want 42", claims["user_id"])
				}
				if name, _ := claims["username"].(string); name != "alice" {
					t.Fatalf("username claim = %v", claims["username"])
				}
				if exp, ok := claims["exp"].(float64); !ok || int64(exp) < time.Now().Unix() {
					t.Fatalf("invalid exp claim: %v", claims["exp"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(mocks)
			}
			handler := api.NewAuthHandler(mocks.UserRepo, secret, tokenDur)

			b, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(b))
			w := httptest.NewRecorder()

			switch tt.path {
			case "/api/register":
				handler.Register(w, req)
			case "/api/login":
				handler.Login(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d got %d body=%s", tt.wantStatus, res.StatusCode, data)
			}
			if tt.checkBody != nil {
				tt.checkBody(t, data)
			}
		})
	}
}
