package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/zmikicdroin/jobtracker/pkg/models"
	"github.com/zmikicdroin/jobtracker/pkg/repository"
)

const minPasswordLength = 6

type AuthHandler struct {
	userRepo      repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required fields: username, email, password")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	userID, err := h.userRepo.CreateUser(r.Context(), &user)
	if err != nil {
		switch err {
		case repository.ErrDuplicateUsername:
			writeMessage(w, http.StatusConflict, "Username already exists")
		case repository.ErrDuplicateEmail:
			writeMessage(w, http.StatusConflict, "Email already exists")
		default:
			logger.Error("failed to create user", slog.Any("err", err))
			writeMessage(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	writeJSON(w, registerResponse{
		Message:  "User created successfully",
		UserID:   userID,
		Username: req.Username,
	}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	user, err := h.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		logger.Error("failed to look up user", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().UTC().Add(h.tokenDuration).Unix(),
	})
	tokenStr, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		logger.Error("failed to sign token", slog.Any("err", err))
		writeMessage(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, loginResponse{
		Token:    tokenStr,
		Message:  "Login successful",
		Username: user.Username,
	}, http.StatusOK)
}
