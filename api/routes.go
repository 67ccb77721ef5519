package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zmikicdroin/jobtracker/internal/ai"
	"github.com/zmikicdroin/jobtracker/internal/config"
	"github.com/zmikicdroin/jobtracker/internal/db"
	"github.com/zmikicdroin/jobtracker/internal/repository/sqlite"
	"github.com/zmikicdroin/jobtracker/internal/storage"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, files *storage.Store, engine *ai.Engine) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(BodyLimitMiddleware(cfg.MaxUploadBytes))

	// Repository
	repo := sqlite.New(database, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	appsHandler := NewApplicationsHandler(repo, files)
	uploadsHandler := NewUploadsHandler(repo, files)
	draftsHandler := NewDraftsHandler(repo, engine)

	// Open endpoints
	r.HandleFunc("/", systemHandler.IndexHandler(version)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/api/register", authHandler.Register).Methods("POST", "OPTIONS")

	login := RateLimitMiddleware(cfg.LoginRateLimit, cfg.LoginRateWindow)(http.HandlerFunc(authHandler.Login))
	r.Handle("/api/login", login).Methods("POST", "OPTIONS")

	// Protected routes
	apiR := r.PathPrefix("/api").Subrouter()
	apiR.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	apiR.HandleFunc("/applications", appsHandler.List).Methods("GET", "OPTIONS")
	apiR.HandleFunc("/applications", appsHandler.Create).Methods("POST")
	apiR.HandleFunc("/applications/{id:[0-9]+}", appsHandler.Get).Methods("GET", "OPTIONS")
	apiR.HandleFunc("/applications/{id:[0-9]+}", appsHandler.Update).Methods("PUT")
	apiR.HandleFunc("/applications/{id:[0-9]+}", appsHandler.Delete).Methods("DELETE")
	apiR.HandleFunc("/applications/{id:[0-9]+}/status", appsHandler.PatchStatus).Methods("PATCH", "OPTIONS")
	apiR.HandleFunc("/applications/{id:[0-9]+}/draft", draftsHandler.Draft).Methods("POST", "OPTIONS")
	apiR.HandleFunc("/uploads/{filename}", uploadsHandler.Download).Methods("GET", "OPTIONS")
	apiR.HandleFunc("/stats", appsHandler.Stats).Methods("GET", "OPTIONS")

	return r
}
