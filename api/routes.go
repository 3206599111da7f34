package api

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/samuelralak/Emurgis/internal/config"
	"github.com/samuelralak/Emurgis/internal/db"
	"github.com/samuelralak/Emurgis/internal/problems"
	"github.com/samuelralak/Emurgis/internal/repository/sqlite"
	"github.com/samuelralak/Emurgis/internal/schema"
)

// SetupRoutes wires repositories, the lifecycle service and all handlers
// into a router. queue may be nil (notifications are then skipped), which
// keeps test setups small.
func SetupRoutes(ctx context.Context, cfg *config.Config, version, buildTime string, d *db.DB, queue problems.Enqueuer) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(d, logger)

	schemas, err := schema.NewLoader(ctx, repo)
	if err != nil {
		return nil, err
	}

	svc := problems.NewService(repo, repo, queue, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	problemsHandler := NewProblemsHandler(svc, schemas)
	notificationsHandler := NewNotificationsHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Problem lifecycle endpoints
	apiV1.HandleFunc("/problems", problemsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/problems", problemsHandler.List).Methods("GET")
	apiV1.HandleFunc("/problems/{id}", problemsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/problems/{id}", problemsHandler.Delete).Methods("DELETE")
	apiV1.HandleFunc("/problems/{id}/claim", problemsHandler.Claim).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/unclaim", problemsHandler.Unclaim).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/resolve", problemsHandler.Resolve).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/status", problemsHandler.UpdateStatus).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/watch", problemsHandler.Watch).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/unwatch", problemsHandler.Unwatch).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/comments", problemsHandler.PostComment).Methods("POST")
	apiV1.HandleFunc("/problems/{id}/comments", problemsHandler.ListComments).Methods("GET")

	// Notification endpoints
	apiV1.HandleFunc("/notifications", notificationsHandler.List).Methods("GET")
	apiV1.HandleFunc("/notifications/read", notificationsHandler.MarkAllRead).Methods("POST")

	return r, nil
}
