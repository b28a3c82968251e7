package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"famili/internal/handler"
	"famili/internal/ledger"
	"famili/internal/middleware"
	"famili/internal/store"
)

type Server struct {
	db          *sql.DB
	ledger      *ledger.Ledger
	taskH       *handler.TaskHandler
	shopH       *handler.ShopHandler
	syncH       *handler.SyncHandler
	adminH      *handler.AdminHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	shopStore := store.NewShopStore(db)

	l := ledger.New(db, userStore, taskStore, shopStore, logger.With("component", "ledger"))

	return &Server{
		db:          db,
		ledger:      l,
		taskH:       handler.NewTaskHandler(l, logger.With("component", "task")),
		shopH:       handler.NewShopHandler(l, logger.With("component", "shop")),
		syncH:       handler.NewSyncHandler(l, logger.With("component", "sync")),
		adminH:      handler.NewAdminHandler(l, logger.With("component", "admin")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Ledger exposes the engine for seeding and tests.
func (s *Server) Ledger() *ledger.Ledger {
	return s.ledger
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Sync + read views
	mux.HandleFunc("GET /api/sync", s.syncH.Sync)
	mux.HandleFunc("GET /api/user/{externalId}", s.syncH.GetUser)
	mux.HandleFunc("GET /api/user/{externalId}/history", s.syncH.GetHistory)
	mux.HandleFunc("GET /api/family/stats", s.syncH.FamilyStats)
	mux.HandleFunc("GET /api/family/members", s.syncH.FamilyMembers)

	// Task lifecycle
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/claim", s.taskH.Claim)
	mux.HandleFunc("POST /api/tasks/{id}/submit", s.taskH.Submit)
	mux.HandleFunc("POST /api/tasks/{id}/verify", s.taskH.Verify)

	// Shop + purchases
	mux.HandleFunc("GET /api/shop", s.shopH.List)
	mux.HandleFunc("POST /api/shop", s.shopH.Create)
	mux.HandleFunc("PUT /api/shop/{id}", s.shopH.Update)
	mux.HandleFunc("DELETE /api/shop/{id}", s.shopH.Delete)
	mux.HandleFunc("POST /api/shop/buy", s.rateLimitedHandler(s.shopH.Buy))
	mux.HandleFunc("GET /api/purchases/pending", s.shopH.ListPending)
	mux.HandleFunc("POST /api/purchases/{id}/confirm", s.shopH.Confirm)

	// Admin
	mux.HandleFunc("GET /api/admin/users", s.adminH.ListUsers)
	mux.HandleFunc("POST /api/admin/users", s.adminH.CreateUser)
	mux.HandleFunc("DELETE /api/admin/users/{id}", s.adminH.DeleteUser)
	mux.HandleFunc("POST /api/admin/users/{id}/points", s.adminH.AdjustPoints)
	mux.HandleFunc("POST /api/admin/users/{id}/admin", s.adminH.SetAdmin)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
