package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mpetrenko/carshare/internal/handler"
	"github.com/mpetrenko/carshare/internal/metrics"
	"github.com/mpetrenko/carshare/internal/middleware"
	"github.com/mpetrenko/carshare/internal/store"
	ws "github.com/mpetrenko/carshare/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	carH         *handler.CarHandler
	orderH       *handler.OrderHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	collector    *metrics.Collector
	logger       *slog.Logger
}

func New(db *sql.DB, botToken string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	collector := metrics.NewCollector()

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	carStore := store.NewCarStore(db)
	orderStore := store.NewOrderStore(db)

	collector.RegisterSessionGauge(func() float64 {
		n, err := sessionStore.Count()
		if err != nil {
			return 0
		}
		return float64(n)
	})

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, botToken, collector, logger.With("component", "auth")),
		carH:         handler.NewCarHandler(carStore, hub, logger.With("component", "car")),
		orderH:       handler.NewOrderHandler(orderStore, carStore, hub, logger.With("component", "order")),
		userStore:    userStore,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		collector:    collector,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Router assembles the route tree. The identity resolver wraps every route;
// it only attaches identity, the guards decide access. Request logging and
// metrics sit outermost so rejected requests are still observed.
func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.collector.Handler())

	// Authenticated routes, with admin routes nested behind a second guard
	authMux := http.NewServeMux()
	s.registerAuthenticatedRoutes(authMux)

	adminMux := http.NewServeMux()
	s.registerAdminRoutes(adminMux)
	requireAdmin := middleware.RequireAdmin(s.userStore, s.logger.With("component", "admin_guard"))
	authMux.Handle("/api/admin/", requireAdmin(adminMux))
	authMux.Handle("GET /api/ws", requireAdmin(ws.HandleWebSocket(s.hub)))

	outerMux.Handle("/", middleware.RequireAuth(authMux))

	resolve := middleware.ResolveIdentity(s.sessionStore, s.collector, s.logger.With("component", "identity"))
	logged := middleware.RequestLogger(s.logger.With("component", "http"))(resolve(outerMux))
	return s.collector.Instrument(logged)
}

func (s *Server) registerAuthenticatedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)

	mux.HandleFunc("GET /api/cars", s.carH.List)
	mux.HandleFunc("GET /api/cars/{id}", s.carH.Get)

	mux.HandleFunc("POST /api/orders", s.orderH.Make)
	mux.HandleFunc("DELETE /api/orders/{id}", s.orderH.Cancel)
	mux.HandleFunc("GET /api/orders/history", s.orderH.History)
}

func (s *Server) registerAdminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/admin/cars", s.carH.Create)
	mux.HandleFunc("PUT /api/admin/cars/{id}", s.carH.Update)
	mux.HandleFunc("DELETE /api/admin/cars/{id}", s.carH.Delete)

	mux.HandleFunc("GET /api/admin/orders", s.orderH.List)
	mux.HandleFunc("GET /api/admin/orders/{id}", s.orderH.Get)
	mux.HandleFunc("POST /api/admin/orders/{id}/accept", s.orderH.Accept)
	mux.HandleFunc("POST /api/admin/orders/{id}/start", s.orderH.StartRent)
	mux.HandleFunc("POST /api/admin/orders/{id}/finish", s.orderH.FinishRent)
	mux.HandleFunc("POST /api/admin/orders/{id}/paid", s.orderH.SetPaid)
	mux.HandleFunc("DELETE /api/admin/orders/{id}", s.orderH.Delete)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
