package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"quizparty/internal/app"
	"quizparty/internal/config"
	"quizparty/internal/transport/ws"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	registry *app.Registry
	config   *config.Config
	logger   *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, registry *app.Registry, logger *slog.Logger) *Server {
	s := &Server{
		registry: registry,
		config:   cfg,
		logger:   logger,
	}

	router := httprouter.New()
	s.setupRoutes(router)

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.middleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(router *httprouter.Router) {
	router.POST("/api/rooms", s.handleCreateRoom)
	router.GET("/api/rooms/:roomCode", s.handleGetRoom)
	router.GET("/api/rooms/:roomCode/exists", s.handleRoomExists)
	router.GET("/api/rooms/:roomCode/qr", s.handleRoomQR)
	router.GET("/api/health", s.handleHealth)
	router.GET("/api/stats", s.handleStats)

	wsHandler := ws.NewHandler(s.registry, s.logger)
	router.Handler(http.MethodGet, "/ws", wsHandler)
}

// middleware wraps the router with logging and CORS
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
