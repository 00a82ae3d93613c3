package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Marcus0035/Looksy/internal/auth"
	"github.com/Marcus0035/Looksy/internal/service"
)

type Server struct {
	photos *service.PhotoService
	groups *service.GroupService
	users  *service.UserService
	tokens *auth.TokenManager
	blobs  http.Handler // optional; serves locally stored blobs
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer wires the API routes. blobHandler may be nil; when set (local
// blob backend) it is mounted to serve signed blob URLs.
func NewServer(photos *service.PhotoService, groups *service.GroupService, users *service.UserService,
	tokens *auth.TokenManager, blobHandler http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		photos: photos,
		groups: groups,
		users:  users,
		tokens: tokens,
		blobs:  blobHandler,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.mux.HandleFunc("GET /api/users/me", s.auth(s.handleGetProfile))
	s.mux.HandleFunc("PUT /api/users/me", s.auth(s.handleUpdateProfile))
	s.mux.HandleFunc("POST /api/users/change-password", s.auth(s.handleChangePassword))
	s.mux.HandleFunc("DELETE /api/users/me", s.auth(s.handleDeleteProfile))
	s.mux.HandleFunc("GET /api/users/me/groups", s.auth(s.handleMyGroups))

	s.mux.HandleFunc("POST /api/groups", s.auth(s.handleCreateGroup))
	s.mux.HandleFunc("GET /api/groups/{id}/members", s.auth(s.handleGetMembers))
	s.mux.HandleFunc("PUT /api/groups/{id}/members", s.auth(s.handleChangeMembers))
	s.mux.HandleFunc("DELETE /api/groups/{id}", s.auth(s.handleDeleteGroup))
	s.mux.HandleFunc("GET /api/groups/{id}/latest-photo", s.auth(s.handleLatestPhoto))
	s.mux.HandleFunc("GET /api/groups/{id}/photos", s.auth(s.handleListPhotos))

	s.mux.HandleFunc("POST /api/photos", s.auth(s.handleUploadPhoto))
	s.mux.HandleFunc("GET /api/photos/{id}", s.auth(s.handleGetPhoto))
	s.mux.HandleFunc("DELETE /api/photos/{id}", s.auth(s.handleDeletePhoto))

	if s.blobs != nil {
		s.mux.Handle("GET /blobs/", s.blobs)
	}
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
