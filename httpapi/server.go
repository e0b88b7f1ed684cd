// Package httpapi implements SecureFox's HTTP surface (C7): the route
// table, bearer-token gate, and JSON request/response shapes of
// spec.md §6. Routing and middleware are treated as boilerplate
// around the session manager per spec.md §1's explicit non-goal, so
// this package is built directly on net/http rather than pulling in a
// router framework: its job is to translate JSON requests into calls
// against vaultsession.Manager and vaultmodel operations, and to map
// the resulting errors onto spec.md §7's status codes. The handler
// registration style (one method per route, grouped on a struct
// holding shared dependencies) follows the teacher's sessionServer in
// vaultdaemon/server.go, adapted from a gRPC service to HTTP.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/securefoxd/securefox/gitsync"
	"github.com/securefoxd/securefox/vaultsession"
)

// Server binds a vaultsession.Manager to the HTTP route table.
type Server struct {
	manager *vaultsession.Manager
	sync    *gitsync.Engine
	logger  *slog.Logger

	mux *http.ServeMux
}

// New constructs a Server. sync may be nil if no Git remote is
// configured; push and pull then report ErrGit, and sync status
// reports zero counts.
func New(manager *vaultsession.Manager, sync *gitsync.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{manager: manager, sync: sync, logger: logger, mux: http.NewServeMux()}
	s.routes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// routes registers the table from spec.md §6. Bearer auth is enforced
// per handler via s.withAuth rather than as blanket middleware,
// since /api/unlock, /api/status, and /health are explicitly exempt.
func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/unlock", s.handleUnlock)
	s.mux.HandleFunc("POST /api/lock", s.withAuth(s.handleLock))
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	s.mux.HandleFunc("GET /api/items", s.withAuth(s.handleListItems))
	s.mux.HandleFunc("POST /api/items", s.withAuth(s.handleCreateItem))
	s.mux.HandleFunc("GET /api/items/{id}", s.withAuth(s.handleGetItem))
	s.mux.HandleFunc("PUT /api/items/{id}", s.withAuth(s.handleUpdateItem))
	s.mux.HandleFunc("DELETE /api/items/{id}", s.withAuth(s.handleDeleteItem))
	s.mux.HandleFunc("GET /api/items/{id}/totp", s.withAuth(s.handleItemTOTP))

	s.mux.HandleFunc("POST /api/generate/password", s.withAuth(s.handleGeneratePassword))

	s.mux.HandleFunc("POST /api/sync/push", s.withAuth(s.handleSyncPush))
	s.mux.HandleFunc("POST /api/sync/pull", s.withAuth(s.handleSyncPull))
	s.mux.HandleFunc("GET /api/sync/status", s.withAuth(s.handleSyncStatus))

	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// withAuth wraps a handler that requires a valid bearer session,
// extracting the token and resolving it through the session manager
// before delegating. Token validity (not kind of error) gates access;
// handlers that need the session itself call GetSession again.
func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		if _, err := s.manager.GetSession(token); err != nil {
			writeErrorForErr(w, err)
			return
		}

		next(w, r, token)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}

	return strings.TrimPrefix(h, prefix)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// statusTimeFormat matches the RFC3339 encoding used throughout the
// JSON responses for timestamps.
const statusTimeFormat = time.RFC3339
