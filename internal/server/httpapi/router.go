// Package httpapi exposes the REST API over net/http.
package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/resync-lab/resync-server/internal/service"
)

// NewRouter assembles all routes and the middleware chain.
func NewRouter(log *zap.Logger, auth service.AuthService, compounds service.CompoundService, corsOrigin string) http.Handler {
	h := NewHandler(auth, compounds, log)
	secured := RequireAuth(auth)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)

	// Authenticated
	mux.Handle("GET /compounds", secured(http.HandlerFunc(h.handleListCompounds)))
	mux.Handle("POST /compounds", secured(http.HandlerFunc(h.handleCreateCompound)))
	mux.Handle("DELETE /compounds/{id}", secured(http.HandlerFunc(h.handleDeleteCompound)))
	mux.Handle("POST /compounds/{id}/share", secured(http.HandlerFunc(h.handleShareCompound)))
	mux.Handle("GET /users", secured(http.HandlerFunc(h.handleListUsers)))

	var root http.Handler = mux
	root = CORS(corsOrigin)(root)
	root = Logging(log)(root)
	root = Recover(log)(root)
	return root
}
