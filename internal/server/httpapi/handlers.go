package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/resync-lab/resync-server/internal/errs"
	"github.com/resync-lab/resync-server/internal/model"
	"github.com/resync-lab/resync-server/internal/service"
)

// Handler wires services into HTTP handlers.
type Handler struct {
	auth      service.AuthService
	compounds service.CompoundService
	log       *zap.Logger
}

// NewHandler constructs a Handler with injected services.
func NewHandler(auth service.AuthService, compounds service.CompoundService, log *zap.Logger) *Handler {
	return &Handler{auth: auth, compounds: compounds, log: log}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type compoundRequest struct {
	Name      string `json:"name"`
	Structure string `json:"structure"`
}

type compoundResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Structure string `json:"structure"`
}

type shareRequest struct {
	UserID int64 `json:"user_id"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func toCompoundResponse(c model.Compound) compoundResponse {
	return compoundResponse{ID: c.ID, Name: c.Name, Structure: c.Structure}
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// handleRoot answers the unauthenticated liveness probe.
func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "backend is running"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if _, err := h.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "username already registered")
			return
		}
		h.internal(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "user registered"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tok, err := h.auth.LoginWithIP(r.Context(), req.Username, req.Password, remoteIP(r))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidCredentials), errors.Is(err, errs.ErrNotFound):
			// one shape for unknown username and wrong password
			writeError(w, http.StatusBadRequest, "invalid username or password")
		case errors.Is(err, errs.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "too many attempts, try again later")
		default:
			h.internal(w, "login", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok.AccessToken, TokenType: "bearer"})
}

func (h *Handler) handleListCompounds(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.compounds.ListAccessible(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list compounds", err)
		return
	}
	out := make([]compoundResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCompoundResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateCompound(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req compoundRequest
	if err := decode(r, &req); err != nil || req.Name == "" || req.Structure == "" {
		writeError(w, http.StatusBadRequest, "name and structure are required")
		return
	}
	c, err := h.compounds.Create(r.Context(), u.ID, req.Name, req.Structure)
	if err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			writeError(w, http.StatusBadRequest, "compound already exists")
			return
		}
		h.internal(w, "create compound", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompoundResponse(*c))
}

func (h *Handler) handleDeleteCompound(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "compound not found")
		return
	}
	if err := h.compounds.Delete(r.Context(), u.ID, id); err != nil {
		// missing and not-owned answer identically
		if errors.Is(err, errs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "compound not found")
			return
		}
		h.internal(w, "delete compound", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "compound deleted"})
}

func (h *Handler) handleShareCompound(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusForbidden, "not the compound owner")
		return
	}
	var req shareRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.compounds.Share(r.Context(), u.ID, id, req.UserID); err != nil {
		switch {
		case errors.Is(err, errs.ErrForbidden):
			writeError(w, http.StatusForbidden, "not the compound owner")
		case errors.Is(err, errs.ErrAlreadyShared):
			writeError(w, http.StatusBadRequest, "already shared with this user")
		case errors.Is(err, errs.ErrNotFound):
			writeError(w, http.StatusNotFound, "target user not found")
		default:
			h.internal(w, "share compound", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "compound shared"})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.auth.ListOtherUsers(r.Context(), u.ID)
	if err != nil {
		h.internal(w, "list users", err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, pu := range list {
		out = append(out, userResponse{ID: pu.ID, Username: pu.Username})
	}
	writeJSON(w, http.StatusOK, out)
}

// internal logs the cause and answers with a generic message; internals never
// reach the client.
func (h *Handler) internal(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
