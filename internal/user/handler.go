package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mohirdev/delivery-api/internal/auth"
	"github.com/mohirdev/delivery-api/internal/errs"
	orderentity "github.com/mohirdev/delivery-api/internal/order/entity"
	"github.com/mohirdev/delivery-api/internal/user/entity"
)

// CredentialService is the service surface the handler needs; satisfied by
// *Service and by fakes in tests.
type CredentialService interface {
	Register(ctx context.Context, username, email, password string, isActive, isStaff bool) (*entity.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// OrderLister lists orders owned by an identity; satisfied by the order
// service.
type OrderLister interface {
	ListByUser(ctx context.Context, userID int64) ([]orderentity.Detail, error)
}

// Handler exposes the /auth HTTP endpoints: signup, login, refresh and the
// caller's own orders.
type Handler struct {
	svc    CredentialService
	tokens *auth.TokenService
	orders OrderLister
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, tokens *auth.TokenService, orders OrderLister, logger *zap.SugaredLogger) *Handler {
	svc := NewService(db, nil, nil)
	return &Handler{svc: svc, tokens: tokens, orders: orders, logger: logger}
}

// SignupRequest request body for the signup endpoint. is_active and is_staff
// may be supplied by the caller and default to true/false when omitted.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active"`
	IsStaff  *bool  `json:"is_staff"`
}

// SignupResponse echoes the created identity.
type SignupResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, email and password are required"})
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	isStaff := false
	if req.IsStaff != nil {
		isStaff = *req.IsStaff
	}
	u, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password, isActive, isStaff)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already registered"})
		case errors.Is(err, ErrDuplicateUsername):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username already registered"})
		default:
			h.logger.Errorw("signup failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "signup failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, SignupResponse{ID: u.ID, Username: u.Username, Email: u.Email})
}

// LoginRequest login payload; either username or email identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the freshly issued token pair.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	u, err := h.svc.Authenticate(r.Context(), identifier, req.Password)
	if errors.Is(err, ErrInvalidCredentials) && req.Email != "" && req.Email != identifier {
		// the username did not match; the email may still identify the account
		u, err = h.svc.Authenticate(r.Context(), req.Email, req.Password)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid username or password"})
			return
		}
		h.logger.Errorw("login failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	access, _, err := h.tokens.IssueAccess(u.Username)
	if err != nil {
		h.logger.Errorw("issue access token", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	refresh, _, err := h.tokens.IssueRefresh(u.Username)
	if err != nil {
		h.logger.Errorw("issue refresh token", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{AccessToken: access, RefreshToken: refresh})
}

// Refresh mints a new access token from a valid refresh token. The subject is
// re-resolved against the store so tokens for vanished identities stop
// working.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	tok, ok := auth.BearerToken(r)
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing refresh token"})
		return
	}
	subject, err := h.tokens.Verify(tok, auth.ClassRefresh)
	if err != nil {
		h.logger.Debugw("refresh token rejected", "err", err)
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}
	u, err := h.svc.GetByUsername(r.Context(), subject)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		h.logger.Errorw("refresh lookup failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "refresh failed"})
		return
	}
	access, _, err := h.tokens.IssueAccess(u.Username)
	if err != nil {
		h.logger.Errorw("issue access token", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "refresh failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"access_token": access})
}

// MyOrders returns the authenticated caller's own orders.
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	orders, err := h.orders.ListByUser(r.Context(), u.ID)
	if err != nil {
		h.logger.Errorw("list own orders", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list orders failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
