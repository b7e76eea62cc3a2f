package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ctiscope/core"
	"ctiscope/metrics"
	"ctiscope/storage"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userContextKey contextKey = "user"

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT issues a session token for an authenticated user.
func (a *API) generateJWT(user *core.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.Auth.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "ctiscope",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.Auth.JWTSecret))
}

// parseJWT validates a token string and resolves the user it names.
func (a *API) parseJWT(tokenString string) (*core.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.config.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	// Resolve against the store so deleted users lose access immediately
	user, err := a.users.GetByID(claims.Subject)
	if err != nil {
		return nil, errors.New("unknown user")
	}
	return user, nil
}

// authMiddleware requires a valid bearer token and stashes the resolved
// user in the request context.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			a.respondError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}

		user, err := a.parseJWT(tokenString)
		if err != nil {
			a.respondError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminOnlyMiddleware rejects non-admin users.
func (a *API) adminOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := requestUser(r)
		if user == nil || !user.IsAdmin() {
			a.respondError(w, http.StatusForbidden, "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestUser returns the authenticated user attached by authMiddleware.
func requestUser(r *http.Request) *core.User {
	user, _ := r.Context().Value(userContextKey).(*core.User)
	return user
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

// login authenticates a username/password pair and issues a session token.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	user, err := a.users.Authenticate(req.Username, req.Password)
	if err != nil {
		metrics.AuthFailures.Inc()
		a.logger.Warnw("login failed", "username", req.Username)
		a.respondError(w, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	token, err := a.generateJWT(user)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to issue session token", err)
		return
	}

	if err := a.audit.Log(user.Username, "Logged in", ""); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, loginResponse{Token: token, User: *user}, http.StatusOK)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// changeOwnPassword lets an authenticated stored user rotate their password.
// The static admin password lives in configuration and cannot be changed here.
func (a *API) changeOwnPassword(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var req changePasswordRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if _, err := a.users.Authenticate(user.Username, req.CurrentPassword); err != nil {
		a.respondError(w, http.StatusForbidden, "current password is incorrect", nil)
		return
	}

	if user.ID == core.AdminUserID {
		a.respondError(w, http.StatusBadRequest, "the static admin password is set via configuration", nil)
		return
	}

	if err := a.users.SetPassword(user.ID, req.NewPassword); err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to update password", err)
		return
	}

	if err := a.audit.Log(user.Username, "Changed own password", user.Username); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, map[string]string{"message": "password updated"}, http.StatusOK)
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin analyst"`
}

// createUser adds a dashboard user (admin only).
func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	actor := requestUser(r)

	var req createUserRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = core.RoleAnalyst
	}

	user, err := a.users.Create(req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateUsername), errors.Is(err, storage.ErrReservedUsername):
			a.respondError(w, http.StatusConflict, err.Error(), nil)
		default:
			a.respondError(w, http.StatusInternalServerError, "failed to create user", err)
		}
		return
	}

	if err := a.audit.Log(actor.Username, "Created user", user.Username); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, user, http.StatusCreated)
}

// listUsers returns all users including the static admin (admin only).
func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to list users", err)
		return
	}
	a.respondJSON(w, users, http.StatusOK)
}

// deleteUser removes a stored user (admin only). The static admin and the
// caller's own account are protected.
func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	actor := requestUser(r)
	id := muxVar(r, "id")

	if id == core.AdminUserID {
		a.respondError(w, http.StatusBadRequest, "the static admin cannot be deleted", nil)
		return
	}
	if id == actor.ID {
		a.respondError(w, http.StatusBadRequest, "you cannot delete your own account", nil)
		return
	}

	target, err := a.users.GetByID(id)
	if err != nil {
		a.respondError(w, http.StatusNotFound, "user not found", nil)
		return
	}

	if err := a.users.Delete(id); err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to delete user", err)
		return
	}

	if err := a.audit.Log(actor.Username, "Deleted user", target.Username); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, map[string]string{"message": "user deleted"}, http.StatusOK)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// resetUserPassword sets a stored user's password (admin only).
func (a *API) resetUserPassword(w http.ResponseWriter, r *http.Request) {
	actor := requestUser(r)
	id := muxVar(r, "id")

	var req resetPasswordRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	if id == core.AdminUserID {
		a.respondError(w, http.StatusBadRequest, "the static admin password is set via configuration", nil)
		return
	}

	target, err := a.users.GetByID(id)
	if err != nil {
		a.respondError(w, http.StatusNotFound, "user not found", nil)
		return
	}

	if err := a.users.SetPassword(id, req.NewPassword); err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to reset password", err)
		return
	}

	if err := a.audit.Log(actor.Username, "Reset user password", target.Username); err != nil {
		a.logger.Errorw("failed to write audit entry", "error", err)
	}

	a.respondJSON(w, map[string]string{"message": "password reset"}, http.StatusOK)
}

// getAuditLog returns the audit trail, newest first (admin only).
func (a *API) getAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", storage.DefaultAuditLimit)
	entries, err := a.audit.List(limit)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, "failed to read audit log", err)
		return
	}
	a.respondJSON(w, entries, http.StatusOK)
}
