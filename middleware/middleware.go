// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dkemp/ballotbox/access"
	"github.com/dkemp/ballotbox/models"
)

// RoleHeader carries the authenticated principal's role name, supplied by
// the upstream identity layer. This core trusts it; token verification is
// outside its scope.
const RoleHeader = "X-Role"

// ActorHeader identifies the acting user for the audit trail.
const ActorHeader = "X-Actor"

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
		)

		next(w, r)

		duration := time.Since(start)
		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// WithPermission gates a handler on the role permission matrix. The role is
// loaded fresh per request so role edits apply on the next evaluation.
func WithPermission(db *sql.DB, resource models.Resource, action models.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roleName := r.Header.Get(RoleHeader)
		if roleName == "" {
			ErrorResponseCode(w, http.StatusUnauthorized, "role required", models.CodePermissionDenied)
			return
		}

		role, err := access.LoadRole(r.Context(), db, roleName)
		if err == models.ErrPermissionDenied {
			ErrorResponseCode(w, http.StatusForbidden, "unknown role", models.CodePermissionDenied)
			return
		}
		if err != nil {
			slog.Error("failed to load role", "role", roleName, "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		if !access.Allowed(role, resource, action) {
			slog.Info("permission denied", "role", roleName, "resource", resource, "action", action)
			ErrorResponseCode(w, http.StatusForbidden, "permission denied", models.CodePermissionDenied)
			return
		}

		next(w, r)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// ErrorResponseCode writes a JSON error response with a machine-readable code
func ErrorResponseCode(w http.ResponseWriter, statusCode int, message, code string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    code,
	})
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' || xff[i] == ' ' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Strip port if present
	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
