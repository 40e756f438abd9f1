// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /election/phase", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Permission Gate

Every administrative endpoint passes the role permission matrix before it
touches storage:

	middleware.WithPermission(db, models.ResourceVoters, models.ActionAdd, handler)

The role name comes from the X-Role header, set by the upstream identity
layer. The role row is loaded per request, never cached.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ErrorResponseCode(w, http.StatusConflict, "message", models.CodeAlreadyVoted)

Parse JSON request bodies:

	var req models.CastBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
