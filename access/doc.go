// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package access evaluates the (role, resource, action) permission matrix that
gates every administrative mutation.

# Evaluation

	role, err := access.LoadRole(ctx, db, "moderator")
	if access.Allowed(role, models.ResourceVoters, models.ActionAdd) {
		// proceed
	}

Two role names carry hard-coded semantics regardless of their stored
permission maps: "superadmin" (always allow) and "viewer" (view only).
Everything else falls through to the role's stored map with a default of
deny. Roles are loaded fresh for each evaluation so edits apply immediately.
*/
package access
