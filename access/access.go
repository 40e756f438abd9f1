// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package access

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dkemp/ballotbox/models"
)

// Distinguished role names with hard-coded semantics. Their stored
// permission maps are ignored.
const (
	FullAccessRole = "superadmin"
	ViewOnlyRole   = "viewer"
)

// Allowed resolves a (role, resource, action) triple to allow/deny.
// Rule order, first match wins:
//
//  1. full-access role name (case-insensitive): always allow
//  2. view-only role name (case-insensitive): allow iff action is view
//  3. inactive role: deny
//  4. stored permission map lookup, defaulting to deny
//
// Pure function; the role's permission map is loaded by the caller, not
// cached here, so role edits take effect on the next evaluation.
func Allowed(role models.Role, resource models.Resource, action models.Action) bool {
	switch {
	case strings.EqualFold(role.Name, FullAccessRole):
		return true
	case strings.EqualFold(role.Name, ViewOnlyRole):
		return action == models.ActionView
	}

	if !role.Active {
		return false
	}

	set, ok := role.Permissions[resource]
	if !ok {
		return false
	}
	return set.Allows(action)
}

// LoadRole reads a role row by name, case-insensitively. The two privileged
// role names resolve even without a stored row, since their semantics do not
// depend on one.
func LoadRole(ctx context.Context, db *sql.DB, name string) (models.Role, error) {
	var (
		role      models.Role
		permsJSON []byte
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, name, active, permissions FROM role WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&role.ID, &role.Name, &role.Active, &permsJSON)

	if err == sql.ErrNoRows {
		if strings.EqualFold(name, FullAccessRole) || strings.EqualFold(name, ViewOnlyRole) {
			return models.Role{Name: name, Active: true}, nil
		}
		return models.Role{}, models.ErrPermissionDenied
	}
	if err != nil {
		return models.Role{}, err
	}

	role.Permissions, err = models.ParsePermissions(permsJSON)
	if err != nil {
		// A corrupt stored map denies everything rather than erroring the
		// request chain.
		role.Permissions = models.PermissionMap{}
	}
	return role, nil
}
