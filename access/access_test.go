// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkemp/ballotbox/models"
	"github.com/dkemp/ballotbox/testutil"
)

func TestAllowedFullAccessRole(t *testing.T) {
	// Stored permissions are ignored for the full-access role, even an
	// explicit all-deny map.
	role := models.Role{
		Name:   "SuperAdmin",
		Active: true,
		Permissions: models.PermissionMap{
			models.ResourceVoters: {},
		},
	}

	for _, resource := range models.Resources() {
		for _, action := range []models.Action{models.ActionView, models.ActionAdd, models.ActionEdit, models.ActionDelete} {
			assert.True(t, Allowed(role, resource, action), "%s/%s should be allowed", resource, action)
		}
	}
}

func TestAllowedViewOnlyRole(t *testing.T) {
	role := models.Role{Name: "VIEWER", Active: true}

	for _, resource := range models.Resources() {
		assert.True(t, Allowed(role, resource, models.ActionView))
		assert.False(t, Allowed(role, resource, models.ActionAdd))
		assert.False(t, Allowed(role, resource, models.ActionEdit))
		assert.False(t, Allowed(role, resource, models.ActionDelete))
	}
}

func TestAllowedStoredMap(t *testing.T) {
	role := models.Role{
		Name:   "moderator",
		Active: true,
		Permissions: models.PermissionMap{
			models.ResourceVoters:  {View: true, Add: true},
			models.ResourceResults: {View: true},
		},
	}

	tests := []struct {
		name     string
		resource models.Resource
		action   models.Action
		want     bool
	}{
		{"granted view", models.ResourceVoters, models.ActionView, true},
		{"granted add", models.ResourceVoters, models.ActionAdd, true},
		{"denied edit on granted resource", models.ResourceVoters, models.ActionEdit, false},
		{"denied delete on granted resource", models.ResourceVoters, models.ActionDelete, false},
		{"granted results view", models.ResourceResults, models.ActionView, true},
		{"absent resource denies", models.ResourceRoles, models.ActionView, false},
		{"absent resource denies add", models.ResourceElections, models.ActionAdd, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(role, tt.resource, tt.action))
		})
	}
}

func TestAllowedInactiveRoleDenies(t *testing.T) {
	role := models.Role{
		Name:   "moderator",
		Active: false,
		Permissions: models.PermissionMap{
			models.ResourceVoters: {View: true},
		},
	}

	assert.False(t, Allowed(role, models.ResourceVoters, models.ActionView))
}

func TestAllowedDefaultDeny(t *testing.T) {
	role := models.Role{Name: "nobody", Active: true}
	assert.False(t, Allowed(role, models.ResourceVoters, models.ActionView))
}

func TestLoadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestRole(t, db, "Moderator", models.PermissionMap{
		models.ResourceVoters: {View: true, Add: true},
	})

	role, err := LoadRole(context.Background(), db, "moderator") // case-insensitive
	require.NoError(t, err)
	assert.Equal(t, "Moderator", role.Name)
	assert.True(t, role.Active)
	assert.True(t, Allowed(role, models.ResourceVoters, models.ActionAdd))
	assert.False(t, Allowed(role, models.ResourceRoles, models.ActionView))
}

func TestLoadRoleUnknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	_, err := LoadRole(context.Background(), db, "ghost")
	assert.Equal(t, models.ErrPermissionDenied, err)
}

// The privileged role names resolve without a stored row: their semantics
// do not depend on one.
func TestLoadRolePrivilegedWithoutRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	role, err := LoadRole(context.Background(), db, "superadmin")
	require.NoError(t, err)
	assert.True(t, Allowed(role, models.ResourceRoles, models.ActionDelete))

	role, err = LoadRole(context.Background(), db, "Viewer")
	require.NoError(t, err)
	assert.True(t, Allowed(role, models.ResourceResults, models.ActionView))
	assert.False(t, Allowed(role, models.ResourceResults, models.ActionEdit))
}

// Role edits apply on the next evaluation because rows are loaded fresh.
func TestLoadRoleSeesEdits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	testutil.CreateTestRole(t, db, "clerk", models.PermissionMap{
		models.ResourceVoters: {View: true},
	})

	role, err := LoadRole(context.Background(), db, "clerk")
	require.NoError(t, err)
	assert.False(t, Allowed(role, models.ResourceVoters, models.ActionAdd))

	updated := models.PermissionMap{models.ResourceVoters: {View: true, Add: true}}
	permsJSON, err := updated.Encode()
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE role SET permissions = $1 WHERE name = 'clerk'`, permsJSON)
	require.NoError(t, err)

	role, err = LoadRole(context.Background(), db, "clerk")
	require.NoError(t, err)
	assert.True(t, Allowed(role, models.ResourceVoters, models.ActionAdd))
}
