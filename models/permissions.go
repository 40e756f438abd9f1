// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"fmt"
)

// Resource is a closed enumeration of everything the permission matrix can
// gate. Permission maps with unknown resource keys are rejected at parse
// time rather than silently denied at check time.
type Resource string

const (
	ResourceElections  Resource = "elections"
	ResourceVoters     Resource = "voters"
	ResourcePositions  Resource = "positions"
	ResourceCandidates Resource = "candidates"
	ResourceBallots    Resource = "ballots"
	ResourceRoles      Resource = "roles"
	ResourceResults    Resource = "results"
	ResourceSettings   Resource = "settings"
	ResourceActivity   Resource = "activity"
)

// Resources lists every valid resource, for exhaustive checks.
func Resources() []Resource {
	return []Resource{
		ResourceElections,
		ResourceVoters,
		ResourcePositions,
		ResourceCandidates,
		ResourceBallots,
		ResourceRoles,
		ResourceResults,
		ResourceSettings,
		ResourceActivity,
	}
}

type Action string

const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// PermissionSet is the fixed-width permission record for one resource.
type PermissionSet struct {
	View   bool `json:"view"`
	Add    bool `json:"add"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// Allows returns the flag for one action. Unknown actions deny.
func (p PermissionSet) Allows(action Action) bool {
	switch action {
	case ActionView:
		return p.View
	case ActionAdd:
		return p.Add
	case ActionEdit:
		return p.Edit
	case ActionDelete:
		return p.Delete
	}
	return false
}

type PermissionMap map[Resource]PermissionSet

// ParsePermissions decodes a stored permission map and rejects resource keys
// outside the closed enumeration.
func ParsePermissions(data []byte) (PermissionMap, error) {
	if len(data) == 0 {
		return PermissionMap{}, nil
	}

	var raw map[string]PermissionSet
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse permission map: %w", err)
	}

	known := make(map[Resource]bool, len(Resources()))
	for _, r := range Resources() {
		known[r] = true
	}

	perms := make(PermissionMap, len(raw))
	for key, set := range raw {
		r := Resource(key)
		if !known[r] {
			return nil, fmt.Errorf("unknown resource %q in permission map", key)
		}
		perms[r] = set
	}
	return perms, nil
}

// Encode serializes the permission map for storage.
func (m PermissionMap) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Role is a named permission set. The superadmin and viewer roles have
// hard-coded semantics in the access package regardless of Permissions.
type Role struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Active      bool          `json:"active"`
	Permissions PermissionMap `json:"permissions"`
}
