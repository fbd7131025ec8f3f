// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package sec

// # Roles & Permissions
//
// The authorization engine is a static table: each role of the closed set maps
// to an explicit, exhaustively-listed permission set. There is no hierarchy
// and no wildcard matching — a check is an exact set-membership test, and an
// unrecognized role maps to the empty set (deny by default).

// Role represents the authorization level granted to an account.
type Role string

const (
	// Unrestricted system access
	RoleAdmin Role = "admin"

	// Runs the branch: full fleet and reservation control plus reporting
	RoleManager Role = "manager"

	// Front-desk operations: creates and edits records, no deletions
	RoleEmployee Role = "employee"

	// Read-only access, default for new accounts
	RoleViewer Role = "viewer"
)

// Permission is an atomic capability tag checked by the authorization engine.
type Permission string

const (
	PermissionRead        Permission = "read"
	PermissionWrite       Permission = "write"
	PermissionDelete      Permission = "delete"
	PermissionManageUsers Permission = "manage_users"
	PermissionViewReports Permission = "view_reports"
	PermissionBackup      Permission = "backup"
)

// rolePermissions is the fixed role → permission-set table. It is never
// mutated after package initialization.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:    {PermissionRead, PermissionWrite, PermissionDelete, PermissionManageUsers, PermissionViewReports, PermissionBackup},
	RoleManager:  {PermissionRead, PermissionWrite, PermissionDelete, PermissionViewReports, PermissionBackup},
	RoleEmployee: {PermissionRead, PermissionWrite, PermissionViewReports},
	RoleViewer:   {PermissionRead},
}

// Can reports whether the role grants the exact permission tag.
//
// It is a pure function: no I/O, no side effects, total over every
// structurally valid role string.
func (r Role) Can(permission Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == permission {
			return true
		}
	}
	return false
}

// Permissions returns a copy of the role's permission set.
// Unrecognized roles yield an empty slice.
func (r Role) Permissions() []Permission {
	granted := rolePermissions[r]
	out := make([]Permission, len(granted))
	copy(out, granted)
	return out
}

// Valid reports whether the role belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Roles returns the closed set of recognized roles.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee, RoleViewer}
}
