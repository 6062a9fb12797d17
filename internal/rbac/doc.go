// Package rbac implements the role-based access control policy engine:
// resolving a user's effective capability map from the role and permission
// tables and rendering allow/deny decisions against a required statement.
package rbac
