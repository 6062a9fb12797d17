package rbac

// Categories group permissions by the resource they guard.
const (
	CategoryUser       = "user"
	CategoryRole       = "role"
	CategoryPermission = "permission"
	CategoryContent    = "content"
	CategoryAnalytics  = "analytics"
	CategoryAudit      = "audit"
)

// Actions available within the categories.
const (
	ActionList    = "list"
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionAssign  = "assign"
	ActionPublish = "publish"
	ActionView    = "view"
	ActionExport  = "export"
)

// Statements is the closed catalog of every category and the actions it
// allows. Permission creation validates against this catalog, so a typo in a
// permission name is rejected at write time instead of silently denying at
// resolution time.
var Statements = map[string][]string{
	CategoryUser:       {ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete},
	CategoryRole:       {ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionAssign},
	CategoryPermission: {ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionAssign},
	CategoryContent:    {ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionPublish},
	CategoryAnalytics:  {ActionView, ActionExport},
	CategoryAudit:      {ActionView},
}

// ValidAction reports whether the (category, action) pair is part of the
// statement catalog.
func ValidAction(category, action string) bool {
	actions, ok := Statements[category]
	if !ok {
		return false
	}

	for _, a := range actions {
		if a == action {
			return true
		}
	}

	return false
}

// Protected role names. These roles may be edited but never deleted.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// DefaultRoleGrants holds the capability grants seeded for the protected
// roles on first start. superadmin receives the full catalog.
var DefaultRoleGrants = map[string]Statement{
	RoleSuperadmin: Statements,
	RoleAdmin: {
		CategoryUser:       {ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete},
		CategoryRole:       {ActionList, ActionRead, ActionAssign},
		CategoryPermission: {ActionList, ActionRead},
		CategoryContent:    {ActionList, ActionRead, ActionCreate, ActionUpdate},
	},
	RoleUser: {
		CategoryContent: {ActionList, ActionRead},
	},
}
