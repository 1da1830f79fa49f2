package auth

// Wildcard grants every permission to a role that lists it
const Wildcard = "*"

// PermissionChecker answers whether a user may perform a named permission
type PermissionChecker interface {
	HasPermission(user *AuthUser, permission string) bool
}

// PermissionFunc adapts a plain function to PermissionChecker
type PermissionFunc func(user *AuthUser, permission string) bool

// HasPermission implements PermissionChecker
func (f PermissionFunc) HasPermission(user *AuthUser, permission string) bool {
	return f(user, permission)
}

// AllowAll grants every permission, including to anonymous users.
// It is the default when authentication is disabled.
var AllowAll PermissionChecker = PermissionFunc(func(*AuthUser, string) bool { return true })

// RolePermissions maps role names to the permissions they grant
type RolePermissions map[string][]string

// HasPermission implements PermissionChecker.
// Anonymous users hold no permissions.
func (rp RolePermissions) HasPermission(user *AuthUser, permission string) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		for _, granted := range rp[role] {
			if granted == Wildcard || granted == permission {
				return true
			}
		}
	}
	return false
}
