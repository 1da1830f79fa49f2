package auth

import "net/http"

// Identity represents a user identifier that can be of any type
// Common types include string, int64, uint, or custom types
type Identity any

// AuthUser represents an authenticated user in the system
type AuthUser struct {
	ID       Identity `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user carries the given role
func (u *AuthUser) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthConfig holds the complete authentication configuration
type AuthConfig struct {
	// Enabled determines if authentication is active
	Enabled bool

	// Realm is sent in the WWW-Authenticate challenge
	Realm string

	// Users maps usernames to their credentials
	Users map[string]BasicAuthUser

	// RequireAuth determines if all admin routes require authentication
	// If false, anonymous requests pass through without a user in the context
	RequireAuth bool
}

// AuthMiddleware wraps HTTP handlers to provide authentication
type AuthMiddleware func(http.Handler) http.Handler
