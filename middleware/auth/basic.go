package auth

import (
	"crypto/subtle"
	"net/http"
)

const defaultRealm = "BackOffice"

// BasicAuthUser represents a user configured for basic authentication
type BasicAuthUser struct {
	Username string
	Password string
	User     AuthUser
}

// NewBasicAuthUser creates a BasicAuthUser with the provided details
func NewBasicAuthUser(username, password string, id Identity, email string, roles []string) BasicAuthUser {
	return BasicAuthUser{
		Username: username,
		Password: password,
		User: AuthUser{
			ID:       id,
			Username: username,
			Email:    email,
			Roles:    roles,
		},
	}
}

// WithBasicAuth creates an AuthConfig that uses HTTP Basic Authentication
func WithBasicAuth(users map[string]BasicAuthUser) AuthConfig {
	return AuthConfig{
		Enabled:     true,
		Realm:       defaultRealm,
		Users:       users,
		RequireAuth: true,
	}
}

// WithNoAuth creates an AuthConfig that disables authentication
func WithNoAuth() AuthConfig {
	return AuthConfig{Enabled: false, Realm: defaultRealm}
}

// Authenticate checks a username/password pair against the configured users
func (c *AuthConfig) Authenticate(username, password string) (*AuthUser, bool) {
	user, exists := c.Users[username]
	if !exists {
		return nil, false
	}

	// Use constant time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(password), []byte(user.Password)) != 1 {
		return nil, false
	}

	u := user.User
	return &u, true
}

// CreateAuthMiddleware creates HTTP middleware for authentication
func CreateAuthMiddleware(authConfig *AuthConfig) AuthMiddleware {
	if authConfig == nil || !authConfig.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	realm := authConfig.Realm
	if realm == "" {
		realm = defaultRealm
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *AuthUser
			if username, password, ok := r.BasicAuth(); ok {
				user, _ = authConfig.Authenticate(username, password)
			}

			if user == nil {
				if authConfig.RequireAuth {
					w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), user)))
		})
	}
}
