package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Roles recognized on X-Roles. The service trusts the identity collaborator
// that sets these headers upstream; authentication itself is out of scope.
const (
	RoleConsultant = "consultant"
	RoleApprover   = "approver"
	RoleAdmin      = "admin"
)

// Identity is the acting consultant and their privilege set.
type Identity struct {
	ConsultantID string
	Roles        []string
}

// HasRole reports whether the identity carries the role.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Privileged reports whether the identity may act on other consultants'
// entries.
func (id Identity) Privileged() bool {
	return id.HasRole(RoleApprover) || id.HasRole(RoleAdmin)
}

type identityKey struct{}

// IdentityFrom extracts the identity stored by the middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithIdentity resolves the acting identity from the trusted upstream
// headers and rejects requests without one.
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		consultantID := strings.TrimSpace(r.Header.Get("X-Consultant-Id"))
		if consultantID == "" {
			http.Error(w, "X-Consultant-Id header is required", http.StatusUnauthorized)
			return
		}

		var roles []string
		for _, role := range strings.Split(r.Header.Get("X-Roles"), ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		if len(roles) == 0 {
			roles = []string{RoleConsultant}
		}

		id := Identity{ConsultantID: consultantID, Roles: roles}
		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePrivileged guards the admin subrouter.
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.Privileged() {
			http.Error(w, "approver or admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
