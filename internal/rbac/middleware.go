package rbac

import (
	"net/http"
)

// Middleware wires guard-based authorization for HTTP handlers.
type Middleware struct {
	Guard *Guard
}

// Require ensures the current actor holds the named permission.
// A denial is a bare 403 with no further detail.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.Guard == nil || !m.Guard.Check(r.Context(), permission) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the current actor holds at least one of the permissions.
func (m Middleware) RequireAny(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.Guard != nil {
				for _, p := range permissions {
					if m.Guard.Check(r.Context(), p) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
