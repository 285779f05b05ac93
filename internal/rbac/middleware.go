package rbac

import "net/http"

// policy is the process-wide role policy consulted by route guards.
var policy = NewChecker(nil)

// guard builds a chi middleware that rejects the request unless the
// authenticated role satisfies the predicate. An empty role means the
// role-attachment middleware never ran; fail closed.
func guard(allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allowed(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require gates a route behind one permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return policy.Has(role, perm) })
}

// RequireAny gates a route behind any one of the given permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(role string) bool { return policy.Any(role, perms...) })
}
