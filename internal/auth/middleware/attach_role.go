package auth

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/hirevox/hirevox/internal/rbac"
)

// AttachRole replaces the token's role claim with the account's current
// role. Tokens outlive role changes (8 h expiry), so the database is
// authoritative; a deleted account's tokens stop working immediately
// rather than at expiry.
func AttachRole(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			if sub == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			var role string
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, sub).Scan(&role)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "account not found", http.StatusUnauthorized)
			case err != nil:
				http.Error(w, "auth lookup failed", http.StatusInternalServerError)
			default:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			}
		})
	}
}
