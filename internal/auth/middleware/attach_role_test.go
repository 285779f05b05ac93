package auth

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hirevox/hirevox/internal/db"
	"github.com/hirevox/hirevox/internal/rbac"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func attachedRole(t *testing.T, dbh *sql.DB, subject string) (int, string) {
	t.Helper()
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = rbac.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if subject != "" {
		// The claim role is stale on purpose; the database must win.
		ctx := rbac.WithSubject(req.Context(), subject)
		req = req.WithContext(rbac.WithRole(ctx, "admin"))
	}
	rec := httptest.NewRecorder()
	AttachRole(dbh)(inner).ServeHTTP(rec, req)
	return rec.Code, seen
}

func TestAttachRoleDatabaseWinsOverClaim(t *testing.T) {
	dbh := testDB(t)
	_, err := dbh.Exec(
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
		"u-1", "ada@example.com", "x", "candidate", 0)
	require.NoError(t, err)

	code, role := attachedRole(t, dbh, "u-1")
	require.Equal(t, http.StatusNoContent, code)
	require.Equal(t, "candidate", role, "the account's current role replaces the token claim")
}

func TestAttachRoleRejectsUnknownAccounts(t *testing.T) {
	dbh := testDB(t)

	code, _ := attachedRole(t, dbh, "u-deleted")
	require.Equal(t, http.StatusUnauthorized, code, "a deleted account's token stops working")

	code, _ = attachedRole(t, dbh, "")
	require.Equal(t, http.StatusUnauthorized, code)
}
