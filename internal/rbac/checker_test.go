package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	require.True(t, c.Has("candidate", "session:run"))
	require.True(t, c.Has("candidate", "report:view-own"))
	require.False(t, c.Has("candidate", "report:view-all"))
	require.False(t, c.Has("candidate", "job:create"))

	require.True(t, c.Has("recruiter", "job:create"))
	require.True(t, c.Has("recruiter", "question:view-full"))
	require.False(t, c.Has("recruiter", "users:bulk_upsert"))

	require.True(t, c.Has("admin", "anything:at-all"))
	require.False(t, c.Has("ghost", "job:view"))
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"auditor": {"report:*"}})
	require.True(t, c.Has("auditor", "report:view-all"))
	require.True(t, c.Has("auditor", "report:view-own"))
	require.False(t, c.Has("auditor", "job:view"))

	require.True(t, c.Any("auditor", "job:view", "report:view-all"))
	require.False(t, c.All("auditor", "job:view", "report:view-all"))
}

func TestContextIdentity(t *testing.T) {
	ctx := WithSubject(context.Background(), "u-1")
	ctx = WithRole(ctx, "candidate")
	require.Equal(t, "u-1", SubjectFromContext(ctx))
	require.Equal(t, "candidate", RoleFromContext(ctx))

	require.Empty(t, SubjectFromContext(context.Background()))
	require.Empty(t, RoleFromContext(context.Background()))
}

func guardStatus(t *testing.T, mw func(http.Handler) http.Handler, role string) int {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(WithRole(req.Context(), role))
	}
	rec := httptest.NewRecorder()
	mw(ok).ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireGuardsRoutes(t *testing.T) {
	require.Equal(t, http.StatusNoContent, guardStatus(t, Require("session:run"), "candidate"))
	require.Equal(t, http.StatusForbidden, guardStatus(t, Require("job:create"), "candidate"))
	require.Equal(t, http.StatusForbidden, guardStatus(t, Require("job:view"), ""), "no attached role fails closed")

	mw := RequireAny("job:delete_own", "job:delete")
	require.Equal(t, http.StatusNoContent, guardStatus(t, mw, "recruiter"))
	require.Equal(t, http.StatusNoContent, guardStatus(t, mw, "admin"))
	require.Equal(t, http.StatusForbidden, guardStatus(t, mw, "candidate"))
}
