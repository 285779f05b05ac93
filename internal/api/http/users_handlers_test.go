package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirevox/hirevox/internal/db"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

type onboardReply struct {
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Results []inviteResult `json:"results"`
}

func postInvites(t *testing.T, dbh *sql.DB, body string) onboardReply {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/users/bulk", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	OnboardUsersHandler(dbh)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply onboardReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestOnboardCreatesAccountsWithTempPasswords(t *testing.T) {
	dbh := testDB(t)

	reply := postInvites(t, dbh, `[
		{"username":"ada@example.com"},
		{"username":"ravi@example.com","role":"recruiter","password":"chosen-by-ravi"}
	]`)
	require.Equal(t, 2, reply.Created)
	require.Zero(t, reply.Updated)

	require.Equal(t, "created", reply.Results[0].Status)
	require.NotEmpty(t, reply.Results[0].TempPassword, "generated password is returned for the invite")
	require.Empty(t, reply.Results[1].TempPassword, "supplied password is never echoed back")

	var id, hash, role string
	require.NoError(t, dbh.QueryRow(
		`SELECT id, password_hash, role FROM users WHERE username=$1`, "ada@example.com").
		Scan(&id, &hash, &role))
	require.NotEmpty(t, id, "ids are assigned server-side")
	require.Equal(t, "candidate", role, "role defaults to candidate")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(reply.Results[0].TempPassword)))
}

func TestOnboardUpdatesExistingByUsername(t *testing.T) {
	dbh := testDB(t)

	first := postInvites(t, dbh, `[{"username":"ada@example.com"}]`)
	require.Equal(t, 1, first.Created)

	second := postInvites(t, dbh, `[{"username":"ada@example.com","role":"recruiter"}]`)
	require.Equal(t, 1, second.Updated)
	require.Empty(t, second.Results[0].TempPassword, "an update never rotates an unspecified password")

	var role string
	var count int
	require.NoError(t, dbh.QueryRow(`SELECT role FROM users WHERE username=$1`, "ada@example.com").Scan(&role))
	require.Equal(t, "recruiter", role)
	require.NoError(t, dbh.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	require.Equal(t, 1, count, "accounts are keyed by username")
}

func TestOnboardRejectsAdminAndBlankRows(t *testing.T) {
	dbh := testDB(t)

	reply := postInvites(t, dbh, `[
		{"username":"root@example.com","role":"admin"},
		{"username":""}
	]`)
	require.Zero(t, reply.Created)
	require.Equal(t, "error", reply.Results[0].Status)
	require.Contains(t, reply.Results[0].Error, "candidate or recruiter")
	require.Equal(t, "error", reply.Results[1].Status)

	var count int
	require.NoError(t, dbh.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	require.Zero(t, count)
}

func TestParseInviteCSV(t *testing.T) {
	rows, err := parseInviteCSV(strings.NewReader(
		"Username,Role\nada@example.com,candidate\nravi@example.com,recruiter\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "ada@example.com", rows[0].Username)
	require.Equal(t, "recruiter", rows[1].Role)
	require.Empty(t, rows[0].Password, "no password column means generated invites")

	_, err = parseInviteCSV(strings.NewReader("email,role\na@b.c,candidate\n"))
	require.Error(t, err, "username column is required")
}
