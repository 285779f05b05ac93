package http

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// inviteRow is one account to onboard. Accounts are keyed by username
// (the candidate's email in practice); ids are assigned server-side.
type inviteRow struct {
	Username string `json:"username"`
	Role     string `json:"role"`               // candidate (default) or recruiter
	Password string `json:"password,omitempty"` // generated when absent
}

type inviteResult struct {
	Username     string `json:"username"`
	Status       string `json:"status"` // created | updated | error
	TempPassword string `json:"temp_password,omitempty"`
	Error        string `json:"error,omitempty"`
}

// OnboardUsersHandler provisions candidate and recruiter accounts in
// batch, from a JSON array body or a multipart file= upload (CSV export
// from an ATS, or JSON). New accounts without a password get a generated
// temporary one, returned per row so the recruiter can distribute
// invites. Admin accounts are seeded from the environment, never here.
func OnboardUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := decodeInvites(r)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}

		results := make([]inviteResult, 0, len(rows))
		created, updated := 0, 0
		for _, row := range rows {
			res := onboardOne(r.Context(), db, row)
			switch res.Status {
			case "created":
				created++
			case "updated":
				updated++
			}
			results = append(results, res)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": created,
			"updated": updated,
			"results": results,
		})
	}
}

func decodeInvites(r *http.Request) ([]inviteRow, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("file required")
		}
		defer f.Close()
		buf := make([]byte, 1)
		if _, err := f.Read(buf); err != nil {
			return nil, errors.New("empty file")
		}
		if seeker, ok := f.(io.Seeker); ok {
			_, _ = seeker.Seek(0, io.SeekStart)
		}
		if buf[0] == '[' {
			var rows []inviteRow
			if err := json.NewDecoder(f).Decode(&rows); err != nil {
				return nil, errors.New("bad json")
			}
			return rows, nil
		}
		return parseInviteCSV(f)
	}
	var rows []inviteRow
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		return nil, errors.New("expected JSON array or multipart file")
	}
	return rows, nil
}

// parseInviteCSV reads a header-mapped CSV. Only username is required;
// role and password columns are optional.
func parseInviteCSV(r io.Reader) ([]inviteRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, errors.New("bad csv: missing header")
	}
	col := map[string]int{}
	for i, h := range hdr {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["username"]; !ok {
		return nil, errors.New("bad csv: missing username column")
	}
	var rows []inviteRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := inviteRow{Username: strings.TrimSpace(rec[col["username"]])}
		if i, ok := col["role"]; ok {
			row.Role = strings.ToLower(strings.TrimSpace(rec[i]))
		}
		if i, ok := col["password"]; ok {
			row.Password = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func onboardOne(ctx context.Context, db *sql.DB, row inviteRow) inviteResult {
	res := inviteResult{Username: row.Username, Status: "error"}
	if row.Username == "" {
		res.Error = "username required"
		return res
	}
	role := row.Role
	if role == "" {
		role = "candidate"
	}
	if role != "candidate" && role != "recruiter" {
		res.Error = "role must be candidate or recruiter"
		return res
	}

	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, row.Username).Scan(&id)
	switch {
	case err == nil:
		// Existing account: refresh role, and rotate the password only
		// when one was explicitly supplied.
		if row.Password != "" {
			hash, herr := bcrypt.GenerateFromPassword([]byte(row.Password), 12)
			if herr != nil {
				res.Error = herr.Error()
				return res
			}
			_, err = db.ExecContext(ctx, `UPDATE users SET role=$1, password_hash=$2 WHERE id=$3`, role, string(hash), id)
		} else {
			_, err = db.ExecContext(ctx, `UPDATE users SET role=$1 WHERE id=$2`, role, id)
		}
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Status = "updated"
		return res

	case errors.Is(err, sql.ErrNoRows):
		password := row.Password
		if password == "" {
			password, err = tempPassword()
			if err != nil {
				res.Error = err.Error()
				return res
			}
			res.TempPassword = password
		}
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), 12)
		if herr != nil {
			res.Error = herr.Error()
			return res
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), row.Username, string(hash), role, time.Now().Unix())
		if err != nil {
			res.Error = err.Error()
			res.TempPassword = ""
			return res
		}
		res.Status = "created"
		return res

	default:
		res.Error = err.Error()
		return res
	}
}

func tempPassword() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type userListing struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var (
			rows *sql.Rows
			err  error
		)
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,role FROM users WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		defer rows.Close()
		out := []userListing{}
		for rows.Next() {
			var u userListing
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				http.Error(w, "db error", 500)
				return
			}
			out = append(out, u)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
