package http

import (
	"encoding/json"
	"net/http"

	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/rbac"
)

func ApplyHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", 401)
			return
		}
		var req struct {
			JobID string `json:"job_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
			http.Error(w, "bad json", 400)
			return
		}
		job, err := store.GetJob(req.JobID)
		if err != nil {
			http.Error(w, "job not found", 404)
			return
		}
		if job.Status != "open" {
			http.Error(w, "job is closed", 409)
			return
		}
		a, err := store.PutApplication(hiring.Application{JobID: req.JobID, CandidateID: sub})
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

type roundStatus struct {
	RoundID   string `json:"round_id"`
	Number    int    `json:"round_number"`
	Title     string `json:"title"`
	Type      string `json:"round_type"`
	Completed bool   `json:"completed"`
	Cleared   bool   `json:"cleared"`
}

type applicationView struct {
	hiring.Application
	JobTitle string        `json:"job_title"`
	Rounds   []roundStatus `json:"rounds"`
}

func ListMyApplicationsHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", 401)
			return
		}
		apps, err := store.ListApplications(sub)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		out := make([]applicationView, 0, len(apps))
		for _, a := range apps {
			view := applicationView{Application: a, Rounds: []roundStatus{}}
			if job, err := store.GetJob(a.JobID); err == nil {
				view.JobTitle = job.Title
			}
			rounds, err := store.ListRounds(a.JobID)
			if err != nil {
				http.Error(w, "db error", 500)
				return
			}
			for _, rd := range rounds {
				st := roundStatus{
					RoundID: rd.ID,
					Number:  rd.Number,
					Title:   rd.Title,
					Type:    string(rd.Type),
				}
				if rep, err := store.GetReport(a.JobID, rd.ID, sub); err == nil {
					st.Completed = true
					st.Cleared = rep.Cleared
				}
				view.Rounds = append(view.Rounds, st)
			}
			out = append(out, view)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
