package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hirevox/hirevox/internal/audit"
	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/rbac"
)

// GET /api/reports/my?job_id=...&round_id=...
func GetMyReportHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", 401)
			return
		}
		jobID := r.URL.Query().Get("job_id")
		roundID := r.URL.Query().Get("round_id")
		if jobID == "" || roundID == "" {
			http.Error(w, "job_id and round_id required", 400)
			return
		}
		rep, err := store.GetReport(jobID, roundID, sub)
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(rep)
	}
}

// GET /api/reports?job_id=...&round_id=...
func ListReportsHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reps, err := store.ListReports(r.URL.Query().Get("job_id"), r.URL.Query().Get("round_id"))
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		if reps == nil {
			reps = []hiring.Report{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reps)
	}
}

// GET /api/audit/events?limit=100
func AuditEventsHandler(events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		evs, err := events.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		if evs == nil {
			evs = []audit.Event{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(evs)
	}
}
