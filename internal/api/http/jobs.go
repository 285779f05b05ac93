// Package http holds the REST handlers. Routes remain in main.go.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hirevox/hirevox/internal/hiring"
)

func CreateJobHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hiring.Job
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "job_title required", 400)
			return
		}
		req.ID = ""
		j, err := store.PutJob(req)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(j)
	}
}

func ListJobsHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := store.ListJobs(r.URL.Query().Get("status"))
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jobs)
	}
}

func GetJobHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := store.GetJob(chi.URLParam(r, "jobID"))
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(j)
	}
}

func DeleteJobHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteJob(chi.URLParam(r, "jobID")); err != nil {
			if errors.Is(err, hiring.ErrNotFound) {
				http.Error(w, "not found", 404)
				return
			}
			http.Error(w, "db error", 500)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
