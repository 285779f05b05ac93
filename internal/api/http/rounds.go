package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hirevox/hirevox/internal/hiring"
)

func CreateRoundHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		var req hiring.Round
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", 400)
			return
		}
		switch req.Type {
		case hiring.RoundQuiz, hiring.RoundInterview:
		default:
			http.Error(w, "round_type must be quiz or interview", 400)
			return
		}
		req.ID = ""
		req.JobID = jobID
		rd, err := store.PutRound(req)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(rd)
	}
}

func ListRoundsHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rounds, err := store.ListRounds(chi.URLParam(r, "jobID"))
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}
		if rounds == nil {
			rounds = []hiring.Round{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rounds)
	}
}

func GetRoundHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd, err := store.GetRound(chi.URLParam(r, "roundID"))
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(rd)
	}
}
