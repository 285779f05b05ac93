package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hirevox/hirevox/internal/ai"
	"github.com/hirevox/hirevox/internal/hiring"
)

// POST /api/rounds/{roundID}/questions/generate  { "count": 5, "difficulty": "Medium" }
// Generated questions are persisted and returned with answer keys; the
// route is recruiter-only.
func GenerateQuestionsHandler(store hiring.Store, gen *ai.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gen == nil {
			http.Error(w, "question generation not configured", 503)
			return
		}
		roundID := chi.URLParam(r, "roundID")
		round, err := store.GetRound(roundID)
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		job, err := store.GetJob(round.JobID)
		if err != nil {
			http.Error(w, "job not found", 404)
			return
		}
		var req struct {
			Count      int    `json:"count"`
			Difficulty string `json:"difficulty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		qs, err := gen.Generate(r.Context(), job, round, req.Count, req.Difficulty)
		if err != nil {
			http.Error(w, err.Error(), 502)
			return
		}
		stored, err := store.PutQuestions(roundID, qs)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(stored)
	}
}
