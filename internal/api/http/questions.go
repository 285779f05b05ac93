package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hirevox/hirevox/internal/hiring"
	"github.com/hirevox/hirevox/internal/rbac"
)

// candidateQuestion is a question with its answer key and scoring hints
// removed. Candidates browse questions through this shape only; the
// timed session delivers them the same way over the socket.
type candidateQuestion struct {
	ID           string              `json:"id"`
	Text         string              `json:"question_text"`
	Kind         hiring.QuestionKind `json:"question_type"`
	Options      []string            `json:"options,omitempty"`
	Marks        int                 `json:"marks"`
	TimeLimitSec int                 `json:"time_limit_seconds"`
}

func PutQuestionsHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roundID := chi.URLParam(r, "roundID")
		var req []hiring.Question
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req) == 0 {
			http.Error(w, "bad json", 400)
			return
		}
		qs, err := store.PutQuestions(roundID, req)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(qs)
	}
}

var questionChecker = rbac.NewChecker(nil)

func ListQuestionsHandler(store hiring.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.ListQuestions(chi.URLParam(r, "roundID"))
		if err != nil {
			http.Error(w, "not found", 404)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if questionChecker.Has(rbac.RoleFromContext(r.Context()), "question:view-full") {
			_ = json.NewEncoder(w).Encode(qs)
			return
		}
		out := make([]candidateQuestion, 0, len(qs))
		for _, q := range qs {
			out = append(out, candidateQuestion{
				ID:           q.ID,
				Text:         q.Text,
				Kind:         q.Kind,
				Options:      q.Options,
				Marks:        q.Marks,
				TimeLimitSec: q.TimeLimitSec,
			})
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
