package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/BenWassa/vox/internal/quiz"
	"github.com/BenWassa/vox/internal/review"
	"github.com/BenWassa/vox/pkg/models"
	"github.com/go-chi/chi/v5"
)

type cardResponse struct {
	Available bool         `json:"available"`
	Card      *models.Card `json:"card,omitempty"`
}

type outcomeRequest struct {
	Correct *bool `json:"correct"`
}

type outcomeResponse struct {
	Status   string               `json:"status"`
	Progress models.VocabProgress `json:"progress"`
	Session  review.SessionStats  `json:"session"`
}

type statusRequest struct {
	Status *string `json:"status"`
}

type grammarResponse struct {
	Status   string                 `json:"status"`
	Progress models.GrammarProgress `json:"progress"`
}

type sessionResponse struct {
	State   review.State        `json:"state"`
	Current string              `json:"current,omitempty"`
	Stats   review.SessionStats `json:"stats"`
}

func (s *Server) handleNextCard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	card, err := s.deps.Engine.NextCard(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cardResponse{Available: card != nil, Card: card})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	card, err := s.deps.Engine.Reveal(r.Context(), chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	var req outcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Correct == nil {
		s.writeErrorCode(w, r, http.StatusBadRequest, codeInvalidRequest, `body must be {"correct": true|false}`)
		return
	}

	s.mu.Lock()
	progress, err := s.deps.Engine.SubmitOutcome(r.Context(), chi.URLParam(r, "id"), *req.Correct)
	stats := s.deps.Engine.Stats()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse{Status: "ok", Progress: progress, Session: stats})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Quiz == nil {
		s.writeErrorCode(w, r, http.StatusNotFound, codeNotFound, "quiz is not enabled")
		return
	}

	qt, err := quiz.ParseQuestionType(r.URL.Query().Get("type"))
	if err != nil {
		s.writeErrorCode(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
		return
	}
	options := 4
	if raw := r.URL.Query().Get("options"); raw != "" {
		if options, err = strconv.Atoi(raw); err != nil || options < 2 || options > 10 {
			s.writeErrorCode(w, r, http.StatusBadRequest, codeInvalidRequest, "options must be between 2 and 10")
			return
		}
	}

	question, err := s.deps.Quiz.Question(r.Context(), chi.URLParam(r, "id"), options, qt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (s *Server) handleGrammarList(w http.ResponseWriter, r *http.Request) {
	points, err := s.deps.Grammar.ListGrammarPoints(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleGrammarStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == nil {
		s.writeErrorCode(w, r, http.StatusBadRequest, codeInvalidRequest, `body must be {"status": "..."}`)
		return
	}

	status, err := models.ParseGrammarStatus(*req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	progress, err := s.deps.Engine.SetStatus(r.Context(), chi.URLParam(r, "id"), status)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grammarResponse{Status: "ok", Progress: progress})
}

func (s *Server) handleGrammarPractice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	progress, err := s.deps.Engine.RecordPractice(r.Context(), chi.URLParam(r, "id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grammarResponse{Status: "ok", Progress: progress})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summary, err := s.deps.Dashboard.Summary(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state, current := s.deps.Engine.State()
	stats := s.deps.Engine.Stats()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, sessionResponse{State: state, Current: current, Stats: stats})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	// export under the lock so both tables are read from the same state
	s.mu.Lock()
	data, err := s.deps.Codec.Export(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("vox_progress_%s.json", s.deps.Engine.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.deps.MaxImportBytes))
	if err != nil {
		s.writeErrorCode(w, r, http.StatusRequestEntityTooLarge, codeInvalidRequest, "import payload too large")
		return
	}

	s.mu.Lock()
	err = s.deps.Codec.Import(r.Context(), body)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.deps.Backups.List()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, backups)
}
