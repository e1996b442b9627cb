package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wedlii/wedbot/internal/planning"
)

type updatePreferenceRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type taskTitleRequest struct {
	Title string `json:"title"`
}

type timelineRequest struct {
	Style  string                   `json:"style"`
	Blocks []planning.TimelineBlock `json:"blocks"`
}

type budgetRequest struct {
	Total float64 `json:"total"`
}

type categoryRequest struct {
	Amount *float64 `json:"amount"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.deps.Planning.Preferences(r.Context(), userFrom(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreference(w http.ResponseWriter, r *http.Request) {
	var req updatePreferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	prefs, err := s.deps.Planning.UpdateField(r.Context(), userFrom(r), req.Field, req.Value, "portal")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := planning.TaskStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	switch status {
	case "":
		status = planning.TaskPending
	case "all":
		status = ""
	case planning.TaskPending, planning.TaskCompleted:
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", "status must be pending, completed or all")
		return
	}
	tasks, err := s.deps.Planning.Tasks(r.Context(), userFrom(r), status)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req taskTitleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	task, err := s.deps.Planning.AddTask(r.Context(), userFrom(r), req.Title)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	var req taskTitleRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Title == "" {
		req.Title = r.URL.Query().Get("title")
	}
	n, err := s.deps.Planning.CompleteTask(r.Context(), userFrom(r), req.Title, "chat")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "completed": n})
}

func (s *Server) handleGenerateChecklist(w http.ResponseWriter, r *http.Request) {
	var req taskTitleRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	userID := userFrom(r)
	prefs, err := s.deps.Planning.Preferences(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	items, err := s.deps.Checklists.GenerateChecklist(r.Context(), prefs)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	n, err := s.deps.Planning.SaveChecklist(r.Context(), userID, req.Title, items)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"tasks_created": n})
}

func (s *Server) handleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Planning.GenerateWeeklySchedule(r.Context(), userFrom(r), time.Now().UTC(), "chat")
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "weekly schedule generated",
		"tasks_scheduled": n,
	})
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	s.respondTimeline(w, r, http.StatusOK)
}

// handleCreateTimeline stores explicit blocks when given, otherwise the
// default timeline for the requested (or saved) style.
func (s *Server) handleCreateTimeline(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	userID := userFrom(r)
	var err error
	if len(req.Blocks) > 0 {
		err = s.deps.Planning.ReplaceTimeline(r.Context(), userID, req.Blocks)
	} else {
		_, err = s.deps.Planning.CreateDefaultTimeline(r.Context(), userID, req.Style)
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondTimeline(w, r, http.StatusCreated)
}

func (s *Server) respondTimeline(w http.ResponseWriter, r *http.Request, status int) {
	blocks, err := s.deps.Planning.Timeline(r.Context(), userFrom(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, status, map[string]any{"blocks": blocks})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Planning.Budget(r.Context(), userFrom(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": rows})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	rows, err := s.deps.Planning.CreateBudgetBreakdown(r.Context(), userFrom(r), req.Total)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"categories": rows})
}

func (s *Server) handleUpdateBudgetCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Amount == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "amount is required")
		return
	}
	category := chi.URLParam(r, "category")
	if err := s.deps.Planning.UpdateCategoryBudget(r.Context(), userFrom(r), category, *req.Amount); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "category": category, "allocated": *req.Amount})
}
