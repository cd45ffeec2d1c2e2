package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/planning"
)

// goalResponse is a goal together with its completion state.
type goalResponse struct {
	*goal.Goal
	Version  int               `json:"version"`
	Checked  []string          `json:"checked"`
	Progress planning.Progress `json:"progress"`
}

type progressResponse struct {
	GoalID   string            `json:"goal_id"`
	Version  int               `json:"version"`
	Checked  []string          `json:"checked"`
	Progress planning.Progress `json:"progress"`
}

type setItemRequest struct {
	Checked *bool `json:"checked"`
}

func checkedKeys(state *planning.CompletionState) []string {
	keys := make([]string, 0, state.CheckedCount())
	for k, v := range state.Checked {
		if v {
			keys = append(keys, k.String())
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.ListGoals(r.Context())
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	if err := validateGoalBody(body); err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}

	var req goal.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	g, err := s.goals.CreateGoal(r.Context(), req)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) getGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "goal_id")
	g, err := s.goals.GetGoal(r.Context(), id)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	state, err := s.progress.GetState(r.Context(), id)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, goalResponse{
		Goal:     g,
		Version:  state.Version,
		Checked:  checkedKeys(state),
		Progress: g.Progress(state),
	})
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.DeleteGoal(r.Context(), chi.URLParam(r, "goal_id")); err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "goal_id")
	g, err := s.goals.GetGoal(r.Context(), id)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	state, err := s.progress.GetState(r.Context(), id)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{
		GoalID:   id,
		Version:  state.Version,
		Checked:  checkedKeys(state),
		Progress: g.Progress(state),
	})
}

func (s *Server) resetProgress(w http.ResponseWriter, r *http.Request) {
	update, err := s.progress.Reset(r.Context(), chi.URLParam(r, "goal_id"))
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (s *Server) toggleItem(w http.ResponseWriter, r *http.Request) {
	key, err := planning.ParseCompletionKey(chi.URLParam(r, "key"))
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	update, err := s.progress.Toggle(r.Context(), chi.URLParam(r, "goal_id"), key)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (s *Server) setItem(w http.ResponseWriter, r *http.Request) {
	key, err := planning.ParseCompletionKey(chi.URLParam(r, "key"))
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}

	var req setItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Checked == nil {
		writeErr(w, http.StatusBadRequest, "invalid_request", `body must be {"checked": true|false}`, nil)
		return
	}

	update, err := s.progress.SetChecked(r.Context(), chi.URLParam(r, "goal_id"), key, *req.Checked)
	if err != nil {
		writeDomainErr(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}
