package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aaveggupta/cli-ai-code-editor/internal/db"
	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
	"github.com/aaveggupta/cli-ai-code-editor/internal/pipeline"
	"github.com/aaveggupta/cli-ai-code-editor/internal/repo"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// UserHeader carries the caller identity set by the fronting auth layer.
const UserHeader = "X-User-ID"

type userHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type executeRequest struct {
	Prompt     string `json:"prompt" validate:"required"`
	TargetRepo string `json:"targetRepo" validate:"required"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request, userID string) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Prompt and targetRepo are required")
		return
	}

	path, err := repo.Resolve(s.fs, req.TargetRepo)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mu := s.lockRepo(path)
	defer mu.Unlock()

	writeJSON(w, http.StatusOK, s.svc.Execute(r.Context(), userID, req.Prompt, path))
}

type historyResponse struct {
	Prompts []models.Prompt `json:"prompts"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, userID string) {
	prompts, err := s.svc.History(r.Context(), userID)
	if err != nil {
		s.internalError(w, "listing history", err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Prompts: prompts})
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request, userID string) {
	details, err := s.svc.Details(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.lookupError(w, "loading prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleReapply(w http.ResponseWriter, r *http.Request, userID string) {
	details, err := s.svc.Details(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		s.lookupError(w, "loading prompt", err)
		return
	}

	mu := s.lockRepo(details.Prompt.TargetRepo)
	defer mu.Unlock()

	res, err := s.svc.Reapply(r.Context(), userID, details.Prompt.ID)
	if err != nil {
		s.lookupError(w, "reapplying prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) lookupError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Prompt not found")
	case errors.Is(err, pipeline.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, pipeline.ErrNothingToReapply):
		writeError(w, http.StatusConflict, "No recorded changes to reapply")
	default:
		s.internalError(w, op, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
