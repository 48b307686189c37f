package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Verifies the database and queue backends are reachable
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "queue unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Query endpoint

// handleQuery godoc
// @Summary      Similarity query
// @Description  Returns the project's most similar chunks for a query string
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      driving.QueryRequest  true  "Query"
// @Success      200      {object}  domain.QueryResult
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      429      {object}  ErrorResponse
// @Security     ApiKeyAuth
// @Router       /query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	scope := GetProjectScope(r.Context())
	if scope == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req driving.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.queryService.Query(r.Context(), scope.ProjectID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrServiceUnavailable):
			writeError(w, http.StatusServiceUnavailable, "embedding service unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "query failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Admin auth

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.adminAuth.Login(r.Context(), req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Source endpoints

func (s *Server) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source, err := s.sourceService.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, domain.ErrProjectInactive):
			writeError(w, http.StatusForbidden, "project inactive")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create source")
		}
		return
	}

	writeJSON(w, http.StatusCreated, source)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	sources, err := s.sourceService.List(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	source, err := s.sourceService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get source")
		return
	}
	writeJSON(w, http.StatusOK, source)
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	if err := s.sourceService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete source")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleProcessSource enqueues a processing task for the source. The
// task is durable; a worker picks it up.
func (s *Server) handleProcessSource(w http.ResponseWriter, r *http.Request) {
	s.enqueueSourceTask(w, r, false)
}

// handleRetrainSource enqueues a from-scratch retrain for a completed
// source.
func (s *Server) handleRetrainSource(w http.ResponseWriter, r *http.Request) {
	s.enqueueSourceTask(w, r, true)
}

func (s *Server) enqueueSourceTask(w http.ResponseWriter, r *http.Request, retrain bool) {
	source, err := s.sourceService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get source")
		return
	}

	var task *domain.Task
	if retrain {
		task = domain.NewRetrainSourceTask(source.ProjectID, source.ID)
	} else {
		task = domain.NewProcessSourceTask(source.ProjectID, source.ID)
	}
	if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue task")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "enqueued",
		"task_id": task.ID,
	})
}

// API key endpoints

func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		ExpiresAt string `json:"expires_at,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := driving.GenerateKeyRequest{
		ProjectID: r.PathValue("id"),
		Name:      body.Name,
	}
	if body.ExpiresAt != "" {
		expiresAt, err := parseTimestamp(body.ExpiresAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid expires_at, want RFC 3339")
			return
		}
		req.ExpiresAt = &expiresAt
	}

	resp, err := s.apiKeyService.Generate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "project not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to generate key")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.apiKeyService.List(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list keys")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	if err := s.apiKeyService.Revoke(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "key not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to revoke key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// Queue introspection

func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.taskQueue.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to read queue stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Helpers

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
