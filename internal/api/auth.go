package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/twinlab/twin/internal/app/gamify"
	"github.com/twinlab/twin/internal/domain"
)

// ─── Auth endpoints ─────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	data, err := s.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.session.Start(data.Username, data.State)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"offline": data.Offline,
		"stale":   data.Stale,
		"state":   data.State,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Incomplete forms are rejected before any state exists.
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email, username and password are required")
		return
	}

	st := gamify.NewUserState(req.Name, req.Email, req.Username, time.Now())
	message, err := s.svc.Register(r.Context(), st, req.Password)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.session.Start(req.Username, st)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": message,
		"state":   st,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.End(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// ─── Health ─────────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	report := s.checker.Report()
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound), errors.Is(err, domain.ErrBlockNotFound),
		errors.Is(err, domain.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyTitle), errors.Is(err, domain.ErrInvalidFrequency),
		errors.Is(err, domain.ErrInvalidTime), errors.Is(err, domain.ErrInvalidTimeRange),
		errors.Is(err, domain.ErrInvalidBlockType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRemoteUnavailable), errors.Is(err, domain.ErrNoCachedData):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrSuggestionFailed):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
