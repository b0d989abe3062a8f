package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/papapumpkin/syllabus/internal/catalog"
	"github.com/papapumpkin/syllabus/internal/store"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type progressRequest struct {
	ModuleID string   `json:"module_id" validate:"required"`
	Status   string   `json:"status" validate:"required,oneof=not-started in-progress completed"`
	Score    *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	f := catalog.Filter{
		Text:     r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	mods, err := s.db.Modules(r.Context(), f, userIDFrom(r.Context()))
	if err != nil {
		s.internalError(w, "list modules", err)
		return
	}
	if mods == nil {
		mods = []catalog.Module{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"modules": mods})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	hash, err := store.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}
	u, err := s.db.CreateUser(r.Context(), strings.TrimSpace(req.Name), req.Email, hash)
	if errors.Is(err, store.ErrConflict) {
		s.metrics.authResult("register", false)
		writeError(w, http.StatusConflict, "Email already exists")
		return
	}
	if err != nil {
		s.internalError(w, "create user", err)
		return
	}
	if err := s.setSession(w, u.ID, u.Email); err != nil {
		s.internalError(w, "issue session", err)
		return
	}
	s.metrics.authResult("register", true)
	s.log.Info("user registered", "user_id", u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "User created successfully", "user": u})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, hash, err := s.db.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.authResult("login", false)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.internalError(w, "find user", err)
		return
	}
	if err := store.CheckPassword(hash, req.Password); err != nil {
		if errors.Is(err, store.ErrUnauthorized) {
			s.metrics.authResult("login", false)
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.internalError(w, "check password", err)
		return
	}
	if err := s.setSession(w, u.ID, u.Email); err != nil {
		s.internalError(w, "issue session", err)
		return
	}
	s.metrics.authResult("login", true)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": u})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.clearSession(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.db.UserByID(r.Context(), userIDFrom(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		s.clearSession(w)
		writeError(w, http.StatusUnauthorized, "Login required")
		return
	}
	if err != nil {
		s.internalError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.db.Progress(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.internalError(w, "get progress", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

func (s *Server) postProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !s.decode(w, r, &req) {
		return
	}
	uid := userIDFrom(r.Context())
	err := s.db.RecordProgress(r.Context(), uid, req.ModuleID, catalog.Status(req.Status), req.Score)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Unknown module")
		return
	}
	if err != nil {
		s.internalError(w, "record progress", err)
		return
	}
	s.metrics.progress.WithLabelValues(req.Status).Inc()
	s.log.Debug("progress updated", "user_id", uid, "module", req.ModuleID, "status", req.Status)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Progress updated"})
}

// decode reads a JSON body into v and validates it, answering 400 on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "Invalid field: "+jsonFieldName(verrs[0].Field()))
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

func jsonFieldName(goName string) string {
	switch goName {
	case "ModuleID":
		return "module_id"
	default:
		return strings.ToLower(goName)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
