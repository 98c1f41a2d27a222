package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/heracleslabs/coachbot/internal/coaching"
	"github.com/heracleslabs/coachbot/internal/export"
	appmw "github.com/heracleslabs/coachbot/internal/http/middleware"
	"github.com/heracleslabs/coachbot/internal/jobs"
	"github.com/heracleslabs/coachbot/internal/models"
	"github.com/heracleslabs/coachbot/internal/store"
)

type coachingService interface {
	GeneratePlan(ctx context.Context, username string, req models.CoachingRequest) (*models.WorkoutRecord, error)
	CompleteWorkout(ctx context.Context, username string, id uuid.UUID) (bool, error)
	PinLatest(ctx context.Context, username string) error
	ListWorkouts(ctx context.Context, username string, goal *models.Goal) ([]models.WorkoutRecord, error)
	Progress(ctx context.Context, username string) (*coaching.Overview, error)
}

type accountStore interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	ChangePassword(ctx context.Context, username, newPassword string) error
	DeleteAccount(ctx context.Context, username string) error
}

type Server struct {
	Router    *chi.Mux
	Sess      *scs.SessionManager
	Svc       coachingService
	Users     accountStore
	Exporter  export.Exporter
	RedisAddr string
	Log       zerolog.Logger
}

type ServerOptions struct {
	Sess      *scs.SessionManager
	Svc       coachingService
	Users     accountStore
	Exporter  export.Exporter
	RedisAddr string
	Log       zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:    r,
		Sess:      opts.Sess,
		Svc:       opts.Svc,
		Users:     opts.Users,
		Exporter:  opts.Exporter,
		RedisAddr: opts.RedisAddr,
		Log:       opts.Log,
	}
	if s.Exporter == nil {
		s.Exporter = export.TextExporter{}
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			s.Log.Error().Err(err).Msg("write health check response")
		}
	})

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(s.sessionToContext)
		pr.Use(appmw.RequireAuth)
		pr.Post("/workouts/generate", s.handleGenerate)
		pr.Post("/workouts/regenerate", s.handleRegenerate)
		pr.Post("/workouts/pin", s.handlePin)
		pr.Post("/workouts/{workoutID}/complete", s.handleComplete)
		pr.Get("/workouts/{workoutID}/export", s.handleExport)
		pr.Get("/workouts", s.handleListWorkouts)
		pr.Get("/progress", s.handleProgress)
		pr.Post("/account/password", s.handleChangePassword)
		pr.Delete("/account", s.handleDeleteAccount)
	})

	return s
}

func (s *Server) sessionToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := s.Sess.GetString(r.Context(), "username"); name != "" {
			r = r.WithContext(context.WithValue(r.Context(), appmw.UserKey, name))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.Users.Register(r.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		s.respondError(w, http.StatusConflict, "username already taken")
		return
	case errors.Is(err, store.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, "username and password required")
		return
	case err != nil:
		s.Log.Error().Err(err).Str("user", creds.Username).Msg("registration failed")
		s.respondError(w, http.StatusInternalServerError, "could not register")
		return
	}

	s.Sess.Put(r.Context(), "username", user.Username)
	s.respondJSON(w, http.StatusCreated, map[string]string{"username": user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.Users.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.Log.Error().Err(err).Str("user", creds.Username).Msg("login failed")
		s.respondError(w, http.StatusInternalServerError, "could not log in")
		return
	}

	s.Sess.Put(r.Context(), "username", user.Username)
	s.respondJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Sess.Destroy(r.Context()); err != nil {
		s.Log.Error().Err(err).Msg("destroy session")
	}
	w.WriteHeader(http.StatusNoContent)
}

type planRequest struct {
	Sport       string  `json:"sport"`
	Position    string  `json:"position"`
	Injury      string  `json:"injury"`
	Goal        string  `json:"goal"`
	Diet        string  `json:"diet"`
	Intensity   string  `json:"intensity"`
	Difficulty  string  `json:"difficulty"`
	Temperature float64 `json:"temperature"`
}

func (p planRequest) toModel() models.CoachingRequest {
	return models.CoachingRequest{
		Sport:       p.Sport,
		Position:    p.Position,
		Injury:      p.Injury,
		Goal:        p.Goal,
		Diet:        p.Diet,
		Intensity:   p.Intensity,
		Difficulty:  p.Difficulty,
		Temperature: p.Temperature,
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.Svc.GeneratePlan(r.Context(), username, req.toModel())
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			s.respondError(w, http.StatusBadRequest, "sport, position and goal are required")
			return
		}
		// Cause is already logged by the service; the user gets a retry hint.
		s.respondError(w, http.StatusBadGateway, "something went wrong while generating the plan, please try again")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: s.RedisAddr})
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.Log.Error().Err(closeErr).Msg("close asynq client")
		}
	}()

	payload, err := json.Marshal(jobs.GeneratePlanPayload{
		Username:    username,
		Sport:       req.Sport,
		Position:    req.Position,
		Injury:      req.Injury,
		Goal:        req.Goal,
		Diet:        req.Diet,
		Intensity:   req.Intensity,
		Difficulty:  req.Difficulty,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "could not queue regeneration")
		return
	}

	task := asynq.NewTask(jobs.TaskGeneratePlan, payload)
	info, err := client.Enqueue(task,
		asynq.Queue("generate"),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		s.Log.Error().Err(err).Str("user", username).Msg("enqueue regeneration failed")
		s.respondError(w, http.StatusInternalServerError, "could not queue regeneration")
		return
	}

	s.Log.Info().Str("user", username).Str("task", info.ID).Msg("regeneration queued")
	s.respondJSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	id, err := uuid.Parse(chi.URLParam(r, "workoutID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid workout ID")
		return
	}

	completedNow, err := s.Svc.CompleteWorkout(r.Context(), username, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "workout not found")
			return
		}
		s.Log.Error().Err(err).Str("user", username).Str("workout", id.String()).Msg("complete workout failed")
		s.respondError(w, http.StatusInternalServerError, "could not complete workout")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"completed_now": completedNow})
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	if err := s.Svc.PinLatest(r.Context(), username); err != nil {
		if errors.Is(err, store.ErrNoWorkouts) {
			s.respondError(w, http.StatusNotFound, "no workouts to pin")
			return
		}
		s.Log.Error().Err(err).Str("user", username).Msg("pin workout failed")
		s.respondError(w, http.StatusInternalServerError, "could not pin workout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	var goal *models.Goal
	if raw := r.URL.Query().Get("goal"); raw != "" {
		g := models.Goal(raw)
		if !g.Valid() {
			s.respondError(w, http.StatusBadRequest, "unknown goal filter")
			return
		}
		goal = &g
	}

	records, err := s.Svc.ListWorkouts(r.Context(), username, goal)
	if err != nil {
		s.Log.Error().Err(err).Str("user", username).Msg("list workouts failed")
		s.respondError(w, http.StatusInternalServerError, "could not load workouts")
		return
	}
	if records == nil {
		records = []models.WorkoutRecord{}
	}

	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	overview, err := s.Svc.Progress(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "account not found")
			return
		}
		s.Log.Error().Err(err).Str("user", username).Msg("load progress failed")
		s.respondError(w, http.StatusInternalServerError, "could not load progress")
		return
	}

	s.respondJSON(w, http.StatusOK, overview)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	id, err := uuid.Parse(chi.URLParam(r, "workoutID"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid workout ID")
		return
	}

	records, err := s.Svc.ListWorkouts(r.Context(), username, nil)
	if err != nil {
		s.Log.Error().Err(err).Str("user", username).Msg("load workout for export failed")
		s.respondError(w, http.StatusInternalServerError, "could not export workout")
		return
	}

	for _, rec := range records {
		if rec.ID != id {
			continue
		}
		title := fmt.Sprintf("%s plan for %s", rec.Goal, username)
		filename, data, err := s.Exporter.Export(title, rec.Content)
		if err != nil {
			s.Log.Error().Err(err).Str("workout", id.String()).Msg("export failed")
			s.respondError(w, http.StatusInternalServerError, "could not export workout")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if _, err := w.Write(data); err != nil {
			s.Log.Error().Err(err).Msg("write export response")
		}
		return
	}

	s.respondError(w, http.StatusNotFound, "workout not found")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	var body struct {
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := s.Users.ChangePassword(r.Context(), username, body.NewPassword)
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, "new password required")
		return
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "account not found")
		return
	case err != nil:
		s.Log.Error().Err(err).Str("user", username).Msg("change password failed")
		s.respondError(w, http.StatusInternalServerError, "could not change password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	username := appmw.Username(r)

	if err := s.Users.DeleteAccount(r.Context(), username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "account not found")
			return
		}
		s.Log.Error().Err(err).Str("user", username).Msg("delete account failed")
		s.respondError(w, http.StatusInternalServerError, "could not delete account")
		return
	}

	if err := s.Sess.Destroy(r.Context()); err != nil {
		s.Log.Error().Err(err).Msg("destroy session")
	}
	w.WriteHeader(http.StatusNoContent)
}
