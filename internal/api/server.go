// Package api exposes the planner over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

// Options wires the handlers to their services.
type Options struct {
	Auth        *service.AuthService
	Profiles    *service.ProfileService
	Todos       *service.TodoService
	Validator   *validation.Validator
	Metrics     *Metrics
	Logger      *zap.Logger
	Location    *time.Location
	CORSOrigins []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	auth      *service.AuthService
	profiles  *service.ProfileService
	todos     *service.TodoService
	validator *validation.Validator
	metrics   *Metrics
	log       *zap.Logger
	loc       *time.Location
	origins   []string
	clock     func() time.Time
}

func NewServer(opts Options) *Server {
	s := &Server{
		auth:      opts.Auth,
		profiles:  opts.Profiles,
		todos:     opts.Todos,
		validator: opts.Validator,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		loc:       opts.Location,
		origins:   opts.CORSOrigins,
		clock:     opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// now is the current instant in the configured zone; calendar days are
// read there.
func (s *Server) now() time.Time {
	return s.clock().In(s.loc)
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders: []string{headerDueAdjusted},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleIndex)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/google", s.handleGoogle)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Get("/profile", s.handleGetProfile)
				r.Put("/profile", s.handleUpdateProfile)
				r.Put("/change-password", s.handleChangePassword)
			})
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/", s.handleListTodos)
			r.Post("/", s.handleCreateTodo)
			r.Get("/groups", s.handleGroupTodos)
			r.Post("/due-check", s.handleDueCheck)
			r.Get("/{id}", s.handleGetTodo)
			r.Put("/{id}", s.handleUpdateTodo)
			r.Delete("/{id}", s.handleDeleteTodo)
		})
	})
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageBody{Message: "API is working"})
}
