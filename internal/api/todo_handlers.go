package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"todo-planner/internal/planner"
	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

type dueCheckRequest struct {
	DueDate string `json:"dueDate"`
	DueTime string `json:"dueTime"`
}

type dueCheckResponse struct {
	DueDate     string `json:"dueDate"`
	DueTime     string `json:"dueTime"`
	WasAdjusted bool   `json:"wasAdjusted"`
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todos.List(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("filter"), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// handleGroupTodos answers null for any filter but upcoming.
func (s *Server) handleGroupTodos(w http.ResponseWriter, r *http.Request) {
	groups, err := s.todos.Groups(r.Context(), userIDFrom(r.Context()), r.URL.Query().Get("filter"), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleDueCheck(w http.ResponseWriter, r *http.Request) {
	var req dueCheckRequest
	if err := s.decode(r, validation.DueCheck, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	adj, err := s.todos.CheckDue(req.DueDate, req.DueTime, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dueCheckResponse{
		DueDate:     adj.Date.Format(planner.DateLayout),
		DueTime:     adj.Time,
		WasAdjusted: adj.WasAdjusted,
	})
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.Get(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req service.TodoInput
	if err := s.decode(r, validation.TodoCreate, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, adjusted, err := s.todos.Create(r.Context(), userIDFrom(r.Context()), req, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if adjusted {
		w.Header().Set(headerDueAdjusted, "true")
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	var req service.TodoPatch
	if err := s.decode(r, validation.TodoUpdate, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	todo, adjusted, err := s.todos.Update(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"), req, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if adjusted {
		w.Header().Set(headerDueAdjusted, "true")
	}
	writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.Delete(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Todo deleted successfully"})
}
