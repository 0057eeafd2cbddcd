package api

import (
	"net/http"

	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Credential string `json:"credential"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := s.decode(r, validation.Register, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.auth.Register(r.Context(), req, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenBody{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, validation.Login, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.auth.Login(r.Context(), req.Email, req.Password, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody{Token: token})
}

func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := s.decode(r, validation.Google, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.auth.LoginWithGoogle(r.Context(), req.Credential, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenBody{Token: token})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.profiles.Get(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if err := s.decode(r, validation.Profile, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.profiles.Update(r.Context(), userIDFrom(r.Context()), req, s.loc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req service.PasswordChange
	if err := s.decode(r, validation.PasswordChange, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.profiles.ChangePassword(r.Context(), userIDFrom(r.Context()), req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Password updated successfully"})
}
