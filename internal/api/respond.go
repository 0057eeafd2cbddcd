package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"todo-planner/internal/service"
	"todo-planner/internal/validation"
)

const (
	maxBodyBytes      = 1 << 20
	headerDueAdjusted = "X-Due-Adjusted"
)

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

type tokenBody struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeError maps service errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		msg := "Validation error"
		if len(verr.Fields) == 1 {
			msg = verr.Fields[0].Message
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Message: msg, Errors: verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		msg := "User not found"
		if strings.HasPrefix(r.URL.Path, "/api/todos") {
			msg = "Todo not found"
		}
		writeMessage(w, http.StatusNotFound, msg)
	case errors.Is(err, service.ErrUserExists):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrUserNotRegistered):
		writeMessage(w, http.StatusBadRequest, "User Not Registered")
	case errors.Is(err, service.ErrInvalidPassword):
		writeMessage(w, http.StatusBadRequest, "Invalid password")
	case errors.Is(err, service.ErrGoogleAccount):
		writeMessage(w, http.StatusBadRequest, "This account uses Google sign-in")
	case errors.Is(err, service.ErrGoogleDisabled):
		writeMessage(w, http.StatusNotImplemented, "Google sign-in is not configured")
	case errors.Is(err, service.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	default:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// decode validates the body against schema before unmarshalling it into dst.
func (s *Server) decode(r *http.Request, schema validation.Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return validation.Fail("", "Could not read request body")
	}
	if err := s.validator.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return validation.Fail("", "Request body must be valid JSON")
	}
	return nil
}
