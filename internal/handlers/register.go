package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	applog "crunchpunch/internal/log"
)

const minPasswordLength = 8

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Register creates a USER account and signs it in.
func Register(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling register request", "method", r.Method)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "registration dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "registration not available")
		return
	}

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid register payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	username := strings.TrimSpace(payload.Username)
	email := strings.TrimSpace(payload.Email)
	if username == "" {
		writeJSONError(w, http.StatusBadRequest, "username is required")
		return
	}
	if email != "" && !strings.Contains(email, "@") {
		applog.Debug(r.Context(), "invalid register email", "email", email)
		writeJSONError(w, http.StatusBadRequest, "please provide a valid email address")
		return
	}
	if len(payload.Password) < minPasswordLength {
		applog.Debug(r.Context(), "password too short for registration", "length", len(payload.Password))
		writeJSONError(w, http.StatusBadRequest, "password must be at least 8 characters long")
		return
	}

	user, err := createUser(r, username, email, payload.Password)
	if err != nil {
		if errors.Is(err, errUsernameTaken) {
			applog.Debug(r.Context(), "registration attempted with existing username", "username", username)
			writeJSONError(w, http.StatusConflict, errUsernameTaken.Error())
			return
		}
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create account")
		return
	}

	applog.Debug(r.Context(), "user registered", "user", user.ExtID)
	respondWithToken(w, r, user, http.StatusCreated)
}
