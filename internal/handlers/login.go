package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// Login exchanges a username and password for a bearer token.
func Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(r.Context(), "invalid login payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		applog.Debug(r.Context(), "login missing credentials", "usernamePresent", username != "", "passwordPresent", payload.Password != "")
		writeJSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := authenticate(r, username, payload.Password)
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			applog.Debug(r.Context(), "authentication failed", "username", username)
			writeJSONError(w, http.StatusUnauthorized, errInvalidCredentials.Error())
			return
		}
		applog.Error(r.Context(), "failed to load user during login", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	respondWithToken(w, r, user, http.StatusOK)
}

func respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}
	token, err := issueToken(r)
	if err != nil {
		applog.Error(r.Context(), "failed to commit session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Debug(r.Context(), "session issued", "user", user.ExtID)
	writeJSON(w, status, authResponse{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
		Role:     models.NormalizeRole(user.Role),
	})
}
