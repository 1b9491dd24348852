package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserExtIDKey     = "auth:user:extid"
	sessionUserNameKey      = "auth:user:name"
	sessionUserRoleKey      = "auth:user:role"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
)

var (
	errInvalidCredentials = errors.New("invalid username or password")
	errUsernameTaken      = errors.New("username already exists")
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
}

// sessionUser is the caller identity stored in the session.
type sessionUser struct {
	ID       uint
	ExtID    string
	Username string
	Role     string
}

func (u sessionUser) isAdmin() bool {
	return u.Role == models.RoleAdmin
}

func createUser(r *http.Request, username, email, password string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	if _, err := findUserByUsername(r, username); err == nil {
		return nil, errUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashed),
		Role:         models.RoleUser,
	}

	if err := database.WithContext(r.Context()).Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

func findUserByUsername(r *http.Request, username string) (*models.User, error) {
	if database == nil {
		return nil, gorm.ErrInvalidDB
	}

	user := &models.User{}
	err := database.WithContext(r.Context()).
		Where("lower(username) = ? AND active = ?", strings.ToLower(strings.TrimSpace(username)), true).
		First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// authenticate verifies the provided credentials and returns the matching user.
func authenticate(r *http.Request, username, password string) (*models.User, error) {
	user, err := findUserByUsername(r, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return user, nil
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserExtIDKey, user.ExtID)
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Username)
	sessionManager.Put(r.Context(), sessionUserRoleKey, models.NormalizeRole(user.Role))
	return nil
}

// issueToken persists the session and returns its token. The token doubles as
// the bearer credential for API clients and as the cookie value the session
// middleware writes for browsers.
func issueToken(r *http.Request) (string, error) {
	token, _, err := sessionManager.Commit(r.Context())
	return token, err
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	if sessionManager == nil {
		return false
	}
	return sessionManager.GetBool(r.Context(), sessionAuthenticatedKey) && sessionManager.GetInt(r.Context(), sessionUserIDKey) > 0
}

func currentUser(r *http.Request) (sessionUser, bool) {
	if !ActiveSession(r) {
		return sessionUser{}, false
	}
	ctx := r.Context()
	user := sessionUser{
		ID:       uint(sessionManager.GetInt(ctx, sessionUserIDKey)),
		ExtID:    sessionManager.GetString(ctx, sessionUserExtIDKey),
		Username: sessionManager.GetString(ctx, sessionUserNameKey),
		Role:     models.NormalizeRole(sessionManager.GetString(ctx, sessionUserRoleKey)),
	}
	if user.ExtID == "" {
		return sessionUser{}, false
	}
	return user, true
}

// requireUser writes a 401 response and returns false when the request has no
// authenticated session.
func requireUser(w http.ResponseWriter, r *http.Request) (sessionUser, bool) {
	user, ok := currentUser(r)
	if !ok {
		applog.Debug(r.Context(), "request without authenticated user", "path", r.URL.Path)
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return sessionUser{}, false
	}
	return user, true
}

// requireAdmin writes a 403 response and returns false when the caller may
// not manage the food catalog.
func requireAdmin(w http.ResponseWriter, r *http.Request, user sessionUser) bool {
	if !user.isAdmin() {
		applog.Debug(r.Context(), "catalog mutation denied", "user", user.ExtID, "role", user.Role)
		writeJSONError(w, http.StatusForbidden, "administrator role required")
		return false
	}
	return true
}

// requireDatabase writes a 503 response when storage is not configured.
func requireDatabase(w http.ResponseWriter, r *http.Request) bool {
	if database == nil {
		applog.Debug(r.Context(), "request without database", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}

// Logout destroys the current session, revoking its bearer token.
func Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
			writeJSONError(w, http.StatusInternalServerError, "unable to sign out")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
