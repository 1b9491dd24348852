package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "crunchpunch/internal/db"
	"crunchpunch/internal/db/mock"
	"crunchpunch/models"
)

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	dsn := fmt.Sprintf("file:handlers-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := appdb.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	database = db
	return db, func() {
		database = original
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// withMockDatabase installs the seeded catalog used by the composition tests.
func withMockDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("failed to open mock database: %v", err)
	}
	database = db
	return db, func() {
		database = original
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func loadSession(t *testing.T, sm *scs.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return req.WithContext(ctx)
}

func authenticateRequest(t *testing.T, sm *scs.SessionManager, req *http.Request, user models.User) *http.Request {
	t.Helper()
	req = loadSession(t, sm, req)
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	sm.Put(req.Context(), sessionUserIDKey, int(user.ID))
	sm.Put(req.Context(), sessionUserExtIDKey, user.ExtID)
	sm.Put(req.Context(), sessionUserNameKey, user.Username)
	sm.Put(req.Context(), sessionUserRoleKey, user.Role)
	return req
}

func mustFindUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		t.Fatalf("failed to load user %s: %v", username, err)
	}
	return user
}

func TestActiveSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ActiveSession(req) {
		t.Fatal("expected inactive session when manager is nil")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = loadSession(t, sm, req)
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	sm.Put(req.Context(), sessionUserIDKey, 42)

	if !ActiveSession(req) {
		t.Fatal("expected active session when flags are set")
	}
}

func TestCurrentUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := currentUser(req); ok {
		t.Fatal("expected currentUser to fail without session manager")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = loadSession(t, sm, req)
	if _, ok := currentUser(req); ok {
		t.Fatal("expected false when no user is stored")
	}

	req = authenticateRequest(t, sm, req, models.User{
		Entity:   models.Entity{ExtID: "user-7"},
		Username: "seven",
		Role:     "admin",
	})
	sm.Put(req.Context(), sessionUserIDKey, 7)
	user, ok := currentUser(req)
	if !ok || user.ID != 7 || user.ExtID != "user-7" {
		t.Fatalf("unexpected current user %+v (ok=%t)", user, ok)
	}
	if !user.isAdmin() {
		t.Fatalf("expected normalised admin role, got %q", user.Role)
	}
}

func TestEstablishSession(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := loadSession(t, sm, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	user := &models.User{Username: "User", Role: models.RoleUser}
	user.ID = 3
	user.ExtID = "ext-3"
	if err := establishSession(req, user); err != nil {
		t.Fatalf("establishSession returned error: %v", err)
	}

	if !sm.GetBool(req.Context(), sessionAuthenticatedKey) {
		t.Fatal("expected session to be marked authenticated")
	}
	if got := sm.GetInt(req.Context(), sessionUserIDKey); got != 3 {
		t.Fatalf("expected session user id 3, got %d", got)
	}
	if got := sm.GetString(req.Context(), sessionUserExtIDKey); got != "ext-3" {
		t.Fatalf("unexpected extid %q", got)
	}
	if got := sm.GetString(req.Context(), sessionUserRoleKey); got != models.RoleUser {
		t.Fatalf("unexpected role %q", got)
	}
}

func TestEstablishSessionWithoutManager(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	if err := establishSession(req, &models.User{}); err == nil {
		t.Fatal("expected error when session manager is nil")
	}
}

func TestCreateUser(t *testing.T) {
	db, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	user, err := createUser(req, "  Grace  ", "Grace@Example.com", "password123")
	if err != nil {
		t.Fatalf("createUser returned error: %v", err)
	}
	if user.Username != "Grace" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.Email != "grace@example.com" {
		t.Fatalf("expected email to be lowercased, got %q", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected USER role, got %q", user.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("password hash does not match original: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "Grace").Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("expected user persisted, count=%d err=%v", count, err)
	}

	if _, err := createUser(req, "grace", "", "password456"); !errors.Is(err, errUsernameTaken) {
		t.Fatalf("expected errUsernameTaken for case-insensitive duplicate, got %v", err)
	}
}

func TestCreateUserWithoutDatabase(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	if _, err := createUser(req, "user", "", "password"); !errors.Is(err, gorm.ErrInvalidDB) {
		t.Fatalf("expected ErrInvalidDB, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	_, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	if _, err := authenticate(req, "nobody", "password123"); !errors.Is(err, errInvalidCredentials) {
		t.Fatalf("expected invalid credentials for missing user, got %v", err)
	}
	if _, err := createUser(req, "user", "", "password123"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	user, err := authenticate(req, "USER", "password123")
	if err != nil {
		t.Fatalf("expected authentication to succeed: %v", err)
	}
	if user.Username != "user" {
		t.Fatalf("unexpected user %q", user.Username)
	}
	if _, err := authenticate(req, "user", "wrong"); !errors.Is(err, errInvalidCredentials) {
		t.Fatalf("expected invalid credentials for bad password, got %v", err)
	}
}

func TestRequireGuards(t *testing.T) {
	w := httptest.NewRecorder()
	if requireDatabase(w, httptest.NewRequest(http.MethodGet, "/api/food", nil)) {
		t.Fatal("expected requireDatabase to fail without a database")
	}
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	if _, ok := requireUser(w, httptest.NewRequest(http.MethodGet, "/api/food", nil)); ok {
		t.Fatal("expected requireUser to fail without a session")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	if requireAdmin(w, httptest.NewRequest(http.MethodPost, "/api/food", nil), sessionUser{Role: models.RoleUser}) {
		t.Fatal("expected requireAdmin to reject a USER")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if !requireAdmin(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/food", nil), sessionUser{Role: models.RoleAdmin}) {
		t.Fatal("expected requireAdmin to accept an ADMIN")
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), models.User{
		Entity:   models.Entity{ExtID: "ext"},
		Username: "user",
	})
	sm.Put(req.Context(), sessionUserIDKey, 1)
	w := httptest.NewRecorder()
	Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if ActiveSession(req) {
		t.Fatal("expected session to be cleared after logout")
	}

	w = httptest.NewRecorder()
	Logout(w, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", w.Code)
	}
}
