package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crunchpunch/internal/db/mock"
	"crunchpunch/models"
)

func decodeFoods(t *testing.T, w *httptest.ResponseRecorder) []foodResponse {
	t.Helper()
	var foods []foodResponse
	if err := json.Unmarshal(w.Body.Bytes(), &foods); err != nil {
		t.Fatalf("failed to decode foods: %v", err)
	}
	return foods
}

func TestFoodListFiltersAndSorts(t *testing.T) {
	db, dbCleanup := withMockDatabase(t)
	t.Cleanup(dbCleanup)
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	demo := mustFindUser(t, db, mock.DemoUsername)

	tests := []struct {
		name  string
		query string
		check func(t *testing.T, foods []foodResponse)
	}{
		{"all", "", func(t *testing.T, foods []foodResponse) {
			if len(foods) != 13 {
				t.Fatalf("expected 13 foods, got %d", len(foods))
			}
			if foods[0].Nutrition == nil {
				t.Fatalf("expected nutrition to be preloaded: %+v", foods[0])
			}
		}},
		{"mixable", "?mixable=mixable", func(t *testing.T, foods []foodResponse) {
			if len(foods) != 5 {
				t.Fatalf("expected 5 mixable foods, got %d", len(foods))
			}
			for _, food := range foods {
				if !food.Mixable {
					t.Fatalf("unexpected non-mixable food %s", food.Name)
				}
			}
		}},
		{"foundation", "?foundation=true", func(t *testing.T, foods []foodResponse) {
			if len(foods) != 3 {
				t.Fatalf("expected 3 foundation foods, got %d", len(foods))
			}
		}},
		{"sorted desc", "?sort=name&dir=desc", func(t *testing.T, foods []foodResponse) {
			if foods[0].Name != "Walnut" || foods[len(foods)-1].Name != "Almond" {
				t.Fatalf("unexpected order: first %s last %s", foods[0].Name, foods[len(foods)-1].Name)
			}
		}},
		{"fuzzy query", "?q=wal", func(t *testing.T, foods []foodResponse) {
			found := false
			for _, food := range foods {
				found = found || food.Name == "Walnut"
			}
			if !found {
				t.Fatalf("expected walnut in fuzzy results: %+v", foods)
			}
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/food"+tt.query, nil), demo)
			w := httptest.NewRecorder()
			FoodResource(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			tt.check(t, decodeFoods(t, w))
		})
	}
}

func TestFoodRequiresSession(t *testing.T) {
	_, dbCleanup := withMockDatabase(t)
	t.Cleanup(dbCleanup)
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)

	w := httptest.NewRecorder()
	FoodResource(w, loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/food", nil)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestFoodMutationsRequireAdmin(t *testing.T) {
	db, dbCleanup := withMockDatabase(t)
	t.Cleanup(dbCleanup)
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	demo := mustFindUser(t, db, mock.DemoUsername)

	var walnut models.Food
	if err := db.Where("name = ?", "Walnut").First(&walnut).Error; err != nil {
		t.Fatalf("failed to load walnut: %v", err)
	}

	requests := []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/food", strings.NewReader(`{"name":"Kale"}`)),
		httptest.NewRequest(http.MethodPut, "/api/food/"+walnut.ExtID, strings.NewReader(`{"name":"Walnut"}`)),
		httptest.NewRequest(http.MethodDelete, "/api/food/"+walnut.ExtID, nil),
	}
	for _, req := range requests {
		w := httptest.NewRecorder()
		FoodResource(w, authenticateRequest(t, sm, req, demo))
		if w.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", req.Method, w.Code)
		}
	}
}

func TestFoodAdminCRUD(t *testing.T) {
	db, dbCleanup := withMockDatabase(t)
	t.Cleanup(dbCleanup)
	sm, smCleanup := withTestSessionManager(t)
	t.Cleanup(smCleanup)
	admin := mustFindUser(t, db, mock.AdminUsername)

	var nutrition models.Nutrition
	if err := db.Where("name = ?", "Baby Spinach").First(&nutrition).Error; err != nil {
		t.Fatalf("failed to load nutrition: %v", err)
	}

	crunch := 4
	payload := foodRequest{
		Name:           "Kale",
		Category:       "Vegetable",
		Subcategory:    "Leaf",
		Foundation:     true,
		Crunch:         &crunch,
		NutritionExtID: nutrition.ExtID,
	}
	body, _ := json.Marshal(payload)
	req := authenticateRequest(t, sm, httptest.NewRequest(http.MethodPost, "/api/food", bytes.NewReader(body)), admin)
	w := httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created foodResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created food: %v", err)
	}
	if created.Code != "KALE-VEGE-LEAF" {
		t.Fatalf("expected generated code KALE-VEGE-LEAF, got %q", created.Code)
	}
	if created.Nutrition == nil || created.Nutrition.ExtID != nutrition.ExtID {
		t.Fatalf("expected nutrition link, got %+v", created.Nutrition)
	}

	// duplicate names conflict regardless of case
	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodPost, "/api/food", strings.NewReader(`{"name":"kale"}`)), admin)
	w = httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", w.Code)
	}

	// flavor ratings are bounded
	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodPut, "/api/food/"+created.ExtID, strings.NewReader(`{"name":"Kale","crunch":6}`)), admin)
	w = httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range crunch, got %d", w.Code)
	}

	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodPut, "/api/food/"+created.ExtID, strings.NewReader(`{"name":"Curly Kale","mixable":true}`)), admin)
	w = httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for update, got %d: %s", w.Code, w.Body.String())
	}
	var updated foodResponse
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode updated food: %v", err)
	}
	if updated.Name != "Curly Kale" || !updated.Mixable || updated.Crunch != nil || updated.Nutrition != nil {
		t.Fatalf("expected full replacement of fields, got %+v", updated)
	}
	if updated.Code != created.Code {
		t.Fatalf("expected code to be kept, got %q", updated.Code)
	}

	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodDelete, "/api/food/"+created.ExtID, nil), admin)
	w = httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/food/"+created.ExtID, nil), admin)
	w = httptest.NewRecorder()
	FoodResource(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after soft delete, got %d", w.Code)
	}

	var stored models.Food
	if err := db.Where("ext_id = ?", created.ExtID).First(&stored).Error; err != nil {
		t.Fatalf("expected soft-deleted food to remain stored: %v", err)
	}
	if stored.Active {
		t.Fatal("expected stored food to be inactive")
	}
}

func TestValidateFoodPayloadReportsFirstRatingInOrder(t *testing.T) {
	t.Parallel()

	high, low, ok := 9, 0, 3
	tests := []struct {
		name    string
		payload foodRequest
		want    string
	}{
		{name: "all out of range", payload: foodRequest{Name: "x", Crunch: &high, Punch: &low, Sweet: &high, Savory: &low}, want: "crunch must be between 1 and 5"},
		{name: "later ratings out of range", payload: foodRequest{Name: "x", Crunch: &ok, Punch: &ok, Sweet: &low, Savory: &high}, want: "sweet must be between 1 and 5"},
		{name: "savory only", payload: foodRequest{Name: "x", Savory: &high}, want: "savory must be between 1 and 5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for i := 0; i < 20; i++ {
				err := validateFoodPayload(tt.payload)
				if err == nil || err.Error() != tt.want {
					t.Fatalf("validateFoodPayload() = %v, want %q", err, tt.want)
				}
			}
		})
	}
}
