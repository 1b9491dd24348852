package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"crunchpunch/internal/catalog"
	appdb "crunchpunch/internal/db"
	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

const (
	minFlavorRating = 1
	maxFlavorRating = 5
)

type foodRequest struct {
	Code                string `json:"code"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	Subcategory         string `json:"subcategory"`
	Description         string `json:"description"`
	Notes               string `json:"notes"`
	Foundation          bool   `json:"foundation"`
	Mixable             bool   `json:"mixable"`
	Crunch              *int   `json:"crunch"`
	Punch               *int   `json:"punch"`
	Sweet               *int   `json:"sweet"`
	Savory              *int   `json:"savory"`
	NutritionExtID      string `json:"nutritionExtid"`
	TypicalServingGrams *int   `json:"typicalServingGrams"`
}

type foodResponse struct {
	ExtID               string             `json:"extid"`
	Code                string             `json:"code"`
	Name                string             `json:"name"`
	Category            string             `json:"category,omitempty"`
	Subcategory         string             `json:"subcategory,omitempty"`
	Description         string             `json:"description,omitempty"`
	Notes               string             `json:"notes,omitempty"`
	Foundation          bool               `json:"foundation"`
	Mixable             bool               `json:"mixable"`
	Crunch              *int               `json:"crunch,omitempty"`
	Punch               *int               `json:"punch,omitempty"`
	Sweet               *int               `json:"sweet,omitempty"`
	Savory              *int               `json:"savory,omitempty"`
	Nutrition           *nutritionResponse `json:"nutrition,omitempty"`
	TypicalServingGrams *int               `json:"typicalServingGrams,omitempty"`
	Active              bool               `json:"active"`
}

// FoodResource handles REST-style interactions for the food catalog. Reads are
// open to any signed-in user; mutations require the ADMIN role.
func FoodResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/food")
	switch len(segments) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			listFoods(w, r)
		case http.MethodPost:
			if requireAdmin(w, r, user) {
				createFood(w, r)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 1:
		extID := segments[0]
		switch r.Method {
		case http.MethodGet:
			showFood(w, r, extID)
		case http.MethodPut:
			if requireAdmin(w, r, user) {
				updateFood(w, r, extID)
			}
		case http.MethodDelete:
			if requireAdmin(w, r, user) {
				deleteFood(w, r, extID)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func listFoods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	foods, err := loadActiveFoods(r)
	if err != nil {
		applog.Error(ctx, "failed to list foods", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load foods")
		return
	}

	filters := catalog.FoodFiltersFromRequest(r)
	order := catalog.ParseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("dir"))
	foods = catalog.SortFoods(catalog.FilterFoods(foods, filters), order)

	responses := make([]foodResponse, 0, len(foods))
	for _, food := range foods {
		responses = append(responses, projectFood(food))
	}
	writeJSON(w, http.StatusOK, responses)
}

func loadActiveFoods(r *http.Request) ([]models.Food, error) {
	var foods []models.Food
	err := database.WithContext(r.Context()).
		Preload("Nutrition").
		Where("active = ?", true).
		Order("name asc").
		Find(&foods).Error
	return foods, err
}

func findActiveFood(r *http.Request, extID string) (models.Food, error) {
	var food models.Food
	err := database.WithContext(r.Context()).
		Preload("Nutrition").
		Where("ext_id = ? AND active = ?", extID, true).
		First(&food).Error
	return food, err
}

func showFood(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	food, err := findActiveFood(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(ctx, "food not found", "extid", extID)
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load food", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load food")
		return
	}
	writeJSON(w, http.StatusOK, projectFood(food))
}

func createFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload foodRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid food create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateFoodPayload(payload); err != nil {
		applog.Debug(ctx, "food validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(payload.Name)
	if taken, err := columnTaken(r, &models.Food{}, "name", name, 0); err != nil {
		applog.Error(ctx, "failed to check food name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create food")
		return
	} else if taken {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("food %q already exists", name))
		return
	}

	code, status, err := resolveFoodCode(r, payload, "", 0)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}
	nutritionID, status, err := resolveNutritionID(r, payload.NutritionExtID)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	food := models.Food{
		Code:                code,
		Name:                name,
		Category:            strings.TrimSpace(payload.Category),
		Subcategory:         strings.TrimSpace(payload.Subcategory),
		Description:         strings.TrimSpace(payload.Description),
		Notes:               strings.TrimSpace(payload.Notes),
		Foundation:          payload.Foundation,
		Mixable:             payload.Mixable,
		Crunch:              payload.Crunch,
		Punch:               payload.Punch,
		Sweet:               payload.Sweet,
		Savory:              payload.Savory,
		TypicalServingGrams: payload.TypicalServingGrams,
		NutritionID:         nutritionID,
	}
	if err := database.WithContext(ctx).Create(&food).Error; err != nil {
		applog.Error(ctx, "failed to create food", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create food")
		return
	}

	created, err := findActiveFood(r, food.ExtID)
	if err != nil {
		applog.Error(ctx, "failed to reload created food", "error", err, "extid", food.ExtID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load food")
		return
	}
	writeJSON(w, http.StatusCreated, projectFood(created))
}

func updateFood(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	existing, err := findActiveFood(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load food for update", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load food")
		return
	}

	var payload foodRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid food update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateFoodPayload(payload); err != nil {
		applog.Debug(ctx, "food update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(payload.Name)
	if taken, err := columnTaken(r, &models.Food{}, "name", name, existing.ID); err != nil {
		applog.Error(ctx, "failed to check food name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update food")
		return
	} else if taken {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("food %q already exists", name))
		return
	}

	code, status, err := resolveFoodCode(r, payload, existing.Code, existing.ID)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}
	nutritionID, status, err := resolveNutritionID(r, payload.NutritionExtID)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	updates := map[string]any{
		"code":                  code,
		"name":                  name,
		"category":              strings.TrimSpace(payload.Category),
		"subcategory":           strings.TrimSpace(payload.Subcategory),
		"description":           strings.TrimSpace(payload.Description),
		"notes":                 strings.TrimSpace(payload.Notes),
		"foundation":            payload.Foundation,
		"mixable":               payload.Mixable,
		"crunch":                payload.Crunch,
		"punch":                 payload.Punch,
		"sweet":                 payload.Sweet,
		"savory":                payload.Savory,
		"typical_serving_grams": payload.TypicalServingGrams,
		"nutrition_id":          nutritionID,
	}
	if err := database.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update food", "error", err, "extid", extID)
		writeJSONError(w, http.StatusBadRequest, "unable to update food")
		return
	}

	updated, err := findActiveFood(r, extID)
	if err != nil {
		applog.Error(ctx, "failed to reload updated food", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load food")
		return
	}
	writeJSON(w, http.StatusOK, projectFood(updated))
}

func deleteFood(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	result := database.WithContext(ctx).
		Model(&models.Food{}).
		Where("ext_id = ? AND active = ?", extID, true).
		Update("active", false)
	if result.Error != nil {
		applog.Error(ctx, "failed to deactivate food", "error", result.Error, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete food")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateFoodPayload(payload foodRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}
	ratings := []struct {
		label string
		value *int
	}{
		{"crunch", payload.Crunch},
		{"punch", payload.Punch},
		{"sweet", payload.Sweet},
		{"savory", payload.Savory},
	}
	for _, rating := range ratings {
		if rating.value != nil && (*rating.value < minFlavorRating || *rating.value > maxFlavorRating) {
			return fmt.Errorf("%s must be between %d and %d", rating.label, minFlavorRating, maxFlavorRating)
		}
	}
	if payload.TypicalServingGrams != nil && *payload.TypicalServingGrams < 1 {
		return errors.New("typicalServingGrams must be at least 1")
	}
	return nil
}

// resolveFoodCode returns the requested code, the current code when none is
// requested on update, or a generated one. The status accompanies any error.
func resolveFoodCode(r *http.Request, payload foodRequest, current string, selfID uint) (string, int, error) {
	requested := strings.ToUpper(strings.TrimSpace(payload.Code))
	if requested == "" && current != "" {
		return current, 0, nil
	}
	if requested != "" {
		taken, err := columnTaken(r, &models.Food{}, "code", requested, selfID)
		if err != nil {
			applog.Error(r.Context(), "failed to check food code", "error", err)
			return "", http.StatusInternalServerError, errors.New("unable to check food code")
		}
		if taken {
			return "", http.StatusConflict, fmt.Errorf("food code %q already exists", requested)
		}
		return requested, 0, nil
	}

	exists := appdb.CodeExists(r.Context(), database, &models.Food{})
	var (
		code string
		err  error
	)
	if strings.TrimSpace(payload.Category) != "" && strings.TrimSpace(payload.Subcategory) != "" {
		code, err = catalog.GenerateFoodCode(payload.Name, payload.Category, payload.Subcategory, exists)
	} else {
		code, err = catalog.GenerateCode(payload.Name, exists)
	}
	if err != nil {
		if errors.Is(err, catalog.ErrCodeSource) {
			return "", http.StatusBadRequest, err
		}
		applog.Error(r.Context(), "failed to generate food code", "error", err)
		return "", http.StatusInternalServerError, errors.New("unable to generate food code")
	}
	return code, 0, nil
}

func resolveNutritionID(r *http.Request, extID string) (*uint, int, error) {
	extID = strings.TrimSpace(extID)
	if extID == "" {
		return nil, 0, nil
	}
	nutrition, err := findActiveNutrition(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusBadRequest, fmt.Errorf("nutrition %q not found", extID)
		}
		applog.Error(r.Context(), "failed to load nutrition for food", "error", err, "extid", extID)
		return nil, http.StatusInternalServerError, errors.New("unable to load nutrition")
	}
	return &nutrition.ID, 0, nil
}

// columnTaken reports whether another row of model already uses value in
// column, compared case-insensitively.
func columnTaken(r *http.Request, model any, column, value string, selfID uint) (bool, error) {
	var count int64
	query := database.WithContext(r.Context()).
		Model(model).
		Where(fmt.Sprintf("lower(%s) = ?", column), strings.ToLower(value))
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func projectFood(food models.Food) foodResponse {
	response := foodResponse{
		ExtID:               food.ExtID,
		Code:                food.Code,
		Name:                food.Name,
		Category:            food.Category,
		Subcategory:         food.Subcategory,
		Description:         food.Description,
		Notes:               food.Notes,
		Foundation:          food.Foundation,
		Mixable:             food.Mixable,
		Crunch:              food.Crunch,
		Punch:               food.Punch,
		Sweet:               food.Sweet,
		Savory:              food.Savory,
		TypicalServingGrams: food.TypicalServingGrams,
		Active:              food.Active,
	}
	if food.Nutrition != nil {
		nutrition := projectNutrition(*food.Nutrition)
		response.Nutrition = &nutrition
	}
	return response
}
