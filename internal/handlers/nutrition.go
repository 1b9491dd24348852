package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"crunchpunch/internal/catalog"
	"crunchpunch/internal/composition"
	appdb "crunchpunch/internal/db"
	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

type nutritionRequest struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Notes        string   `json:"notes"`
	Calories     *float64 `json:"calories"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Fat          *float64 `json:"fat"`
	Protein      *float64 `json:"protein"`
	Sugar        *float64 `json:"sugar"`
	Fiber        *float64 `json:"fiber"`
	VitaminD     *float64 `json:"vitaminD"`
	VitaminE     *float64 `json:"vitaminE"`
}

func (p nutritionRequest) values() map[composition.Nutrient]*float64 {
	return map[composition.Nutrient]*float64{
		composition.Calories:     p.Calories,
		composition.Carbohydrate: p.Carbohydrate,
		composition.Fat:          p.Fat,
		composition.Protein:      p.Protein,
		composition.Sugar:        p.Sugar,
		composition.Fiber:        p.Fiber,
		composition.VitaminD:     p.VitaminD,
		composition.VitaminE:     p.VitaminE,
	}
}

type nutritionResponse struct {
	ExtID        string   `json:"extid"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Calories     *float64 `json:"calories"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Fat          *float64 `json:"fat"`
	Protein      *float64 `json:"protein"`
	Sugar        *float64 `json:"sugar"`
	Fiber        *float64 `json:"fiber"`
	VitaminD     *float64 `json:"vitaminD"`
	VitaminE     *float64 `json:"vitaminE"`
	Active       bool     `json:"active"`
}

// NutritionResource serves the nutrient profiles foods reference.
func NutritionResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/nutrition")
	switch len(segments) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			listNutrition(w, r)
		case http.MethodPost:
			if requireAdmin(w, r, user) {
				createNutrition(w, r)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			showNutrition(w, r, segments[0])
		case http.MethodPut:
			if requireAdmin(w, r, user) {
				updateNutrition(w, r, segments[0])
			}
		case http.MethodDelete:
			if requireAdmin(w, r, user) {
				deleteNutrition(w, r, segments[0])
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func listNutrition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var records []models.Nutrition
	if err := database.WithContext(ctx).Where("active = ?", true).Order("name asc").Find(&records).Error; err != nil {
		applog.Error(ctx, "failed to list nutrition", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load nutrition")
		return
	}

	responses := make([]nutritionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, projectNutrition(record))
	}
	writeJSON(w, http.StatusOK, responses)
}

func findActiveNutrition(r *http.Request, extID string) (models.Nutrition, error) {
	var record models.Nutrition
	err := database.WithContext(r.Context()).
		Where("ext_id = ? AND active = ?", extID, true).
		First(&record).Error
	return record, err
}

func showNutrition(w http.ResponseWriter, r *http.Request, extID string) {
	record, err := findActiveNutrition(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(r.Context(), "failed to load nutrition", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load nutrition")
		return
	}
	writeJSON(w, http.StatusOK, projectNutrition(record))
}

func createNutrition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload nutritionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateNutritionPayload(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(payload.Name)
	if taken, err := columnTaken(r, &models.Nutrition{}, "name", name, 0); err != nil {
		applog.Error(ctx, "failed to check nutrition name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create nutrition")
		return
	} else if taken {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("nutrition %q already exists", name))
		return
	}

	code, status, err := resolveNutritionCode(r, payload, "", 0)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	record := models.Nutrition{
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(payload.Description),
		Notes:       strings.TrimSpace(payload.Notes),
	}
	for nutrient, value := range payload.values() {
		record.Set(nutrient, value)
	}
	if err := database.WithContext(ctx).Create(&record).Error; err != nil {
		applog.Error(ctx, "failed to create nutrition", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create nutrition")
		return
	}
	writeJSON(w, http.StatusCreated, projectNutrition(record))
}

func updateNutrition(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	existing, err := findActiveNutrition(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load nutrition for update", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load nutrition")
		return
	}

	var payload nutritionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateNutritionPayload(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(payload.Name)
	if taken, err := columnTaken(r, &models.Nutrition{}, "name", name, existing.ID); err != nil {
		applog.Error(ctx, "failed to check nutrition name", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to update nutrition")
		return
	} else if taken {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("nutrition %q already exists", name))
		return
	}

	code, status, err := resolveNutritionCode(r, payload, existing.Code, existing.ID)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}

	existing.Code = code
	existing.Name = name
	existing.Description = strings.TrimSpace(payload.Description)
	existing.Notes = strings.TrimSpace(payload.Notes)
	for nutrient, value := range payload.values() {
		existing.Set(nutrient, value)
	}
	if err := database.WithContext(ctx).Save(&existing).Error; err != nil {
		applog.Error(ctx, "failed to update nutrition", "error", err, "extid", extID)
		writeJSONError(w, http.StatusBadRequest, "unable to update nutrition")
		return
	}
	writeJSON(w, http.StatusOK, projectNutrition(existing))
}

func deleteNutrition(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	result := database.WithContext(ctx).
		Model(&models.Nutrition{}).
		Where("ext_id = ? AND active = ?", extID, true).
		Update("active", false)
	if result.Error != nil {
		applog.Error(ctx, "failed to deactivate nutrition", "error", result.Error, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete nutrition")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateNutritionPayload(payload nutritionRequest) error {
	if strings.TrimSpace(payload.Name) == "" {
		return errors.New("name is required")
	}
	for _, nutrient := range composition.Nutrients {
		if value := payload.values()[nutrient]; value != nil && *value < 0 {
			return fmt.Errorf("%s must not be negative", nutrient)
		}
	}
	return nil
}

func resolveNutritionCode(r *http.Request, payload nutritionRequest, current string, selfID uint) (string, int, error) {
	requested := strings.ToUpper(strings.TrimSpace(payload.Code))
	if requested == "" && current != "" {
		return current, 0, nil
	}
	if requested != "" {
		taken, err := columnTaken(r, &models.Nutrition{}, "code", requested, selfID)
		if err != nil {
			applog.Error(r.Context(), "failed to check nutrition code", "error", err)
			return "", http.StatusInternalServerError, errors.New("unable to check nutrition code")
		}
		if taken {
			return "", http.StatusConflict, fmt.Errorf("nutrition code %q already exists", requested)
		}
		return requested, 0, nil
	}

	code, err := catalog.GenerateCode(payload.Name, appdb.CodeExists(r.Context(), database, &models.Nutrition{}))
	if err != nil {
		if errors.Is(err, catalog.ErrCodeSource) {
			return "", http.StatusBadRequest, err
		}
		applog.Error(r.Context(), "failed to generate nutrition code", "error", err)
		return "", http.StatusInternalServerError, errors.New("unable to generate nutrition code")
	}
	return code, 0, nil
}

func projectNutrition(record models.Nutrition) nutritionResponse {
	return nutritionResponse{
		ExtID:        record.ExtID,
		Code:         record.Code,
		Name:         record.Name,
		Description:  record.Description,
		Notes:        record.Notes,
		Calories:     record.Calories,
		Carbohydrate: record.Carbohydrate,
		Fat:          record.Fat,
		Protein:      record.Protein,
		Sugar:        record.Sugar,
		Fiber:        record.Fiber,
		VitaminD:     record.VitaminD,
		VitaminE:     record.VitaminE,
		Active:       record.Active,
	}
}
