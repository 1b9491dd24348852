package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"crunchpunch/internal/catalog"
	appdb "crunchpunch/internal/db"
	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

const (
	maxCompanyCodeLength        = 16
	maxCompanyNameLength        = 32
	maxCompanyDescriptionLength = 255
)

// companyRequest fields are pointers so updates can tell omitted from blank.
type companyRequest struct {
	Code        *string `json:"code"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (p companyRequest) empty() bool {
	return p.Code == nil && p.Name == nil && p.Description == nil
}

type companyResponse struct {
	ExtID       string `json:"extid"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyResource serves the supplier directory. Reads need a session,
// writes need an admin.
func CompanyResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/company")
	switch len(segments) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			listCompanies(w, r)
		case http.MethodPost:
			if requireAdmin(w, r, user) {
				createCompany(w, r)
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			showCompany(w, r, segments[0])
		case http.MethodPut, http.MethodPatch:
			if requireAdmin(w, r, user) {
				updateCompany(w, r, segments[0])
			}
		case http.MethodDelete:
			if requireAdmin(w, r, user) {
				deleteCompany(w, r, segments[0])
			}
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func listCompanies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var records []models.Company
	if err := database.WithContext(ctx).Where("active = ?", true).Order("name asc").Find(&records).Error; err != nil {
		applog.Error(ctx, "failed to list companies", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load companies")
		return
	}

	responses := make([]companyResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, projectCompany(record))
	}
	writeJSON(w, http.StatusOK, responses)
}

func findActiveCompany(r *http.Request, extID string) (models.Company, error) {
	var record models.Company
	err := database.WithContext(r.Context()).
		Where("ext_id = ? AND active = ?", extID, true).
		First(&record).Error
	return record, err
}

func showCompany(w http.ResponseWriter, r *http.Request, extID string) {
	record, err := findActiveCompany(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(r.Context(), "failed to load company", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load company")
		return
	}
	writeJSON(w, http.StatusOK, projectCompany(record))
}

func createCompany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload companyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := validateCompanyPayload(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	record := models.Company{Name: strings.TrimSpace(*payload.Name)}
	if payload.Description != nil {
		record.Description = strings.TrimSpace(*payload.Description)
	}
	if status, err := checkCompanyName(r, record.Name, 0); err != nil {
		writeJSONError(w, status, err.Error())
		return
	}
	code, status, err := resolveCompanyCode(r, payload, record.Name, "", 0)
	if err != nil {
		writeJSONError(w, status, err.Error())
		return
	}
	record.Code = code

	if err := database.WithContext(ctx).Create(&record).Error; err != nil {
		applog.Error(ctx, "failed to create company", "error", err)
		writeJSONError(w, http.StatusBadRequest, "unable to create company")
		return
	}
	writeJSON(w, http.StatusCreated, projectCompany(record))
}

// updateCompany applies only the fields present in the payload.
func updateCompany(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	existing, err := findActiveCompany(r, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load company for update", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load company")
		return
	}

	var payload companyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.empty() {
		writeJSONError(w, http.StatusBadRequest, "at least one field must be provided")
		return
	}
	if err := validateCompanyPayload(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			writeJSONError(w, http.StatusBadRequest, "name must not be blank")
			return
		}
		if status, err := checkCompanyName(r, name, existing.ID); err != nil {
			writeJSONError(w, status, err.Error())
			return
		}
		existing.Name = name
	}
	if payload.Description != nil {
		existing.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Code != nil {
		code, status, err := resolveCompanyCode(r, payload, existing.Name, existing.Code, existing.ID)
		if err != nil {
			writeJSONError(w, status, err.Error())
			return
		}
		existing.Code = code
	}

	if err := database.WithContext(ctx).Save(&existing).Error; err != nil {
		applog.Error(ctx, "failed to update company", "error", err, "extid", extID)
		writeJSONError(w, http.StatusBadRequest, "unable to update company")
		return
	}
	writeJSON(w, http.StatusOK, projectCompany(existing))
}

func deleteCompany(w http.ResponseWriter, r *http.Request, extID string) {
	ctx := r.Context()
	result := database.WithContext(ctx).
		Model(&models.Company{}).
		Where("ext_id = ? AND active = ?", extID, true).
		Update("active", false)
	if result.Error != nil {
		applog.Error(ctx, "failed to deactivate company", "error", result.Error, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete company")
		return
	}
	if result.RowsAffected == 0 {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateCompanyPayload(payload companyRequest) error {
	limits := []struct {
		label string
		value *string
		max   int
	}{
		{"code", payload.Code, maxCompanyCodeLength},
		{"name", payload.Name, maxCompanyNameLength},
		{"description", payload.Description, maxCompanyDescriptionLength},
	}
	for _, limit := range limits {
		if limit.value != nil && utf8.RuneCountInString(strings.TrimSpace(*limit.value)) > limit.max {
			return fmt.Errorf("%s must be at most %d characters", limit.label, limit.max)
		}
	}
	return nil
}

func checkCompanyName(r *http.Request, name string, selfID uint) (int, error) {
	taken, err := columnTaken(r, &models.Company{}, "name", name, selfID)
	if err != nil {
		applog.Error(r.Context(), "failed to check company name", "error", err)
		return http.StatusInternalServerError, errors.New("unable to check company name")
	}
	if taken {
		return http.StatusConflict, fmt.Errorf("company %q already exists", name)
	}
	return 0, nil
}

// resolveCompanyCode returns the requested code, the current one when a blank
// code is sent on update, or a code generated from name.
func resolveCompanyCode(r *http.Request, payload companyRequest, name, current string, selfID uint) (string, int, error) {
	var requested string
	if payload.Code != nil {
		requested = strings.ToUpper(strings.TrimSpace(*payload.Code))
	}
	if requested == "" && current != "" {
		return current, 0, nil
	}
	if requested != "" {
		taken, err := columnTaken(r, &models.Company{}, "code", requested, selfID)
		if err != nil {
			applog.Error(r.Context(), "failed to check company code", "error", err)
			return "", http.StatusInternalServerError, errors.New("unable to check company code")
		}
		if taken {
			return "", http.StatusConflict, fmt.Errorf("company code %q already exists", requested)
		}
		return requested, 0, nil
	}

	code, err := catalog.GenerateCode(name, appdb.CodeExists(r.Context(), database, &models.Company{}))
	if err != nil {
		if errors.Is(err, catalog.ErrCodeSource) {
			return "", http.StatusBadRequest, err
		}
		applog.Error(r.Context(), "failed to generate company code", "error", err)
		return "", http.StatusInternalServerError, errors.New("unable to generate company code")
	}
	return code, 0, nil
}

func projectCompany(record models.Company) companyResponse {
	return companyResponse{
		ExtID:       record.ExtID,
		Code:        record.Code,
		Name:        record.Name,
		Description: record.Description,
	}
}
