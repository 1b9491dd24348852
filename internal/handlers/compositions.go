package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"crunchpunch/internal/composition"
	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

const totalPlaces = 2

// compositionLine is a stored ingredient with its food loaded.
type compositionLine struct {
	ExtID string
	Food  *models.Food
	Grams int
}

// storedComposition is implemented by models.Salad and models.Mixture.
type storedComposition interface {
	Lines() []composition.Line
	Foods() []models.Food
	OwnedBy(userExtID string) bool
}

// compositionRecord is the storage-neutral view of a salad or mixture. The
// embedded model answers for its lines, foods and ownership.
type compositionRecord struct {
	storedComposition
	ID          uint
	ExtID       string
	Name        string
	Description string
	UserExtID   *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Ingredients []compositionLine
}

// compositionDraft is a validated composition ready to be stored.
type compositionDraft struct {
	Name        string
	Description string
	Lines       []draftLine
}

type draftLine struct {
	Food  models.Food
	Grams int
}

// compositionStore persists one kind of composition.
type compositionStore interface {
	kind() composition.Kind
	list(ctx context.Context, owner *string) ([]compositionRecord, error)
	find(ctx context.Context, extID string) (compositionRecord, error)
	create(ctx context.Context, owner string, draft compositionDraft) (compositionRecord, error)
	replace(ctx context.Context, record compositionRecord, draft compositionDraft) (compositionRecord, error)
	deactivate(ctx context.Context, record compositionRecord) error
}

type ingredientRequest struct {
	FoodExtID string `json:"foodExtid"`
	Grams     int    `json:"grams"`
}

// compositionRequest accepts both payload shapes: salads send foodIngredients
// and mixtures send ingredients.
type compositionRequest struct {
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	FoodIngredients []ingredientRequest `json:"foodIngredients"`
	Ingredients     []ingredientRequest `json:"ingredients"`
}

func (p compositionRequest) linesFor(kind composition.Kind) []ingredientRequest {
	if kind == composition.KindSalad {
		return p.FoodIngredients
	}
	return p.Ingredients
}

type ingredientResponse struct {
	ExtID     string `json:"extid,omitempty"`
	FoodExtID string `json:"foodExtid"`
	FoodName  string `json:"foodName"`
	Grams     int    `json:"grams"`
}

type nutritionTotals struct {
	Calories     *float64 `json:"calories"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Fat          *float64 `json:"fat"`
	Protein      *float64 `json:"protein"`
	Sugar        *float64 `json:"sugar"`
	Fiber        *float64 `json:"fiber"`
	VitaminD     *float64 `json:"vitaminD"`
	VitaminE     *float64 `json:"vitaminE"`
}

type compositionTotals struct {
	TotalNutrition   *nutritionTotals             `json:"totalNutrition"`
	NutritionPer100g map[composition.Nutrient]int `json:"nutritionPer100g,omitempty"`
	TotalCrunch      *float64                     `json:"totalCrunch,omitempty"`
	TotalPunch       *float64                     `json:"totalPunch,omitempty"`
	TotalSweet       *float64                     `json:"totalSweet,omitempty"`
	TotalSavory      *float64                     `json:"totalSavory,omitempty"`
	TotalGrams       int                          `json:"totalGrams"`
}

type compositionResponse struct {
	ExtID           string               `json:"extid"`
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	UserExtID       *string              `json:"userExtid"`
	FoodIngredients []ingredientResponse `json:"foodIngredients,omitempty"`
	Ingredients     []ingredientResponse `json:"ingredients,omitempty"`
	compositionTotals
	CanEdit   bool      `json:"canEdit"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type previewResponse struct {
	Valid           bool   `json:"valid"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
	Index           *int   `json:"index,omitempty"`
	FoodExtID       string `json:"foodExtid,omitempty"`
	FoundationCount int    `json:"foundationCount"`
	compositionTotals
}

// SaladResource serves /api/salad.
func SaladResource(w http.ResponseWriter, r *http.Request) {
	serveComposition(w, r, saladStore{})
}

// MixtureResource serves /api/mixture.
func MixtureResource(w http.ResponseWriter, r *http.Request) {
	serveComposition(w, r, mixtureStore{})
}

func serveComposition(w http.ResponseWriter, r *http.Request, store compositionStore) {
	if !requireDatabase(w, r) {
		return
	}
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/"+string(store.kind()))
	switch len(segments) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			listCompositions(w, r, store, user, nil)
		case http.MethodPost:
			createComposition(w, r, store, user)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 1:
		if segments[0] == "preview" {
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			previewComposition(w, r, store)
			return
		}
		switch r.Method {
		case http.MethodGet:
			showComposition(w, r, store, user, segments[0])
		case http.MethodPut:
			updateComposition(w, r, store, user, segments[0])
		case http.MethodDelete:
			deleteComposition(w, r, store, user, segments[0])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 2:
		switch {
		case segments[0] == "user":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			owner := segments[1]
			listCompositions(w, r, store, user, &owner)
		case segments[1] == "copy":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			copyComposition(w, r, store, user, segments[0])
		default:
			http.NotFound(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}

func listCompositions(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser, owner *string) {
	ctx := r.Context()
	records, err := store.list(ctx, owner)
	if err != nil {
		applog.Error(ctx, "failed to list compositions", "error", err, "kind", store.kind())
		writeJSONError(w, http.StatusInternalServerError, "unable to load "+string(store.kind())+"s")
		return
	}

	responses := make([]compositionResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, projectComposition(store.kind(), record, user.ExtID))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showComposition(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser, extID string) {
	record, ok := loadComposition(w, r, store, extID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectComposition(store.kind(), record, user.ExtID))
}

func createComposition(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser) {
	ctx := r.Context()
	draft, ok := decodeDraft(w, r, store.kind())
	if !ok {
		return
	}

	record, err := store.create(ctx, user.ExtID, draft)
	if err != nil {
		applog.Error(ctx, "failed to create composition", "error", err, "kind", store.kind())
		writeJSONError(w, http.StatusInternalServerError, "unable to create "+string(store.kind()))
		return
	}
	applog.Info(ctx, "composition created", "kind", store.kind(), "extid", record.ExtID, "user", user.ExtID)
	writeJSON(w, http.StatusCreated, projectComposition(store.kind(), record, user.ExtID))
}

func updateComposition(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser, extID string) {
	ctx := r.Context()
	record, ok := loadOwnedComposition(w, r, store, user, extID)
	if !ok {
		return
	}
	draft, ok := decodeDraft(w, r, store.kind())
	if !ok {
		return
	}

	updated, err := store.replace(ctx, record, draft)
	if err != nil {
		applog.Error(ctx, "failed to update composition", "error", err, "kind", store.kind(), "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update "+string(store.kind()))
		return
	}
	writeJSON(w, http.StatusOK, projectComposition(store.kind(), updated, user.ExtID))
}

func deleteComposition(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser, extID string) {
	ctx := r.Context()
	record, ok := loadOwnedComposition(w, r, store, user, extID)
	if !ok {
		return
	}
	if err := store.deactivate(ctx, record); err != nil {
		applog.Error(ctx, "failed to deactivate composition", "error", err, "kind", store.kind(), "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete "+string(store.kind()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// copyComposition stores a clone of any visible composition under the caller.
func copyComposition(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser, extID string) {
	ctx := r.Context()
	source, ok := loadComposition(w, r, store, extID)
	if !ok {
		return
	}

	clone := composition.Clone(composition.Composition{
		Kind:        store.kind(),
		Name:        source.Name,
		Description: source.Description,
		Lines:       source.Lines(),
	})
	draft, result, err := buildDraft(ctx, store.kind(), clone.Name, clone.Description, clone.Lines)
	if err != nil {
		applog.Error(ctx, "failed to resolve foods for copy", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load foods")
		return
	}
	if !result.OK() {
		applog.Debug(ctx, "copy source no longer valid", "extid", extID, "code", result.Code)
		writeValidationError(w, result)
		return
	}

	record, err := store.create(ctx, user.ExtID, draft)
	if err != nil {
		applog.Error(ctx, "failed to store copy", "error", err, "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to copy "+string(store.kind()))
		return
	}
	applog.Info(ctx, "composition copied", "kind", store.kind(), "source", extID, "extid", record.ExtID, "user", user.ExtID)
	writeJSON(w, http.StatusCreated, projectComposition(store.kind(), record, user.ExtID))
}

// previewComposition validates and totals a payload without storing it.
func previewComposition(w http.ResponseWriter, r *http.Request, store compositionStore) {
	ctx := r.Context()
	var payload compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid preview payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	lines := requestLines(payload.linesFor(store.kind()))
	foods, err := loadFoodsByRef(ctx, lines)
	if err != nil {
		applog.Error(ctx, "failed to resolve foods for preview", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load foods")
		return
	}
	catalog := models.FoodCatalog(foods)
	result := composition.Validate(store.kind(), lines, catalog)

	response := previewResponse{
		Valid:             result.OK(),
		Code:              string(result.Code),
		FoodExtID:         result.FoodRef,
		FoundationCount:   result.FoundationCount,
		compositionTotals: totalsFor(store.kind(), lines, catalog),
	}
	if !result.OK() {
		response.Message = result.Message()
	}
	if result.Index >= 0 {
		index := result.Index
		response.Index = &index
	}
	writeJSON(w, http.StatusOK, response)
}

func loadComposition(w http.ResponseWriter, r *http.Request, store compositionStore, extID string) (compositionRecord, bool) {
	ctx := r.Context()
	record, err := store.find(ctx, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Debug(ctx, "composition not found", "kind", store.kind(), "extid", extID)
			http.NotFound(w, r)
			return compositionRecord{}, false
		}
		applog.Error(ctx, "failed to load composition", "error", err, "kind", store.kind(), "extid", extID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load "+string(store.kind()))
		return compositionRecord{}, false
	}
	return record, true
}

// loadOwnedComposition answers 404 for compositions the caller does not own.
func loadOwnedComposition(w http.ResponseWriter, r *http.Request, store compositionStore, user sessionUser, extID string) (compositionRecord, bool) {
	record, ok := loadComposition(w, r, store, extID)
	if !ok {
		return compositionRecord{}, false
	}
	if !record.OwnedBy(user.ExtID) {
		applog.Debug(r.Context(), "composition not owned by caller", "kind", store.kind(), "extid", extID, "user", user.ExtID)
		http.NotFound(w, r)
		return compositionRecord{}, false
	}
	return record, true
}

// decodeDraft reads a composition payload and writes a 400 response when it
// is malformed or breaks a composition rule.
func decodeDraft(w http.ResponseWriter, r *http.Request, kind composition.Kind) (compositionDraft, bool) {
	ctx := r.Context()
	var payload compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid composition payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return compositionDraft{}, false
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return compositionDraft{}, false
	}

	draft, result, err := buildDraft(ctx, kind, payload.Name, payload.Description, requestLines(payload.linesFor(kind)))
	if err != nil {
		applog.Error(ctx, "failed to resolve foods", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load foods")
		return compositionDraft{}, false
	}
	if !result.OK() {
		applog.Debug(ctx, "composition rejected", "kind", kind, "code", result.Code, "index", result.Index)
		writeValidationError(w, result)
		return compositionDraft{}, false
	}
	return draft, true
}

// buildDraft resolves lines against the active catalog and validates them.
func buildDraft(ctx context.Context, kind composition.Kind, name, description string, lines []composition.Line) (compositionDraft, composition.Result, error) {
	foods, err := loadFoodsByRef(ctx, lines)
	if err != nil {
		return compositionDraft{}, composition.Result{}, err
	}
	result := composition.Validate(kind, lines, models.FoodCatalog(foods))
	if !result.OK() {
		return compositionDraft{}, result, nil
	}

	byRef := make(map[string]models.Food, len(foods))
	for _, food := range foods {
		byRef[food.ExtID] = food
	}
	draft := compositionDraft{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Lines:       make([]draftLine, 0, len(lines)),
	}
	for _, line := range lines {
		draft.Lines = append(draft.Lines, draftLine{Food: byRef[line.FoodRef], Grams: line.Grams})
	}
	return draft, result, nil
}

func requestLines(items []ingredientRequest) []composition.Line {
	lines := make([]composition.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, composition.Line{FoodRef: strings.TrimSpace(item.FoodExtID), Grams: item.Grams})
	}
	return lines
}

// loadFoodsByRef returns the active foods referenced by lines.
func loadFoodsByRef(ctx context.Context, lines []composition.Line) ([]models.Food, error) {
	refs := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.FoodRef != "" {
			refs = append(refs, line.FoodRef)
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}

	var foods []models.Food
	err := database.WithContext(ctx).
		Preload("Nutrition").
		Where("ext_id IN ? AND active = ?", refs, true).
		Find(&foods).Error
	return foods, err
}

func projectComposition(kind composition.Kind, record compositionRecord, viewer string) compositionResponse {
	ingredients := make([]ingredientResponse, 0, len(record.Ingredients))
	for _, line := range record.Ingredients {
		item := ingredientResponse{ExtID: line.ExtID, Grams: line.Grams}
		if line.Food != nil {
			item.FoodExtID = line.Food.ExtID
			item.FoodName = line.Food.Name
		}
		ingredients = append(ingredients, item)
	}

	response := compositionResponse{
		ExtID:             record.ExtID,
		Name:              record.Name,
		Description:       record.Description,
		UserExtID:         record.UserExtID,
		compositionTotals: totalsFor(kind, record.Lines(), models.FoodCatalog(record.Foods())),
		CanEdit:           record.OwnedBy(viewer),
		Active:            record.Active,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
	if kind == composition.KindSalad {
		response.FoodIngredients = ingredients
	} else {
		response.Ingredients = ingredients
	}
	return response
}

// totalsFor aggregates lines for a response. Nutrition is nil for an empty
// composition and flavor totals are reported for salads only.
func totalsFor(kind composition.Kind, lines []composition.Line, catalog composition.Catalog) compositionTotals {
	totals := composition.Aggregate(lines, catalog)
	out := compositionTotals{TotalGrams: totals.Grams}
	if len(lines) > 0 {
		out.TotalNutrition = projectNutritionTotals(totals)
		out.NutritionPer100g = composition.PerHundred(totals)
	}
	if kind == composition.KindSalad {
		out.TotalCrunch = flavorTotal(totals, composition.Crunch)
		out.TotalPunch = flavorTotal(totals, composition.Punch)
		out.TotalSweet = flavorTotal(totals, composition.Sweet)
		out.TotalSavory = flavorTotal(totals, composition.Savory)
	}
	return out
}

func projectNutritionTotals(totals composition.Totals) *nutritionTotals {
	value := func(n composition.Nutrient) *float64 {
		if !totals.Has(n) {
			return nil
		}
		rounded := composition.Round(totals.Nutrition[n], totalPlaces)
		return &rounded
	}
	return &nutritionTotals{
		Calories:     value(composition.Calories),
		Carbohydrate: value(composition.Carbohydrate),
		Fat:          value(composition.Fat),
		Protein:      value(composition.Protein),
		Sugar:        value(composition.Sugar),
		Fiber:        value(composition.Fiber),
		VitaminD:     value(composition.VitaminD),
		VitaminE:     value(composition.VitaminE),
	}
}

func flavorTotal(totals composition.Totals, flavor composition.Flavor) *float64 {
	raw, ok := totals.Flavor[flavor]
	if !ok {
		return nil
	}
	value := composition.Round(raw, totalPlaces)
	return &value
}
