// Package catalog builds the food table view: filtering, fuzzy search,
// column sorting and code generation for new catalog entries.
package catalog

import (
	"net/http"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"crunchpunch/models"
)

// MixableFilter narrows a food listing by the mixable flag.
type MixableFilter string

const (
	MixableAll      MixableFilter = "all"
	MixableOnly     MixableFilter = "mixable"
	MixableExcluded MixableFilter = "non-mixable"
)

// ParseMixableFilter maps request input onto a filter, defaulting to MixableAll.
func ParseMixableFilter(value string) MixableFilter {
	switch MixableFilter(strings.ToLower(strings.TrimSpace(value))) {
	case MixableOnly, "true":
		return MixableOnly
	case MixableExcluded, "false":
		return MixableExcluded
	}
	return MixableAll
}

// FoodFilters capture the client-driven state for food lookups.
type FoodFilters struct {
	Query          string
	Mixable        MixableFilter
	FoundationOnly bool
	Category       string
}

// FoodFiltersFromRequest extracts filter inputs from an HTTP request.
func FoodFiltersFromRequest(r *http.Request) FoodFilters {
	filters := FoodFilters{Mixable: MixableAll}
	if err := r.ParseForm(); err != nil {
		return filters
	}
	filters.Query = strings.TrimSpace(r.FormValue("q"))
	filters.Mixable = ParseMixableFilter(r.FormValue("mixable"))
	filters.FoundationOnly = isTruthy(r.FormValue("foundation"))
	filters.Category = strings.TrimSpace(r.FormValue("category"))
	return filters
}

// Match reports whether a single food passes every filter.
func (f FoodFilters) Match(food models.Food) bool {
	switch f.Mixable {
	case MixableOnly:
		if !food.Mixable {
			return false
		}
	case MixableExcluded:
		if food.Mixable {
			return false
		}
	}
	if f.FoundationOnly && !food.Foundation {
		return false
	}
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(food.Category), f.Category) {
		return false
	}
	if f.Query == "" {
		return true
	}
	query := strings.ToLower(f.Query)
	return matchFuzzy(query, food.Name) || matchFuzzy(query, food.Code) || matchFuzzy(query, food.Category)
}

// FilterFoods applies the provided filters to a list of foods.
func FilterFoods(all []models.Food, filters FoodFilters) []models.Food {
	filtered := make([]models.Food, 0, len(all))
	for _, food := range all {
		if filters.Match(food) {
			filtered = append(filtered, food)
		}
	}
	return filtered
}

// Categories returns the distinct non-empty categories in alphabetical order.
func Categories(foods []models.Food) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, food := range foods {
		category := strings.TrimSpace(food.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func matchFuzzy(query, value string) bool {
	if value == "" {
		return false
	}
	return fuzzy.MatchNormalized(query, strings.ToLower(value))
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on", "foundation":
		return true
	}
	return false
}
