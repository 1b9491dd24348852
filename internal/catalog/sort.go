package catalog

import (
	"sort"
	"strings"

	"crunchpunch/models"
)

// SortField names a sortable column of the food table.
type SortField string

const (
	SortName        SortField = "name"
	SortCategory    SortField = "category"
	SortSubcategory SortField = "subcategory"
	SortDescription SortField = "description"
)

// Direction is the ordering applied to the sort field. DirectionNone leaves
// the listing in its natural order.
type Direction string

const (
	DirectionNone Direction = ""
	Ascending     Direction = "asc"
	Descending    Direction = "desc"
)

// Sort is the current sort state of the food table.
type Sort struct {
	Field     SortField
	Direction Direction
}

// ParseSort builds a Sort from request values. Unknown fields or directions
// produce the unsorted state.
func ParseSort(field, direction string) Sort {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	switch f {
	case SortName, SortCategory, SortSubcategory, SortDescription:
	default:
		return Sort{}
	}
	switch d := Direction(strings.ToLower(strings.TrimSpace(direction))); d {
	case Ascending, Descending:
		return Sort{Field: f, Direction: d}
	}
	return Sort{}
}

// Active reports whether the listing is sorted.
func (s Sort) Active() bool {
	return s.Field != "" && s.Direction != DirectionNone
}

// Next returns the state after the user selects field: a new field starts
// ascending, then the same field flips to descending, then clears.
func (s Sort) Next(field SortField) Sort {
	if s.Field != field || !s.Active() {
		return Sort{Field: field, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return Sort{Field: field, Direction: Descending}
	}
	return Sort{}
}

// SortFoods returns a sorted copy of foods. Comparison is case-insensitive and
// ties keep their original order.
func SortFoods(foods []models.Food, s Sort) []models.Food {
	sorted := make([]models.Food, len(foods))
	copy(sorted, foods)
	if !s.Active() {
		return sorted
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a := strings.ToLower(sortValue(sorted[i], s.Field))
		b := strings.ToLower(sortValue(sorted[j], s.Field))
		if s.Direction == Descending {
			return a > b
		}
		return a < b
	})
	return sorted
}

func sortValue(food models.Food, field SortField) string {
	switch field {
	case SortName:
		return food.Name
	case SortCategory:
		return food.Category
	case SortSubcategory:
		return food.Subcategory
	case SortDescription:
		return food.Description
	}
	return ""
}
