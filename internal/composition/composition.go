// Package composition validates and totals salads and mixtures built from
// (food, grams) ingredient lines. Everything here is pure: callers pass in the
// lines and a catalog snapshot and get back a result computed from scratch.
package composition

import "strings"

// Kind identifies the composition rules that apply to a set of lines.
type Kind string

const (
	KindSalad   Kind = "salad"
	KindMixture Kind = "mixture"
)

// ParseKind normalises user input into a Kind. Unknown values return false.
func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindSalad:
		return KindSalad, true
	case KindMixture:
		return KindMixture, true
	}
	return "", false
}

// Nutrient names a field of a nutrition profile. Values are stored per 100 g.
type Nutrient string

const (
	Calories     Nutrient = "calories"
	Carbohydrate Nutrient = "carbohydrate"
	Fat          Nutrient = "fat"
	Protein      Nutrient = "protein"
	Sugar        Nutrient = "sugar"
	Fiber        Nutrient = "fiber"
	VitaminD     Nutrient = "vitaminD"
	VitaminE     Nutrient = "vitaminE"
)

// Nutrients lists every nutrient in display order.
var Nutrients = []Nutrient{Calories, Carbohydrate, Fat, Protein, Sugar, Fiber, VitaminD, VitaminE}

// Flavor names one of the flat flavor scalars carried by a food.
type Flavor string

const (
	Crunch Flavor = "crunch"
	Punch  Flavor = "punch"
	Sweet  Flavor = "sweet"
	Savory Flavor = "savory"
)

// Flavors lists every flavor scalar in display order.
var Flavors = []Flavor{Crunch, Punch, Sweet, Savory}

// Line is a single ingredient: a food reference and a gram amount.
type Line struct {
	FoodRef string
	Grams   int
}

// FoodFacts is the subset of a catalog food the engine needs.
// Missing keys in Nutrition or Flavor mean the value is absent, not zero.
type FoodFacts struct {
	Ref        string
	Name       string
	Foundation bool
	Mixable    bool
	Nutrition  map[Nutrient]float64
	Flavor     map[Flavor]float64
}

// Catalog resolves food references.
type Catalog interface {
	Lookup(ref string) (FoodFacts, bool)
}

// CatalogMap is a Catalog keyed by food reference.
type CatalogMap map[string]FoodFacts

// Lookup implements Catalog. A nil map resolves nothing.
func (c CatalogMap) Lookup(ref string) (FoodFacts, bool) {
	if c == nil {
		return FoodFacts{}, false
	}
	facts, ok := c[ref]
	return facts, ok
}

// NewCatalog indexes the supplied facts by reference. Later entries win.
func NewCatalog(foods ...FoodFacts) CatalogMap {
	catalog := make(CatalogMap, len(foods))
	for _, food := range foods {
		catalog[food.Ref] = food
	}
	return catalog
}

func lookup(catalog Catalog, ref string) (FoodFacts, bool) {
	if catalog == nil || strings.TrimSpace(ref) == "" {
		return FoodFacts{}, false
	}
	return catalog.Lookup(ref)
}

// Composition is an unsaved salad or mixture: a name and its lines.
type Composition struct {
	Kind        Kind
	Name        string
	Description string
	Lines       []Line
}
