package client

import (
	"time"

	"crunchpunch/internal/composition"
)

// Session is the body returned by login and register.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// Health mirrors GET /healthz.
type Health struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// NutrientValues are per-100g amounts; nil means unknown.
type NutrientValues struct {
	Calories     *float64 `json:"calories"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Fat          *float64 `json:"fat"`
	Protein      *float64 `json:"protein"`
	Sugar        *float64 `json:"sugar"`
	Fiber        *float64 `json:"fiber"`
	VitaminD     *float64 `json:"vitaminD"`
	VitaminE     *float64 `json:"vitaminE"`
}

// Map returns the known values keyed by nutrient.
func (v NutrientValues) Map() map[composition.Nutrient]float64 {
	values := make(map[composition.Nutrient]float64)
	for nutrient, field := range map[composition.Nutrient]*float64{
		composition.Calories:     v.Calories,
		composition.Carbohydrate: v.Carbohydrate,
		composition.Fat:          v.Fat,
		composition.Protein:      v.Protein,
		composition.Sugar:        v.Sugar,
		composition.Fiber:        v.Fiber,
		composition.VitaminD:     v.VitaminD,
		composition.VitaminE:     v.VitaminE,
	} {
		if field != nil {
			values[nutrient] = *field
		}
	}
	return values
}

// Nutrition is a nutrient profile.
type Nutrition struct {
	ExtID       string `json:"extid,omitempty"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	NutrientValues
	Active bool `json:"active,omitempty"`
}

// Food is a catalog entry.
type Food struct {
	ExtID               string     `json:"extid"`
	Code                string     `json:"code"`
	Name                string     `json:"name"`
	Category            string     `json:"category,omitempty"`
	Subcategory         string     `json:"subcategory,omitempty"`
	Description         string     `json:"description,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	Foundation          bool       `json:"foundation"`
	Mixable             bool       `json:"mixable"`
	Crunch              *int       `json:"crunch,omitempty"`
	Punch               *int       `json:"punch,omitempty"`
	Sweet               *int       `json:"sweet,omitempty"`
	Savory              *int       `json:"savory,omitempty"`
	Nutrition           *Nutrition `json:"nutrition,omitempty"`
	TypicalServingGrams *int       `json:"typicalServingGrams,omitempty"`
	Active              bool       `json:"active"`
}

// Facts projects the food onto the composition engine's view of it.
func (f Food) Facts() composition.FoodFacts {
	facts := composition.FoodFacts{
		Ref:        f.ExtID,
		Name:       f.Name,
		Foundation: f.Foundation,
		Mixable:    f.Mixable,
		Flavor:     map[composition.Flavor]float64{},
	}
	for flavor, value := range map[composition.Flavor]*int{
		composition.Crunch: f.Crunch,
		composition.Punch:  f.Punch,
		composition.Sweet:  f.Sweet,
		composition.Savory: f.Savory,
	} {
		if value != nil {
			facts.Flavor[flavor] = float64(*value)
		}
	}
	if f.Nutrition != nil {
		facts.Nutrition = f.Nutrition.Map()
	}
	return facts
}

// Catalog indexes foods by external id for local validation.
func Catalog(foods []Food) composition.CatalogMap {
	facts := make([]composition.FoodFacts, 0, len(foods))
	for _, food := range foods {
		facts = append(facts, food.Facts())
	}
	return composition.NewCatalog(facts...)
}

// FoodInput is the body for creating or updating a food.
type FoodInput struct {
	Code                string `json:"code,omitempty"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	Subcategory         string `json:"subcategory"`
	Description         string `json:"description,omitempty"`
	Notes               string `json:"notes,omitempty"`
	Foundation          bool   `json:"foundation"`
	Mixable             bool   `json:"mixable"`
	Crunch              *int   `json:"crunch,omitempty"`
	Punch               *int   `json:"punch,omitempty"`
	Sweet               *int   `json:"sweet,omitempty"`
	Savory              *int   `json:"savory,omitempty"`
	NutritionExtID      string `json:"nutritionExtid,omitempty"`
	TypicalServingGrams *int   `json:"typicalServingGrams,omitempty"`
}

// Company is an entry in the supplier directory.
type Company struct {
	ExtID       string `json:"extid"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CompanyInput is the body for creating or patching a company. Nil fields
// are left unchanged on update.
type CompanyInput struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Ingredient is one line of a stored composition.
type Ingredient struct {
	ExtID     string `json:"extid,omitempty"`
	FoodExtID string `json:"foodExtid"`
	FoodName  string `json:"foodName,omitempty"`
	Grams     int    `json:"grams"`
}

// Totals are the server-computed aggregates of a composition.
type Totals struct {
	TotalNutrition   *NutrientValues              `json:"totalNutrition"`
	NutritionPer100g map[composition.Nutrient]int `json:"nutritionPer100g,omitempty"`
	TotalCrunch      *float64                     `json:"totalCrunch,omitempty"`
	TotalPunch       *float64                     `json:"totalPunch,omitempty"`
	TotalSweet       *float64                     `json:"totalSweet,omitempty"`
	TotalSavory      *float64                     `json:"totalSavory,omitempty"`
	TotalGrams       int                          `json:"totalGrams"`
}

// Composition is a stored salad or mixture. Salads carry their lines in
// FoodIngredients and mixtures in Ingredients.
type Composition struct {
	ExtID           string       `json:"extid"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	UserExtID       *string      `json:"userExtid"`
	FoodIngredients []Ingredient `json:"foodIngredients,omitempty"`
	Ingredients     []Ingredient `json:"ingredients,omitempty"`
	Totals
	CanEdit   bool      `json:"canEdit"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lines returns the ingredient lines of the given kind.
func (c Composition) Lines(kind composition.Kind) []composition.Line {
	source := c.Ingredients
	if kind == composition.KindSalad {
		source = c.FoodIngredients
	}
	lines := make([]composition.Line, 0, len(source))
	for _, ingredient := range source {
		lines = append(lines, composition.Line{FoodRef: ingredient.FoodExtID, Grams: ingredient.Grams})
	}
	return lines
}

// Draft converts a stored composition back into an editable draft.
func (c Composition) Draft(kind composition.Kind) composition.Composition {
	return composition.Composition{
		Kind:        kind,
		Name:        c.Name,
		Description: c.Description,
		Lines:       c.Lines(kind),
	}
}

// Preview is the server's validation verdict with totals.
type Preview struct {
	Valid           bool   `json:"valid"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
	Index           *int   `json:"index,omitempty"`
	FoodExtID       string `json:"foodExtid,omitempty"`
	FoundationCount int    `json:"foundationCount"`
	Totals
}

type compositionBody struct {
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	FoodIngredients []Ingredient `json:"foodIngredients,omitempty"`
	Ingredients     []Ingredient `json:"ingredients,omitempty"`
}

func bodyFor(draft composition.Composition) compositionBody {
	lines := make([]Ingredient, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		lines = append(lines, Ingredient{FoodExtID: line.FoodRef, Grams: line.Grams})
	}
	body := compositionBody{Name: draft.Name, Description: draft.Description}
	if draft.Kind == composition.KindSalad {
		body.FoodIngredients = lines
	} else {
		body.Ingredients = lines
	}
	return body
}
