package models

import "crunchpunch/internal/composition"

// Food is a catalog entry that can be used as an ingredient. Flavor scalars
// range from 1 to 5 per 100 g; nil means unrated.
type Food struct {
	Entity
	Code                string     `gorm:"uniqueIndex;not null" json:"code"`
	Name                string     `gorm:"uniqueIndex;not null" json:"name"`
	Category            string     `gorm:"index" json:"category"`
	Subcategory         string     `json:"subcategory"`
	Description         string     `gorm:"type:text" json:"description"`
	Notes               string     `gorm:"type:text" json:"notes"`
	Foundation          bool       `gorm:"not null;default:false" json:"foundation"`
	Mixable             bool       `gorm:"not null;default:false" json:"mixable"`
	Crunch              *int       `json:"crunch"`
	Punch               *int       `json:"punch"`
	Sweet               *int       `json:"sweet"`
	Savory              *int       `json:"savory"`
	TypicalServingGrams *int       `json:"typicalServingGrams"`
	NutritionID         *uint      `json:"-"`
	Nutrition           *Nutrition `gorm:"foreignKey:NutritionID" json:"nutrition,omitempty"`
}

// Flavor returns the rated flavor scalars keyed by name.
func (f Food) Flavor() map[composition.Flavor]float64 {
	values := make(map[composition.Flavor]float64)
	for flavor, field := range map[composition.Flavor]*int{
		composition.Crunch: f.Crunch,
		composition.Punch:  f.Punch,
		composition.Sweet:  f.Sweet,
		composition.Savory: f.Savory,
	} {
		if field != nil {
			values[flavor] = float64(*field)
		}
	}
	return values
}

// Facts projects the food onto what the composition engine needs. The
// external id is the reference used by ingredient lines.
func (f Food) Facts() composition.FoodFacts {
	facts := composition.FoodFacts{
		Ref:        f.ExtID,
		Name:       f.Name,
		Foundation: f.Foundation,
		Mixable:    f.Mixable,
		Flavor:     f.Flavor(),
	}
	if f.Nutrition != nil {
		facts.Nutrition = f.Nutrition.Values()
	}
	return facts
}

// FoodCatalog indexes foods by external id for the composition engine.
func FoodCatalog(foods []Food) composition.CatalogMap {
	facts := make([]composition.FoodFacts, 0, len(foods))
	for _, food := range foods {
		facts = append(facts, food.Facts())
	}
	return composition.NewCatalog(facts...)
}
