package models

import "crunchpunch/internal/composition"

// Nutrition is a named nutrient profile. Values are per 100 g; a nil column
// means the value is unknown rather than zero.
type Nutrition struct {
	Entity
	Code         string   `gorm:"uniqueIndex;not null" json:"code"`
	Name         string   `gorm:"uniqueIndex;not null" json:"name"`
	Description  string   `gorm:"type:text" json:"description"`
	Notes        string   `gorm:"type:text" json:"notes"`
	Calories     *float64 `json:"calories"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Fat          *float64 `json:"fat"`
	Protein      *float64 `json:"protein"`
	Sugar        *float64 `json:"sugar"`
	Fiber        *float64 `json:"fiber"`
	VitaminD     *float64 `json:"vitaminD"`
	VitaminE     *float64 `json:"vitaminE"`
}

// Values returns the present nutrients keyed by name.
func (n Nutrition) Values() map[composition.Nutrient]float64 {
	values := make(map[composition.Nutrient]float64)
	for nutrient, field := range n.fields() {
		if field != nil {
			values[nutrient] = *field
		}
	}
	return values
}

// Set stores value under nutrient. Unknown nutrients are ignored.
func (n *Nutrition) Set(nutrient composition.Nutrient, value *float64) {
	switch nutrient {
	case composition.Calories:
		n.Calories = value
	case composition.Carbohydrate:
		n.Carbohydrate = value
	case composition.Fat:
		n.Fat = value
	case composition.Protein:
		n.Protein = value
	case composition.Sugar:
		n.Sugar = value
	case composition.Fiber:
		n.Fiber = value
	case composition.VitaminD:
		n.VitaminD = value
	case composition.VitaminE:
		n.VitaminE = value
	}
}

func (n Nutrition) fields() map[composition.Nutrient]*float64 {
	return map[composition.Nutrient]*float64{
		composition.Calories:     n.Calories,
		composition.Carbohydrate: n.Carbohydrate,
		composition.Fat:          n.Fat,
		composition.Protein:      n.Protein,
		composition.Sugar:        n.Sugar,
		composition.Fiber:        n.Fiber,
		composition.VitaminD:     n.VitaminD,
		composition.VitaminE:     n.VitaminE,
	}
}
