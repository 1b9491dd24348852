package models

import "crunchpunch/internal/composition"

// Salad is a named composition of foods. A nil UserExtID marks a system salad.
type Salad struct {
	Entity
	Name        string            `gorm:"not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	UserExtID   *string           `gorm:"index;size:36" json:"userExtid"`
	Ingredients []SaladIngredient `gorm:"foreignKey:SaladID" json:"ingredients"`
}

// SaladIngredient links a food and an amount in grams to a salad.
type SaladIngredient struct {
	Entity
	SaladID uint  `gorm:"not null;index" json:"-"`
	FoodID  uint  `gorm:"not null" json:"-"`
	Grams   int   `gorm:"not null" json:"grams"`
	Food    *Food `gorm:"foreignKey:FoodID" json:"food,omitempty"`
}

// Lines returns the ingredient lines referenced by food external id.
// Ingredients must be loaded with their Food.
func (s Salad) Lines() []composition.Line {
	lines := make([]composition.Line, 0, len(s.Ingredients))
	for _, ingredient := range s.Ingredients {
		lines = append(lines, composition.Line{FoodRef: foodRef(ingredient.Food), Grams: ingredient.Grams})
	}
	return lines
}

// Foods returns the loaded foods referenced by the ingredients.
func (s Salad) Foods() []Food {
	foods := make([]Food, 0, len(s.Ingredients))
	for _, ingredient := range s.Ingredients {
		if ingredient.Food != nil {
			foods = append(foods, *ingredient.Food)
		}
	}
	return foods
}

// OwnedBy reports whether the salad belongs to the user with the given external id.
func (s Salad) OwnedBy(userExtID string) bool {
	return ownedBy(s.UserExtID, userExtID)
}

func foodRef(food *Food) string {
	if food == nil {
		return ""
	}
	return food.ExtID
}

func ownedBy(owner *string, userExtID string) bool {
	return owner != nil && userExtID != "" && *owner == userExtID
}
