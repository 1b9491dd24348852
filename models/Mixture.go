package models

import "crunchpunch/internal/composition"

// Mixture is a named composition of mixable foods. A nil UserExtID marks a
// system mixture.
type Mixture struct {
	Entity
	Name        string              `gorm:"not null" json:"name"`
	Description string              `gorm:"type:text" json:"description"`
	UserExtID   *string             `gorm:"index;size:36" json:"userExtid"`
	Ingredients []MixtureIngredient `gorm:"foreignKey:MixtureID" json:"ingredients"`
}

// MixtureIngredient links a food and an amount in grams to a mixture.
type MixtureIngredient struct {
	Entity
	MixtureID uint  `gorm:"not null;index" json:"-"`
	FoodID    uint  `gorm:"not null" json:"-"`
	Grams     int   `gorm:"not null" json:"grams"`
	Food      *Food `gorm:"foreignKey:FoodID" json:"food,omitempty"`
}

// Lines returns the ingredient lines referenced by food external id.
func (m Mixture) Lines() []composition.Line {
	lines := make([]composition.Line, 0, len(m.Ingredients))
	for _, ingredient := range m.Ingredients {
		lines = append(lines, composition.Line{FoodRef: foodRef(ingredient.Food), Grams: ingredient.Grams})
	}
	return lines
}

// Foods returns the loaded foods referenced by the ingredients.
func (m Mixture) Foods() []Food {
	foods := make([]Food, 0, len(m.Ingredients))
	for _, ingredient := range m.Ingredients {
		if ingredient.Food != nil {
			foods = append(foods, *ingredient.Food)
		}
	}
	return foods
}

// OwnedBy reports whether the mixture belongs to the user with the given external id.
func (m Mixture) OwnedBy(userExtID string) bool {
	return ownedBy(m.UserExtID, userExtID)
}
