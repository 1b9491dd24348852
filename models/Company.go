package models

// Company is a supplier or brand in the admin-managed directory.
type Company struct {
	Entity
	Code        string `gorm:"uniqueIndex;size:16;not null" json:"code"`
	Name        string `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Description string `gorm:"size:255;not null;default:''" json:"description"`
}
