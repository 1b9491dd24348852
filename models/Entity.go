package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity carries the identity shared by every record exposed through the API.
// ExtID is the only identifier clients ever see.
type Entity struct {
	gorm.Model
	ExtID  string `gorm:"uniqueIndex;size:36;not null" json:"extid"`
	Active bool   `gorm:"not null;default:true" json:"active"`
}

// BeforeCreate assigns an external id and marks the record active.
func (e *Entity) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(e.ExtID) == "" {
		e.ExtID = uuid.NewString()
	}
	e.Active = true
	return nil
}
