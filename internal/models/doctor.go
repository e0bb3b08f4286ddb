package models

// Doctor represents a bookable doctor. Appointments keep a denormalized
// name snapshot, so deleting or renaming a doctor never rewrites history.
type Doctor struct {
	BaseModel
	Name           string `gorm:"size:255;not null" json:"name"`
	Specialization string `gorm:"size:255" json:"specialization,omitempty"`
	IsActive       bool   `gorm:"default:true" json:"isActive"`
}
