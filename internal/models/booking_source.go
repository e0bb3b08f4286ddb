package models

// BookingSource is where a booking came from (phone, walk-in, social media).
// Same lifecycle as Doctor: admin-managed, name snapshotted onto appointments.
type BookingSource struct {
	BaseModel
	Name     string `gorm:"size:255;not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
