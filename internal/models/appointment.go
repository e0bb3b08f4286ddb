package models

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusArrived   AppointmentStatus = "arrived"
	StatusNoShow    AppointmentStatus = "no_show"
	StatusNoAnswer  AppointmentStatus = "no_answer"
)

// PatientType distinguishes first visits from returning patients
type PatientType string

const (
	PatientNew      PatientType = "new"
	PatientExisting PatientType = "existing"
)

// Appointment represents a booked slot for a doctor. DoctorName,
// BookingSourceName and CreatedByName are snapshots taken at write time and
// are never re-synced when the referenced row is renamed.
type Appointment struct {
	BaseModel
	PatientName  string `gorm:"size:255;not null" json:"patientName"`
	PatientPhone string `gorm:"size:50;not null" json:"patientPhone"`

	AppointmentDate time.Time `gorm:"not null" json:"appointmentDate"`
	AppointmentTime string    `gorm:"size:10;not null;index:idx_doctor_slot,unique" json:"appointmentTime"`
	// AppointmentDay is the calendar day of AppointmentDate in server-local
	// time. It exists only to back the unique slot index; set via hook.
	AppointmentDay string `gorm:"size:10;not null;index:idx_doctor_slot,unique" json:"-"`

	DoctorID   uint   `gorm:"not null;index:idx_doctor_slot,unique" json:"doctorId"`
	DoctorName string `gorm:"size:255;not null" json:"doctorName"`

	AppointmentType string      `gorm:"size:100;not null" json:"appointmentType"`
	PatientType     PatientType `gorm:"size:20;not null" json:"patientType"`

	BookingSourceID   *uint  `json:"bookingSourceId,omitempty"`
	BookingSourceName string `gorm:"size:255" json:"bookingSourceName,omitempty"`

	Status AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Price  *int              `json:"price,omitempty"`

	CreatedByID   uint   `gorm:"not null;index" json:"createdById"`
	CreatedByName string `gorm:"size:255;not null" json:"createdByName"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`
}

// BeforeSave keeps the indexed calendar day in sync with the appointment date.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	a.AppointmentDay = a.AppointmentDate.Local().Format("2006-01-02")
	return nil
}
