package scheduling

import (
	"time"

	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
)

// ConflictChecker determines whether a doctor/day/time slot is occupied.
// Only the calendar day of date matters; time of day travels separately as a
// canonical "HH:MM" string.
type ConflictChecker struct {
	db *gorm.DB
}

// NewConflictChecker creates a ConflictChecker.
func NewConflictChecker(db *gorm.DB) *ConflictChecker {
	return &ConflictChecker{db: db}
}

// FindConflicts returns every appointment occupying the doctor's slot on the
// calendar day of date at timeOfDay. excludeID, when non-zero, removes that
// appointment from the result so an update never conflicts with itself.
// An empty result means the slot is free.
func (c *ConflictChecker) FindConflicts(doctorID uint, date time.Time, timeOfDay string, excludeID uint) ([]models.Appointment, error) {
	start := startOfDay(date)
	end := start.Add(24*time.Hour - time.Millisecond)

	query := c.db.
		Where("doctor_id = ?", doctorID).
		Where("appointment_date >= ? AND appointment_date <= ?", start, end).
		Where("appointment_time = ?", timeOfDay)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var conflicts []models.Appointment
	if err := query.Find(&conflicts).Error; err != nil {
		return nil, &StoreError{Op: "find conflicting appointments", Err: err}
	}
	return conflicts, nil
}

// startOfDay truncates t to midnight in server-local time.
func startOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
