// Package scheduling is the appointment booking engine: conflict detection,
// ownership-scoped mutations and per-staff booking statistics. Handlers do
// the HTTP plumbing; every rule lives here.
package scheduling

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/timeslot"
)

// Caller identifies the authenticated staff member performing an operation.
type Caller struct {
	ID   uint
	Name string
	Role models.Role
}

// Engine orchestrates create/update/delete of appointments. The advisory
// conflict check gives callers a fast, friendly rejection; the composite
// unique index on (doctor_id, appointment_day, appointment_time) is the
// authoritative signal and closes the check-then-act race between two
// concurrent bookings for the same slot.
type Engine struct {
	db        *gorm.DB
	conflicts *ConflictChecker
	grid      timeslot.Grid
}

// NewEngine creates a scheduling engine over the given store and slot grid.
func NewEngine(db *gorm.DB, grid timeslot.Grid) *Engine {
	return &Engine{
		db:        db,
		conflicts: NewConflictChecker(db),
		grid:      grid,
	}
}

// Conflicts exposes the engine's conflict checker for read-only callers.
func (e *Engine) Conflicts() *ConflictChecker {
	return e.conflicts
}

// CreateInput carries the bookable fields of a new appointment. Creator
// identity and status are never taken from input: the engine stamps the
// caller and forces status to scheduled.
type CreateInput struct {
	PatientName     string
	PatientPhone    string
	AppointmentDate time.Time
	AppointmentTime string
	DoctorID        uint
	AppointmentType string
	PatientType     models.PatientType
	BookingSourceID *uint
	Notes           string
}

// Create books a new appointment, rejecting with ConflictError when the
// doctor/day/time slot is already occupied.
func (e *Engine) Create(input CreateInput, caller Caller) (*models.Appointment, error) {
	slot, err := e.normalizeSlot(input.AppointmentTime)
	if err != nil {
		return nil, err
	}

	var doctor models.Doctor
	if err := e.db.First(&doctor, input.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "doctorId", Message: "doctor not found"}
		}
		return nil, &StoreError{Op: "load doctor", Err: err}
	}

	var sourceName string
	if input.BookingSourceID != nil {
		var source models.BookingSource
		if err := e.db.First(&source, *input.BookingSourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Field: "bookingSourceId", Message: "booking source not found"}
			}
			return nil, &StoreError{Op: "load booking source", Err: err}
		}
		sourceName = source.Name
	}

	conflicts, err := e.conflicts.FindConflicts(input.DoctorID, input.AppointmentDate, slot, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, newConflictError()
	}

	appointment := models.Appointment{
		PatientName:       input.PatientName,
		PatientPhone:      input.PatientPhone,
		AppointmentDate:   input.AppointmentDate,
		AppointmentTime:   slot,
		DoctorID:          doctor.ID,
		DoctorName:        doctor.Name,
		AppointmentType:   input.AppointmentType,
		PatientType:       input.PatientType,
		BookingSourceID:   input.BookingSourceID,
		BookingSourceName: sourceName,
		Status:            models.StatusScheduled,
		CreatedByID:       caller.ID,
		CreatedByName:     caller.Name,
		Notes:             input.Notes,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&appointment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: another request took the slot after our check.
			return nil, newConflictError()
		}
		return nil, &StoreError{Op: "create appointment", Err: err}
	}

	log.Info().
		Uint("appointment", appointment.ID).
		Uint("doctor", appointment.DoctorID).
		Str("day", appointment.AppointmentDay).
		Str("time", appointment.AppointmentTime).
		Uint("createdBy", caller.ID).
		Msg("appointment booked")

	return &appointment, nil
}

// UpdateInput is a partial field merge: nil fields keep their stored values.
// Booking source and doctor names are re-snapshotted server-side when the
// referenced id changes.
type UpdateInput struct {
	PatientName     *string
	PatientPhone    *string
	AppointmentDate *time.Time
	AppointmentTime *string
	DoctorID        *uint
	AppointmentType *string
	PatientType     *models.PatientType
	BookingSourceID *uint
	Status          *models.AppointmentStatus
	Price           *int
	Notes           *string
}

// touchesSlot reports whether the update can move the appointment to a
// different doctor/day/time slot.
func (in UpdateInput) touchesSlot() bool {
	return in.DoctorID != nil || in.AppointmentDate != nil || in.AppointmentTime != nil
}

// statusPriceOnly reports whether the update touches nothing beyond status
// and price. Reception may apply such updates to any appointment.
func (in UpdateInput) statusPriceOnly() bool {
	return in.PatientName == nil &&
		in.PatientPhone == nil &&
		in.AppointmentDate == nil &&
		in.AppointmentTime == nil &&
		in.DoctorID == nil &&
		in.AppointmentType == nil &&
		in.PatientType == nil &&
		in.BookingSourceID == nil &&
		in.Notes == nil
}

// Update applies a partial update to an appointment. Moving the appointment
// to another doctor/day/time re-runs the conflict check against every other
// appointment (the row itself is excluded so a notes-only or same-slot update
// never conflicts with itself).
func (e *Engine) Update(id uint, input UpdateInput, caller Caller) error {
	var appointment models.Appointment
	if err := e.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.missingRowOutcome(caller)
		}
		return &StoreError{Op: "load appointment", Err: err}
	}

	if err := authorizeMutation(&appointment, caller, input.statusPriceOnly()); err != nil {
		return err
	}

	if input.AppointmentTime != nil {
		slot, err := e.normalizeSlot(*input.AppointmentTime)
		if err != nil {
			return err
		}
		input.AppointmentTime = &slot
	}

	if input.touchesSlot() {
		doctorID := appointment.DoctorID
		if input.DoctorID != nil {
			doctorID = *input.DoctorID
		}
		date := appointment.AppointmentDate
		if input.AppointmentDate != nil {
			date = *input.AppointmentDate
		}
		slot := appointment.AppointmentTime
		if input.AppointmentTime != nil {
			slot = *input.AppointmentTime
		}

		conflicts, err := e.conflicts.FindConflicts(doctorID, date, slot, id)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return newConflictError()
		}
	}

	if err := e.merge(&appointment, input); err != nil {
		return err
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		return tx.Save(&appointment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newConflictError()
		}
		return &StoreError{Op: "update appointment", Err: err}
	}

	log.Info().
		Uint("appointment", appointment.ID).
		Uint("updatedBy", caller.ID).
		Msg("appointment updated")

	return nil
}

// Delete removes an appointment permanently. Same ownership rule as Update;
// no conflict check is needed for deletion.
func (e *Engine) Delete(id uint, caller Caller) error {
	var appointment models.Appointment
	if err := e.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.missingRowOutcome(caller)
		}
		return &StoreError{Op: "load appointment", Err: err}
	}

	if err := authorizeMutation(&appointment, caller, false); err != nil {
		return err
	}

	if err := e.db.Delete(&models.Appointment{}, id).Error; err != nil {
		return &StoreError{Op: "delete appointment", Err: err}
	}

	log.Info().
		Uint("appointment", id).
		Uint("deletedBy", caller.ID).
		Msg("appointment deleted")

	return nil
}

// merge overwrites only the provided fields, refreshing denormalized name
// snapshots when the referenced row changes.
func (e *Engine) merge(appointment *models.Appointment, input UpdateInput) error {
	if input.PatientName != nil {
		appointment.PatientName = *input.PatientName
	}
	if input.PatientPhone != nil {
		appointment.PatientPhone = *input.PatientPhone
	}
	if input.AppointmentDate != nil {
		appointment.AppointmentDate = *input.AppointmentDate
	}
	if input.AppointmentTime != nil {
		appointment.AppointmentTime = *input.AppointmentTime
	}
	if input.DoctorID != nil && *input.DoctorID != appointment.DoctorID {
		var doctor models.Doctor
		if err := e.db.First(&doctor, *input.DoctorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ValidationError{Field: "doctorId", Message: "doctor not found"}
			}
			return &StoreError{Op: "load doctor", Err: err}
		}
		appointment.DoctorID = doctor.ID
		appointment.DoctorName = doctor.Name
	}
	if input.AppointmentType != nil {
		appointment.AppointmentType = *input.AppointmentType
	}
	if input.PatientType != nil {
		appointment.PatientType = *input.PatientType
	}
	if input.BookingSourceID != nil {
		var source models.BookingSource
		if err := e.db.First(&source, *input.BookingSourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ValidationError{Field: "bookingSourceId", Message: "booking source not found"}
			}
			return &StoreError{Op: "load booking source", Err: err}
		}
		appointment.BookingSourceID = input.BookingSourceID
		appointment.BookingSourceName = source.Name
	}
	if input.Status != nil {
		appointment.Status = *input.Status
	}
	if input.Price != nil {
		appointment.Price = input.Price
	}
	if input.Notes != nil {
		appointment.Notes = *input.Notes
	}
	return nil
}

// authorizeMutation enforces the ownership rules: admin mutates anything,
// reception and call_center only their own rows, except that reception may
// change status/price on any appointment (front-desk check-in flow).
func authorizeMutation(appointment *models.Appointment, caller Caller, statusPriceOnly bool) error {
	switch caller.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleReception:
		if appointment.CreatedByID == caller.ID || statusPriceOnly {
			return nil
		}
	case models.RoleCallCenter:
		if appointment.CreatedByID == caller.ID {
			return nil
		}
	}
	return &ForbiddenError{Reason: "you can only modify your own appointments"}
}

// missingRowOutcome models the store's 0-rows-affected behavior: for
// ownership-checked roles the lookup miss reads as "not yours"; for admin it
// is a silent no-op.
func (e *Engine) missingRowOutcome(caller Caller) error {
	if caller.Role == models.RoleAdmin {
		return nil
	}
	return &ForbiddenError{Reason: "you can only modify your own appointments"}
}

// normalizeSlot canonicalizes a time string and validates it against the grid.
func (e *Engine) normalizeSlot(value string) (string, error) {
	slot, err := timeslot.Normalize(value)
	if err != nil {
		return "", &ValidationError{Field: "appointmentTime", Message: err.Error()}
	}
	if !e.grid.Contains(slot) {
		return "", &ValidationError{Field: "appointmentTime", Message: "time is outside the bookable grid"}
	}
	return slot, nil
}

// ListAll returns every appointment, newest day and latest time first.
func (e *Engine) ListAll() ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := e.db.
		Order("appointment_date desc").
		Order("appointment_time desc").
		Find(&appointments).Error
	if err != nil {
		return nil, &StoreError{Op: "list appointments", Err: err}
	}
	return appointments, nil
}

// ListByCreator returns the appointments a staff member booked.
func (e *Engine) ListByCreator(userID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := e.db.
		Where("created_by_id = ?", userID).
		Order("appointment_date desc").
		Order("appointment_time desc").
		Find(&appointments).Error
	if err != nil {
		return nil, &StoreError{Op: "list appointments by creator", Err: err}
	}
	return appointments, nil
}

// ListByDateRange returns appointments within [from, to] in ascending order.
func (e *Engine) ListByDateRange(from, to time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := e.db.
		Where("appointment_date >= ? AND appointment_date <= ?", from, to).
		Order("appointment_date asc").
		Order("appointment_time asc").
		Find(&appointments).Error
	if err != nil {
		return nil, &StoreError{Op: "list appointments by range", Err: err}
	}
	return appointments, nil
}

// ScheduleSlot is the availability view for schedule rendering: enough to
// show which slots are taken, nothing about the patient.
type ScheduleSlot struct {
	ID              uint                     `json:"id"`
	DoctorID        uint                     `json:"doctorId"`
	AppointmentDate time.Time                `json:"appointmentDate"`
	AppointmentTime string                   `json:"appointmentTime"`
	Status          models.AppointmentStatus `json:"status"`
}

// Schedule returns the slot-occupancy view of every appointment.
func (e *Engine) Schedule() ([]ScheduleSlot, error) {
	var slots []ScheduleSlot
	err := e.db.Model(&models.Appointment{}).
		Select("id, doctor_id, appointment_date, appointment_time, status").
		Order("appointment_date desc").
		Order("appointment_time desc").
		Scan(&slots).Error
	if err != nil {
		return nil, &StoreError{Op: "load schedule view", Err: err}
	}
	return slots, nil
}
