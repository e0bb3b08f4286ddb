package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/timeslot"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Doctor{}, &models.BookingSource{}, &models.Appointment{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	grid, err := timeslot.NewGrid("09:00", "22:00", 15)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	return NewEngine(db, grid), db
}

func seedDoctor(t *testing.T, db *gorm.DB, name string) models.Doctor {
	t.Helper()
	doctor := models.Doctor{Name: name, IsActive: true}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return doctor
}

func caller(id uint, role models.Role) Caller {
	return Caller{ID: id, Name: fmt.Sprintf("Staff %d", id), Role: role}
}

func bookingInput(doctorID uint, date time.Time, timeOfDay string) CreateInput {
	return CreateInput{
		PatientName:     "Patient",
		PatientPhone:    "0500000000",
		AppointmentDate: date,
		AppointmentTime: timeOfDay,
		DoctorID:        doctorID,
		AppointmentType: "checkup",
		PatientType:     models.PatientNew,
	}
}

var bookingDay = time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

func TestCreateRejectsOccupiedSlot(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	if _, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(1, models.RoleCallCenter)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(2, models.RoleCallCenter))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Code != ConflictCode {
		t.Errorf("conflict code = %q, want %q", conflict.Code, ConflictCode)
	}

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 appointment after rejected create, got %d", count)
	}
}

func TestCreateAllowsDifferentDoctorSameSlot(t *testing.T) {
	engine, db := newTestEngine(t)
	first := seedDoctor(t, db, "Dr. Salem")
	second := seedDoctor(t, db, "Dr. Hana")

	if _, err := engine.Create(bookingInput(first.ID, bookingDay, "14:00"), caller(1, models.RoleCallCenter)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := engine.Create(bookingInput(second.ID, bookingDay, "14:00"), caller(2, models.RoleCallCenter)); err != nil {
		t.Fatalf("second doctor, same slot: %v", err)
	}
}

func TestCreateAllowsSameTimeDifferentDay(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	if _, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(1, models.RoleCallCenter)); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	nextDay := bookingDay.AddDate(0, 0, 1)
	if _, err := engine.Create(bookingInput(doctor.ID, nextDay, "14:00"), caller(1, models.RoleCallCenter)); err != nil {
		t.Fatalf("next day, same time: %v", err)
	}
}

func TestCreateTreatsUnpaddedTimeAsSameSlot(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	if _, err := engine.Create(bookingInput(doctor.ID, bookingDay, "9:00"), caller(1, models.RoleCallCenter)); err != nil {
		t.Fatalf("booking at 9:00: %v", err)
	}
	_, err := engine.Create(bookingInput(doctor.ID, bookingDay, "09:00"), caller(2, models.RoleCallCenter))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected 09:00 to conflict with 9:00, got %v", err)
	}
}

func TestCreateStampsCreatorAndStatus(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	who := Caller{ID: 7, Name: "Sara", Role: models.RoleCallCenter}
	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "10:00"), who)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusScheduled {
		t.Errorf("status = %q, want scheduled", created.Status)
	}
	if created.CreatedByID != 7 || created.CreatedByName != "Sara" {
		t.Errorf("creator = %d/%q, want 7/Sara", created.CreatedByID, created.CreatedByName)
	}
	if created.DoctorName != doctor.Name {
		t.Errorf("doctor name snapshot = %q, want %q", created.DoctorName, doctor.Name)
	}
	if created.AppointmentDay != "2024-06-01" {
		t.Errorf("appointment day = %q, want 2024-06-01", created.AppointmentDay)
	}

	var stored models.Appointment
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusScheduled {
		t.Errorf("stored status = %q, want scheduled", stored.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	var validation *ValidationError

	_, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:07"), caller(1, models.RoleCallCenter))
	if !errors.As(err, &validation) {
		t.Errorf("off-grid time: expected ValidationError, got %v", err)
	}

	_, err = engine.Create(bookingInput(doctor.ID, bookingDay, "nope"), caller(1, models.RoleCallCenter))
	if !errors.As(err, &validation) {
		t.Errorf("malformed time: expected ValidationError, got %v", err)
	}

	_, err = engine.Create(bookingInput(doctor.ID+100, bookingDay, "14:00"), caller(1, models.RoleCallCenter))
	if !errors.As(err, &validation) {
		t.Errorf("unknown doctor: expected ValidationError, got %v", err)
	}

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	if count != 0 {
		t.Errorf("validation failures must not write, found %d rows", count)
	}
}

func TestUpdateMoveFreesOldSlot(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")
	owner := caller(1, models.RoleCallCenter)

	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTime := "15:00"
	if err := engine.Update(created.ID, UpdateInput{AppointmentTime: &newTime}, owner); err != nil {
		t.Fatalf("move to 15:00: %v", err)
	}

	// The old slot is free again.
	if _, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(2, models.RoleCallCenter)); err != nil {
		t.Fatalf("rebooking freed slot: %v", err)
	}
}

func TestUpdateMoveIntoOccupiedSlotRejected(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")
	owner := caller(1, models.RoleCallCenter)

	if _, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), owner); err != nil {
		t.Fatalf("create blocker: %v", err)
	}
	moved, err := engine.Create(bookingInput(doctor.ID, bookingDay, "15:00"), owner)
	if err != nil {
		t.Fatalf("create movable: %v", err)
	}

	into := "14:00"
	err = engine.Update(moved.ID, UpdateInput{AppointmentTime: &into}, owner)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	var stored models.Appointment
	if err := db.First(&stored, moved.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.AppointmentTime != "15:00" {
		t.Errorf("rejected update must not be applied, time = %q", stored.AppointmentTime)
	}
}

func TestUpdateNotesOnlyNeverSelfConflicts(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")
	owner := caller(1, models.RoleCallCenter)

	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "patient prefers Arabic"
	if err := engine.Update(created.ID, UpdateInput{Notes: &notes}, owner); err != nil {
		t.Fatalf("notes-only update: %v", err)
	}

	var stored models.Appointment
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Notes != notes {
		t.Errorf("notes = %q, want %q", stored.Notes, notes)
	}
}

func TestUpdateSameSlotExcludesSelf(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")
	owner := caller(1, models.RoleCallCenter)

	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Re-sending the same slot must not conflict with the row itself.
	sameTime := "14:00"
	sameDate := bookingDay
	if err := engine.Update(created.ID, UpdateInput{AppointmentDate: &sameDate, AppointmentTime: &sameTime}, owner); err != nil {
		t.Fatalf("same-slot update: %v", err)
	}
}

func TestCallCenterCannotTouchForeignAppointments(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(1, models.RoleCallCenter))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	intruder := caller(2, models.RoleCallCenter)
	name := "someone else"
	var forbidden *ForbiddenError

	if err := engine.Update(created.ID, UpdateInput{PatientName: &name}, intruder); !errors.As(err, &forbidden) {
		t.Errorf("foreign update: expected ForbiddenError, got %v", err)
	}
	status := models.StatusArrived
	if err := engine.Update(created.ID, UpdateInput{Status: &status}, intruder); !errors.As(err, &forbidden) {
		t.Errorf("call_center has no status/price exception, got %v", err)
	}
	if err := engine.Delete(created.ID, intruder); !errors.As(err, &forbidden) {
		t.Errorf("foreign delete: expected ForbiddenError, got %v", err)
	}

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	if count != 1 {
		t.Errorf("appointment should survive, count = %d", count)
	}
}

func TestReceptionStatusPriceBypassesOwnership(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(1, models.RoleReception))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other := caller(2, models.RoleReception)

	status := models.StatusArrived
	price := 250
	if err := engine.Update(created.ID, UpdateInput{Status: &status, Price: &price}, other); err != nil {
		t.Fatalf("status/price on foreign appointment: %v", err)
	}

	var stored models.Appointment
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusArrived || stored.Price == nil || *stored.Price != 250 {
		t.Errorf("status/price not applied: %q %v", stored.Status, stored.Price)
	}

	name := "renamed"
	var forbidden *ForbiddenError
	if err := engine.Update(created.ID, UpdateInput{PatientName: &name, Status: &status}, other); !errors.As(err, &forbidden) {
		t.Errorf("non-status field on foreign appointment: expected ForbiddenError, got %v", err)
	}
}

func TestAdminBypassesOwnership(t *testing.T) {
	engine, db := newTestEngine(t)
	doctor := seedDoctor(t, db, "Dr. Salem")

	created, err := engine.Create(bookingInput(doctor.ID, bookingDay, "14:00"), caller(1, models.RoleCallCenter))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	admin := caller(99, models.RoleAdmin)
	name := "corrected"
	if err := engine.Update(created.ID, UpdateInput{PatientName: &name}, admin); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if err := engine.Delete(created.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestMissingAppointmentOutcomes(t *testing.T) {
	engine, _ := newTestEngine(t)

	notes := "x"

	// Admin on an unknown id mirrors the store's 0-rows-affected no-op.
	if err := engine.Update(12345, UpdateInput{Notes: &notes}, caller(1, models.RoleAdmin)); err != nil {
		t.Errorf("admin update of missing id: expected no-op, got %v", err)
	}
	if err := engine.Delete(12345, caller(1, models.RoleAdmin)); err != nil {
		t.Errorf("admin delete of missing id: expected no-op, got %v", err)
	}

	// Ownership-checked roles cannot tell "not there" from "not yours".
	var forbidden *ForbiddenError
	if err := engine.Update(12345, UpdateInput{Notes: &notes}, caller(1, models.RoleCallCenter)); !errors.As(err, &forbidden) {
		t.Errorf("call_center update of missing id: expected ForbiddenError, got %v", err)
	}
	if err := engine.Delete(12345, caller(1, models.RoleReception)); !errors.As(err, &forbidden) {
		t.Errorf("reception delete of missing id: expected ForbiddenError, got %v", err)
	}
}

func TestDoctorChangeRefreshesSnapshot(t *testing.T) {
	engine, db := newTestEngine(t)
	first := seedDoctor(t, db, "Dr. Salem")
	second := seedDoctor(t, db, "Dr. Hana")
	owner := caller(1, models.RoleCallCenter)

	created, err := engine.Create(bookingInput(first.ID, bookingDay, "14:00"), owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := engine.Update(created.ID, UpdateInput{DoctorID: &second.ID}, owner); err != nil {
		t.Fatalf("move to second doctor: %v", err)
	}

	var stored models.Appointment
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.DoctorID != second.ID || stored.DoctorName != "Dr. Hana" {
		t.Errorf("snapshot not refreshed: %d %q", stored.DoctorID, stored.DoctorName)
	}

	// Renaming the doctor afterwards never rewrites history.
	if err := db.Model(&models.Doctor{}).Where("id = ?", second.ID).Update("name", "Dr. Renamed").Error; err != nil {
		t.Fatalf("rename doctor: %v", err)
	}
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.DoctorName != "Dr. Hana" {
		t.Errorf("doctor name snapshot changed to %q after rename", stored.DoctorName)
	}
}

func TestSlotUniqueIndexIsAuthoritative(t *testing.T) {
	_, db := newTestEngine(t)

	base := models.Appointment{
		PatientName:     "A",
		PatientPhone:    "1",
		AppointmentDate: bookingDay,
		AppointmentTime: "14:00",
		DoctorID:        1,
		DoctorName:      "Dr. Salem",
		AppointmentType: "checkup",
		PatientType:     models.PatientNew,
		Status:          models.StatusScheduled,
		CreatedByID:     1,
		CreatedByName:   "Staff 1",
	}
	if err := db.Create(&base).Error; err != nil {
		t.Fatalf("insert first: %v", err)
	}

	// A second write that sneaks past the advisory check still hits the
	// composite unique index.
	dup := base
	dup.ID = 0
	err := db.Create(&dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}
