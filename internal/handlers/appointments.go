package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"clinic-booking-server/internal/cache"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler handles appointment booking requests. All rules live in
// the scheduling engine; this layer binds input, resolves the caller and
// maps the engine's error taxonomy onto HTTP responses.
type AppointmentHandler struct {
	Engine      *scheduling.Engine
	Cache       cache.Cache
	ScheduleTTL time.Duration
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(engine *scheduling.Engine, scheduleCache cache.Cache, scheduleTTL time.Duration) *AppointmentHandler {
	return &AppointmentHandler{Engine: engine, Cache: scheduleCache, ScheduleTTL: scheduleTTL}
}

// callerFromContext assembles the engine's caller identity from the request context.
func callerFromContext(c *gin.Context) (scheduling.Caller, bool) {
	id, okID := middleware.GetUserIDFromContext(c)
	role, okRole := middleware.GetUserRoleFromContext(c)
	name, okName := middleware.GetUserNameFromContext(c)
	if !okID || !okRole || !okName {
		return scheduling.Caller{}, false
	}
	return scheduling.Caller{ID: id, Name: name, Role: role}, true
}

// respondSchedulingError maps the engine's error taxonomy to HTTP statuses.
// Conflicts surface their code verbatim so clients can prompt for a new
// time; forbidden stays opaque.
func respondSchedulingError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	var forbidden *scheduling.ForbiddenError
	var validation *scheduling.ValidationError

	switch {
	case errors.As(err, &conflict):
		middleware.BookingConflicts.Inc()
		utils.Conflict(c, conflict.Code)
	case errors.As(err, &forbidden):
		utils.Forbidden(c, "Access denied")
	case errors.As(err, &validation):
		utils.BadRequest(c, validation.Error())
	default:
		utils.InternalServerError(c, "Failed to process appointment: "+err.Error())
	}
}

// invalidateSchedule drops the cached availability view after any write.
func (h *AppointmentHandler) invalidateSchedule(c *gin.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Delete(c.Request.Context(), cache.ScheduleKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate schedule cache")
	}
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	PatientName     string             `json:"patientName" binding:"required,min=1"`
	PatientPhone    string             `json:"patientPhone" binding:"required,min=1"`
	AppointmentDate time.Time          `json:"appointmentDate" binding:"required"`
	AppointmentTime string             `json:"appointmentTime" binding:"required"`
	DoctorID        uint               `json:"doctorId" binding:"required"`
	AppointmentType string             `json:"appointmentType" binding:"required"`
	PatientType     models.PatientType `json:"patientType" binding:"required,oneof=new existing"`
	BookingSourceID *uint              `json:"bookingSourceId"`
	Notes           string             `json:"notes"`
}

// Create books a new appointment for the caller.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caller, ok := callerFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	_, err := h.Engine.Create(scheduling.CreateInput{
		PatientName:     req.PatientName,
		PatientPhone:    req.PatientPhone,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		DoctorID:        req.DoctorID,
		AppointmentType: req.AppointmentType,
		PatientType:     req.PatientType,
		BookingSourceID: req.BookingSourceID,
		Notes:           req.Notes,
	}, caller)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	h.invalidateSchedule(c)
	utils.Created(c, "Appointment created successfully", gin.H{"success": true})
}

// UpdateAppointmentRequest is a partial update; omitted fields keep their
// stored values. Status and price are validated here, ownership and conflict
// rules in the engine.
type UpdateAppointmentRequest struct {
	PatientName     *string                   `json:"patientName"`
	PatientPhone    *string                   `json:"patientPhone"`
	AppointmentDate *time.Time                `json:"appointmentDate"`
	AppointmentTime *string                   `json:"appointmentTime"`
	DoctorID        *uint                     `json:"doctorId"`
	AppointmentType *string                   `json:"appointmentType"`
	PatientType     *models.PatientType       `json:"patientType" binding:"omitempty,oneof=new existing"`
	BookingSourceID *uint                     `json:"bookingSourceId"`
	Status          *models.AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled arrived no_show no_answer"`
	Price           *int                      `json:"price"`
	Notes           *string                   `json:"notes"`
}

// Update applies a partial update to an appointment.
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caller, okCaller := callerFromContext(c)
	if !okCaller {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	err := h.Engine.Update(id, scheduling.UpdateInput{
		PatientName:     req.PatientName,
		PatientPhone:    req.PatientPhone,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		DoctorID:        req.DoctorID,
		AppointmentType: req.AppointmentType,
		PatientType:     req.PatientType,
		BookingSourceID: req.BookingSourceID,
		Status:          req.Status,
		Price:           req.Price,
		Notes:           req.Notes,
	}, caller)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	h.invalidateSchedule(c)
	utils.Success(c, "Appointment updated successfully", gin.H{"success": true})
}

// Delete removes an appointment.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	caller, okCaller := callerFromContext(c)
	if !okCaller {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Engine.Delete(id, caller); err != nil {
		respondSchedulingError(c, err)
		return
	}

	h.invalidateSchedule(c)
	utils.Success(c, "Appointment deleted successfully", gin.H{"success": true})
}

// ListAll returns every appointment (admin and reception).
func (h *AppointmentHandler) ListAll(c *gin.Context) {
	appointments, err := h.Engine.ListAll()
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// ListMine returns the appointments the caller booked.
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointments, err := h.Engine.ListByCreator(caller.ID)
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// ListSchedule returns the slot-occupancy view used to render availability.
// Served from cache when fresh; every appointment write invalidates it.
func (h *AppointmentHandler) ListSchedule(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, cache.ScheduleKey); err == nil {
			var slots []scheduling.ScheduleSlot
			if err := json.Unmarshal(cached, &slots); err == nil {
				utils.Success(c, "Schedule fetched successfully", slots)
				return
			}
			// Corrupt entry; fall through to the store.
		}
	}

	slots, err := h.Engine.Schedule()
	if err != nil {
		respondSchedulingError(c, err)
		return
	}

	if h.Cache != nil {
		if payload, err := json.Marshal(slots); err == nil {
			if err := h.Cache.Set(ctx, cache.ScheduleKey, payload, h.ScheduleTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache schedule view")
			}
		}
	}

	utils.Success(c, "Schedule fetched successfully", slots)
}

// ListRange returns appointments between the from and to dates (inclusive),
// for day and week views.
func (h *AppointmentHandler) ListRange(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		utils.BadRequest(c, "Invalid from date: expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		utils.BadRequest(c, "Invalid to date: expected YYYY-MM-DD")
		return
	}
	if to.Before(from) {
		utils.BadRequest(c, "to date is before from date")
		return
	}

	// Extend to the end of the final day so same-day ranges are inclusive.
	appointments, err := h.Engine.ListByDateRange(from, to.Add(24*time.Hour-time.Millisecond))
	if err != nil {
		respondSchedulingError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}
