package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// DoctorHandler handles doctor reference-data requests.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// List handles fetching all doctors, newest first.
func (h *DoctorHandler) List(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.DB.Order("created_at desc").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// ListActive handles fetching bookable doctors, ordered by name.
func (h *DoctorHandler) ListActive(c *gin.Context) {
	var doctors []models.Doctor
	if err := h.DB.Where("is_active = ?", true).Order("name").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch active doctors: "+err.Error())
		return
	}
	utils.Success(c, "Active doctors fetched successfully", doctors)
}

// CreateDoctorRequest represents the request body for creating a doctor.
type CreateDoctorRequest struct {
	Name           string `json:"name" binding:"required,min=1"`
	Specialization string `json:"specialization"`
}

// Create handles creating a new doctor (admin).
func (h *DoctorHandler) Create(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := models.Doctor{
		Name:           req.Name,
		Specialization: req.Specialization,
		IsActive:       true,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}

	utils.Created(c, "Doctor created successfully", gin.H{"success": true})
}

// UpdateDoctorRequest represents a partial doctor update.
type UpdateDoctorRequest struct {
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
	IsActive       *bool   `json:"isActive"`
}

// Update handles a partial doctor update (admin). Renames never touch the
// name snapshots on existing appointments.
func (h *DoctorHandler) Update(c *gin.Context) {
	doctorID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, doctorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			utils.BadRequest(c, "Doctor name cannot be empty")
			return
		}
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor updated successfully", gin.H{"success": true})
}

// Delete handles deleting a doctor (admin). Appointments keep their
// denormalized doctor name, so history stays intact.
func (h *DoctorHandler) Delete(c *gin.Context) {
	doctorID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(&models.Doctor{}, doctorID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor deleted successfully", gin.H{"success": true})
}
