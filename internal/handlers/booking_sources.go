package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// BookingSourceHandler handles booking-source reference-data requests.
type BookingSourceHandler struct {
	DB *gorm.DB
}

// NewBookingSourceHandler creates a new BookingSourceHandler.
func NewBookingSourceHandler(db *gorm.DB) *BookingSourceHandler {
	return &BookingSourceHandler{DB: db}
}

// List handles fetching all booking sources, newest first.
func (h *BookingSourceHandler) List(c *gin.Context) {
	var sources []models.BookingSource
	if err := h.DB.Order("created_at desc").Find(&sources).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch booking sources: "+err.Error())
		return
	}
	utils.Success(c, "Booking sources fetched successfully", sources)
}

// ListActive handles fetching active booking sources, ordered by name.
func (h *BookingSourceHandler) ListActive(c *gin.Context) {
	var sources []models.BookingSource
	if err := h.DB.Where("is_active = ?", true).Order("name").Find(&sources).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch active booking sources: "+err.Error())
		return
	}
	utils.Success(c, "Active booking sources fetched successfully", sources)
}

// CreateBookingSourceRequest represents the request body for creating a booking source.
type CreateBookingSourceRequest struct {
	Name string `json:"name" binding:"required,min=1"`
}

// Create handles creating a new booking source (admin).
func (h *BookingSourceHandler) Create(c *gin.Context) {
	var req CreateBookingSourceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	source := models.BookingSource{Name: req.Name, IsActive: true}
	if err := h.DB.Create(&source).Error; err != nil {
		utils.InternalServerError(c, "Failed to create booking source: "+err.Error())
		return
	}

	utils.Created(c, "Booking source created successfully", gin.H{"success": true})
}

// UpdateBookingSourceRequest represents a partial booking-source update.
type UpdateBookingSourceRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"isActive"`
}

// Update handles a partial booking-source update (admin).
func (h *BookingSourceHandler) Update(c *gin.Context) {
	sourceID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateBookingSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var source models.BookingSource
	if err := h.DB.First(&source, sourceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Booking source not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			utils.BadRequest(c, "Booking source name cannot be empty")
			return
		}
		source.Name = *req.Name
	}
	if req.IsActive != nil {
		source.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&source).Error; err != nil {
		utils.InternalServerError(c, "Failed to update booking source: "+err.Error())
		return
	}

	utils.Success(c, "Booking source updated successfully", gin.H{"success": true})
}

// Delete handles deleting a booking source (admin).
func (h *BookingSourceHandler) Delete(c *gin.Context) {
	sourceID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(&models.BookingSource{}, sourceID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete booking source: "+err.Error())
		return
	}

	utils.Success(c, "Booking source deleted successfully", gin.H{"success": true})
}
