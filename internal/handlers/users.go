package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// UserHandler handles staff management requests (admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// GetUsers handles fetching all approved users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Where("is_approved = ?", true).Order("created_at desc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetPendingUsers handles fetching users awaiting approval (admin).
func (h *UserHandler) GetPendingUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Where("is_approved = ?", false).Order("created_at desc").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pending users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Pending users fetched successfully", sanitized)
}

// UpdateRoleRequest represents the request body for changing a user's role.
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=admin call_center reception pending"`
}

// UpdateRole changes a user's role. Demoting to pending also revokes
// approval; any real role implies approved.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	user.Role = req.Role
	user.IsApproved = req.Role != models.RolePending
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update role: "+err.Error())
		return
	}

	utils.Success(c, "Role updated successfully", gin.H{"success": true})
}

// ApproveUserRequest represents the request body for approving a pending user.
type ApproveUserRequest struct {
	Role models.Role `json:"role" binding:"required,oneof=admin call_center reception"`
}

// ApproveUser promotes a pending user into a real role.
func (h *UserHandler) ApproveUser(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ApproveUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	user.Role = req.Role
	user.IsApproved = true
	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to approve user: "+err.Error())
		return
	}

	utils.Success(c, "User approved successfully", gin.H{"success": true})
}

// UpdateNameRequest represents the request body for renaming a user.
type UpdateNameRequest struct {
	DisplayName string `json:"displayName" binding:"required,min=1"`
}

// UpdateName sets a user's display name (admin).
func (h *UserHandler) UpdateName(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateNameRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result := h.DB.Model(&models.User{}).Where("id = ?", userID).Update("display_name", req.DisplayName)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to update name: "+result.Error.Error())
		return
	}

	utils.Success(c, "Name updated successfully", gin.H{"success": true})
}

// DeleteUser removes a user and every appointment they created. Admins
// cannot delete their own account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}

	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	if callerID == userID {
		utils.BadRequest(c, "Cannot delete your own account")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_by_id = ?", userID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", gin.H{"success": true})
}
