package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/utils"
)

// StatsHandler serves booking productivity counters.
type StatsHandler struct {
	Engine *scheduling.Engine
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(engine *scheduling.Engine) *StatsHandler {
	return &StatsHandler{Engine: engine}
}

// Mine returns the caller's total and today booking counts.
func (h *StatsHandler) Mine(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	stats, err := h.Engine.StatsFor(userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch stats: "+err.Error())
		return
	}
	utils.Success(c, "Stats fetched successfully", stats)
}

// All returns the per-staff booking leaderboard, busiest first.
func (h *StatsHandler) All(c *gin.Context) {
	entries, err := h.Engine.StatsAll()
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch stats: "+err.Error())
		return
	}
	utils.Success(c, "Stats fetched successfully", entries)
}
