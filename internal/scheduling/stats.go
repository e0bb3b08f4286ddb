package scheduling

import (
	"time"

	"clinic-booking-server/internal/models"
)

// UserStats is a staff member's booking counters for the dashboard tiles.
type UserStats struct {
	Total int64 `json:"total"`
	Today int64 `json:"today"`
}

// LeaderboardEntry is one row of the per-staff leaderboard, ordered by total
// bookings descending. UserName is the snapshot stamped on the appointments;
// DisplayName is the user's current name (null if the user was deleted).
type LeaderboardEntry struct {
	UserID      uint    `json:"userId"`
	UserName    string  `json:"userName"`
	DisplayName *string `json:"displayName"`
	Total       int64   `json:"total"`
	Today       int64   `json:"today"`
}

// StatsFor returns the caller's total and today booking counts. Today is the
// half-open window [local midnight, next local midnight).
func (e *Engine) StatsFor(userID uint) (UserStats, error) {
	today := startOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var stats UserStats
	err := e.db.Model(&models.Appointment{}).
		Where("created_by_id = ?", userID).
		Count(&stats.Total).Error
	if err != nil {
		return UserStats{}, &StoreError{Op: "count appointments", Err: err}
	}

	err = e.db.Model(&models.Appointment{}).
		Where("created_by_id = ?", userID).
		Where("appointment_date >= ? AND appointment_date < ?", today, tomorrow).
		Count(&stats.Today).Error
	if err != nil {
		return UserStats{}, &StoreError{Op: "count today's appointments", Err: err}
	}

	return stats, nil
}

// StatsAll aggregates booking counts per staff member, descending by total.
func (e *Engine) StatsAll() ([]LeaderboardEntry, error) {
	today := startOfDay(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var entries []LeaderboardEntry
	err := e.db.Raw(`
		SELECT a.created_by_id            AS user_id,
		       MAX(a.created_by_name)     AS user_name,
		       u.display_name             AS display_name,
		       COUNT(*)                   AS total,
		       SUM(CASE WHEN a.appointment_date >= ? AND a.appointment_date < ?
		                THEN 1 ELSE 0 END) AS today
		FROM appointments a
		LEFT JOIN users u ON u.id = a.created_by_id
		GROUP BY a.created_by_id, u.display_name
		ORDER BY total DESC`,
		today, tomorrow,
	).Scan(&entries).Error
	if err != nil {
		return nil, &StoreError{Op: "aggregate staff stats", Err: err}
	}
	return entries, nil
}
