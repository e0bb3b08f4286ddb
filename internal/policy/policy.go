// Package policy is the role-based gate applied to every operation. It
// replaces scattered per-handler role comparisons with a single capability
// table: each role maps to the set of operations it may perform, and admin
// passes every gate.
package policy

import "clinic-booking-server/internal/models"

// Operation names a gated API operation.
type Operation string

const (
	OpDoctorsRead         Operation = "doctors.read"
	OpDoctorsWrite        Operation = "doctors.write"
	OpBookingSourcesRead  Operation = "bookingSources.read"
	OpBookingSourcesWrite Operation = "bookingSources.write"

	OpAppointmentsListAll      Operation = "appointments.listAll"
	OpAppointmentsListSchedule Operation = "appointments.listAllForSchedule"
	OpAppointmentsListMine     Operation = "appointments.listMine"
	OpAppointmentsCreate       Operation = "appointments.create"
	OpAppointmentsUpdate       Operation = "appointments.update"
	OpAppointmentsDelete       Operation = "appointments.delete"

	OpStatsRead   Operation = "stats.read"
	OpUsersManage Operation = "users.manage"
)

// capabilities enumerates what each non-admin role may do. Pending carries no
// capabilities until an admin approves the user into a real role. Note that
// update/delete here is only the gate; per-appointment ownership is checked
// by the scheduling engine.
var capabilities = map[models.Role]map[Operation]bool{
	models.RoleCallCenter: {
		OpDoctorsRead:              true,
		OpBookingSourcesRead:       true,
		OpAppointmentsListSchedule: true,
		OpAppointmentsListMine:     true,
		OpAppointmentsCreate:       true,
		OpAppointmentsUpdate:       true,
		OpAppointmentsDelete:       true,
		OpStatsRead:                true,
	},
	models.RoleReception: {
		OpDoctorsRead:         true,
		OpBookingSourcesRead:  true,
		OpAppointmentsListAll: true,
		OpAppointmentsCreate:  true,
		OpAppointmentsUpdate:  true,
		OpAppointmentsDelete:  true,
		OpStatsRead:           true,
	},
}

// Allows reports whether the role may perform the operation.
func Allows(role models.Role, op Operation) bool {
	if role == models.RoleAdmin {
		return true
	}
	return capabilities[role][op]
}
