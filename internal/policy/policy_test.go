package policy

import (
	"testing"

	"clinic-booking-server/internal/models"
)

func TestAdminPassesEveryGate(t *testing.T) {
	ops := []Operation{
		OpDoctorsRead, OpDoctorsWrite,
		OpBookingSourcesRead, OpBookingSourcesWrite,
		OpAppointmentsListAll, OpAppointmentsListSchedule, OpAppointmentsListMine,
		OpAppointmentsCreate, OpAppointmentsUpdate, OpAppointmentsDelete,
		OpStatsRead, OpUsersManage,
	}
	for _, op := range ops {
		if !Allows(models.RoleAdmin, op) {
			t.Errorf("admin denied %s", op)
		}
	}
}

func TestPendingHasNoCapabilities(t *testing.T) {
	ops := []Operation{
		OpDoctorsRead, OpDoctorsWrite,
		OpBookingSourcesRead, OpBookingSourcesWrite,
		OpAppointmentsListAll, OpAppointmentsListSchedule, OpAppointmentsListMine,
		OpAppointmentsCreate, OpAppointmentsUpdate, OpAppointmentsDelete,
		OpStatsRead, OpUsersManage,
	}
	for _, op := range ops {
		if Allows(models.RolePending, op) {
			t.Errorf("pending allowed %s", op)
		}
	}
}

func TestCallCenterGates(t *testing.T) {
	allowed := []Operation{
		OpDoctorsRead, OpBookingSourcesRead,
		OpAppointmentsListSchedule, OpAppointmentsListMine,
		OpAppointmentsCreate, OpAppointmentsUpdate, OpAppointmentsDelete,
		OpStatsRead,
	}
	denied := []Operation{
		OpAppointmentsListAll, OpDoctorsWrite, OpBookingSourcesWrite, OpUsersManage,
	}
	for _, op := range allowed {
		if !Allows(models.RoleCallCenter, op) {
			t.Errorf("call_center denied %s", op)
		}
	}
	for _, op := range denied {
		if Allows(models.RoleCallCenter, op) {
			t.Errorf("call_center allowed %s", op)
		}
	}
}

func TestReceptionGates(t *testing.T) {
	allowed := []Operation{
		OpDoctorsRead, OpBookingSourcesRead,
		OpAppointmentsListAll, OpAppointmentsCreate,
		OpAppointmentsUpdate, OpAppointmentsDelete,
		OpStatsRead,
	}
	denied := []Operation{
		OpAppointmentsListSchedule, OpAppointmentsListMine,
		OpDoctorsWrite, OpBookingSourcesWrite, OpUsersManage,
	}
	for _, op := range allowed {
		if !Allows(models.RoleReception, op) {
			t.Errorf("reception denied %s", op)
		}
	}
	for _, op := range denied {
		if Allows(models.RoleReception, op) {
			t.Errorf("reception allowed %s", op)
		}
	}
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	if Allows(models.Role("ghost"), OpDoctorsRead) {
		t.Error("unknown role should be denied")
	}
}
