package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dentora/dentora/internal/document"
)

func TestAddAppointmentDefaultsAndLastVisit(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")

	a, err := s.AddAppointment(ctx, document.Appointment{PatientID: p.ID, Date: "2026-03-11", Time: "10:00"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != "A001" {
		t.Errorf("id = %s, want A001", a.ID)
	}
	if a.Status != document.StatusPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
	if a.PatientName != "Ana" {
		t.Errorf("patientName = %s, want Ana", a.PatientName)
	}

	// Scheduling stamps the referenced patient's lastVisit.
	stamped, err := s.GetPatient(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stamped.LastVisit == nil {
		t.Error("lastVisit not stamped on appointment creation")
	}
}

func TestAddAppointmentUnknownPatient(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddAppointment(context.Background(), document.Appointment{PatientID: "P404", Date: "2026-03-11", Time: "10:00"})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestAddAppointmentInvalidStatus(t *testing.T) {
	s, _ := newTestStore(t)
	p := mustAddPatient(t, s, "Ana")
	_, err := s.AddAppointment(context.Background(), document.Appointment{PatientID: p.ID, Status: "maybe"})
	if err == nil {
		t.Fatal("expected invalid status to be rejected")
	}
}

func TestAppointmentQueries(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	ana := mustAddPatient(t, s, "Ana")
	luis := mustAddPatient(t, s, "Luis")

	for _, a := range []document.Appointment{
		{PatientID: ana.ID, Date: "2026-03-10", Time: "10:00"},
		{PatientID: ana.ID, Date: "2026-03-11", Time: "10:00"},
		{PatientID: luis.ID, Date: "2026-03-10", Time: "11:00"},
	} {
		if _, err := s.AddAppointment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	byDate, err := s.AppointmentsByDate(ctx, "2026-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(byDate) != 2 {
		t.Errorf("byDate = %d, want 2", len(byDate))
	}

	byPatient, err := s.AppointmentsByPatient(ctx, ana.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(byPatient) != 2 {
		t.Errorf("byPatient = %d, want 2", len(byPatient))
	}

	// The test clock is pinned to 2026-03-10.
	today, err := s.TodayAppointments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 2 {
		t.Errorf("today = %d, want 2", len(today))
	}
}

func TestUpdateAppointment(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")
	a, err := s.AddAppointment(ctx, document.Appointment{PatientID: p.ID, Date: "2026-03-11", Time: "10:00"})
	if err != nil {
		t.Fatal(err)
	}

	status := document.StatusConfirmed
	updated, err := s.UpdateAppointment(ctx, a.ID, AppointmentPatch{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != document.StatusConfirmed {
		t.Errorf("status = %s", updated.Status)
	}
	if updated.Date != "2026-03-11" {
		t.Error("unpatched field changed")
	}

	bad := "maybe"
	if _, err := s.UpdateAppointment(ctx, a.ID, AppointmentPatch{Status: &bad}); err == nil {
		t.Error("expected invalid status to be rejected")
	}

	missing, err := s.UpdateAppointment(ctx, "A404", AppointmentPatch{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil updating a missing appointment")
	}
}

func TestIsTimeSlotAvailable(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")

	booked, err := s.AddAppointment(ctx, document.Appointment{PatientID: p.ID, Date: "2026-03-11", Time: "10:00"})
	if err != nil {
		t.Fatal(err)
	}
	cancelled, err := s.AddAppointment(ctx, document.Appointment{
		PatientID: p.ID, Date: "2026-03-11", Time: "11:00", Status: document.StatusCancelled,
	})
	if err != nil {
		t.Fatal(err)
	}

	if ok, _ := s.IsTimeSlotAvailable(ctx, "2026-03-11", "10:00", ""); ok {
		t.Error("booked slot reported available")
	}
	if ok, _ := s.IsTimeSlotAvailable(ctx, "2026-03-11", "11:00", ""); !ok {
		t.Errorf("cancelled appointment %s should not block the slot", cancelled.ID)
	}
	// Rescheduling checks exclude the appointment being moved.
	if ok, _ := s.IsTimeSlotAvailable(ctx, "2026-03-11", "10:00", booked.ID); !ok {
		t.Error("excluded appointment still blocks its own slot")
	}
	if ok, _ := s.IsTimeSlotAvailable(ctx, "2026-03-12", "10:00", ""); !ok {
		t.Error("free day reported unavailable")
	}
}

func TestDeleteAppointment(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")
	a, err := s.AddAppointment(ctx, document.Appointment{PatientID: p.ID, Date: "2026-03-11", Time: "10:00"})
	if err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteAppointment(ctx, a.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	removed, err = s.DeleteAppointment(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second delete should report false")
	}

	// Deleting the appointment leaves the patient in place.
	if got, _ := s.GetPatient(ctx, p.ID); got == nil {
		t.Error("patient vanished with the appointment")
	}
}
