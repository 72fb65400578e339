package store

import (
	"context"
	"testing"

	"github.com/dentora/dentora/internal/document"
)

func TestAddPatientAssignsIdentity(t *testing.T) {
	s, _ := newTestStore(t)

	p := mustAddPatient(t, s, "Ana")
	if p.ID != "P001" {
		t.Errorf("id = %s, want P001", p.ID)
	}
	if p.CreatedAt.IsZero() {
		t.Error("createdAt not stamped")
	}
	if p.LastVisit != nil {
		t.Error("lastVisit must start nil")
	}
	if p.Tags == nil || p.Treatments == nil || p.Documents == nil {
		t.Error("nested collections must start empty, not nil")
	}

	q := mustAddPatient(t, s, "Luis")
	if q.ID != "P002" {
		t.Errorf("second id = %s, want P002", q.ID)
	}
}

func TestGetPatientMissReturnsNil(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.GetPatient(context.Background(), "P999")
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Error("expected nil for a missing patient")
	}
}

func TestUpdatePatientShallowMerge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")

	phone := "555-9999"
	ec := document.EmergencyContact{Name: "Luis", Phone: "555-0001", Relationship: "hermano"}
	updated, err := s.UpdatePatient(ctx, p.ID, PatientPatch{Phone: &phone, EmergencyContact: &ec})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Phone != "555-9999" {
		t.Errorf("phone = %s", updated.Phone)
	}
	if updated.Name != "Ana" {
		t.Error("unpatched field changed")
	}
	if updated.EmergencyContact.Name != "Luis" {
		t.Error("nested sub-object not replaced")
	}
	if updated.ID != p.ID || updated.CreatedAt != p.CreatedAt {
		t.Error("identity fields must survive updates")
	}
}

func TestUpdateMissingPatient(t *testing.T) {
	s, _ := newTestStore(t)
	name := "Nadie"
	p, err := s.UpdatePatient(context.Background(), "P404", PatientPatch{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if p != nil {
		t.Error("expected nil updating a missing patient")
	}
}

func TestDeletePatientCascades(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	ana := mustAddPatient(t, s, "Ana")
	luis := mustAddPatient(t, s, "Luis")

	for _, a := range []document.Appointment{
		{PatientID: ana.ID, Date: "2026-03-11", Time: "10:00"},
		{PatientID: luis.ID, Date: "2026-03-11", Time: "11:00"},
		{PatientID: ana.ID, Date: "2026-03-12", Time: "09:00"},
	} {
		if _, err := s.AddAppointment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.DeletePatient(ctx, ana.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected removal to be reported")
	}

	appts, err := s.ListAppointments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 1 || appts[0].PatientID != luis.ID {
		t.Errorf("cascade left %d appointments: %+v", len(appts), appts)
	}

	removed, err = s.DeletePatient(ctx, ana.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second delete should report false")
	}
}

func TestSearchPatientsCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustAddPatient(t, s, "María García")
	mustAddPatient(t, s, "Luis Pérez")

	got, err := s.SearchPatients(ctx, "MARÍA")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "María García" {
		t.Errorf("search by name: %+v", got)
	}

	// Phone matches verbatim, not case-folded.
	got, err = s.SearchPatients(ctx, "555-0100")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("search by phone matched %d", len(got))
	}

	got, err = s.SearchPatients(ctx, "p001")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("search by id matched %d", len(got))
	}
}

func TestPatientTagsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")

	if _, err := s.AddPatientTag(ctx, p.ID, "vip"); err != nil {
		t.Fatal(err)
	}
	updated, err := s.AddPatientTag(ctx, p.ID, "vip")
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Tags) != 1 {
		t.Errorf("tags = %v, want exactly one vip", updated.Tags)
	}

	byTag, err := s.PatientsByTag(ctx, "vip")
	if err != nil {
		t.Fatal(err)
	}
	if len(byTag) != 1 || byTag[0].ID != p.ID {
		t.Errorf("byTag = %+v", byTag)
	}

	updated, err = s.RemovePatientTag(ctx, p.ID, "vip")
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags after remove = %v", updated.Tags)
	}
}

func TestUpdatePhotoAndNotes(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p := mustAddPatient(t, s, "Ana")

	updated, err := s.UpdatePatientPhoto(ctx, p.ID, "data:image/png;base64,AAAA")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Photo == nil || *updated.Photo == "" {
		t.Error("photo not stored")
	}

	updated, err = s.UpdatePrivateNotes(ctx, p.ID, "alergia a penicilina")
	if err != nil {
		t.Fatal(err)
	}
	if updated.PrivateNotes != "alergia a penicilina" {
		t.Errorf("privateNotes = %s", updated.PrivateNotes)
	}

	if got, err := s.UpdatePatientPhoto(ctx, "P404", "x"); err != nil || got != nil {
		t.Errorf("missing patient: got=%v err=%v", got, err)
	}
}
