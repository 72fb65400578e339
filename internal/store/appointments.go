package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentora/dentora/internal/document"
)

// ErrPatientNotFound rejects an appointment whose patientId does not
// resolve. The store validates the reference itself rather than
// trusting callers to have checked first.
var ErrPatientNotFound = errors.New("store: referenced patient does not exist")

var validAppointmentStatuses = map[string]bool{
	document.StatusPending:   true,
	document.StatusConfirmed: true,
	document.StatusCompleted: true,
	document.StatusCancelled: true,
}

// AppointmentPatch is a partial appointment update.
type AppointmentPatch struct {
	PatientName   *string `json:"patientName,omitempty"`
	Date          *string `json:"date,omitempty"`
	Time          *string `json:"time,omitempty"`
	Treatment     *string `json:"treatment,omitempty"`
	Status        *string `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Duration      *int    `json:"duration,omitempty"`
	Color         *string `json:"color,omitempty"`
	Room          *string `json:"room,omitempty"`
	TreatmentType *string `json:"treatmentType,omitempty"`
}

// AddAppointment validates the patient reference, assigns an identifier
// and creation timestamp, appends, and stamps the referenced patient's
// lastVisit.
func (s *Store) AddAppointment(ctx context.Context, a document.Appointment) (*document.Appointment, error) {
	if a.Status == "" {
		a.Status = document.StatusPending
	}
	if !validAppointmentStatuses[a.Status] {
		return nil, fmt.Errorf("invalid appointment status: %s", a.Status)
	}
	var created document.Appointment
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(a.PatientID)
		if i < 0 {
			return ErrPatientNotFound
		}
		a.ID = doc.NextAppointmentID()
		a.CreatedAt = s.now()
		if a.PatientName == "" {
			a.PatientName = doc.Patients[i].Name
		}
		doc.Appointments = append(doc.Appointments, a)

		visit := s.now()
		doc.Patients[i].LastVisit = &visit

		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetAppointment returns the appointment with the given id, or nil.
func (s *Store) GetAppointment(ctx context.Context, id string) (*document.Appointment, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	if i := doc.AppointmentByID(id); i >= 0 {
		a := doc.Appointments[i]
		return &a, nil
	}
	return nil, nil
}

// ListAppointments returns every appointment.
func (s *Store) ListAppointments(ctx context.Context) ([]document.Appointment, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Appointments, nil
}

// AppointmentsByDate returns the appointments on a calendar date
// ("2006-01-02").
func (s *Store) AppointmentsByDate(ctx context.Context, date string) ([]document.Appointment, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	out := []document.Appointment{}
	for _, a := range doc.Appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

// AppointmentsByPatient returns the appointments referencing a patient.
func (s *Store) AppointmentsByPatient(ctx context.Context, patientID string) ([]document.Appointment, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	out := []document.Appointment{}
	for _, a := range doc.Appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

// TodayAppointments returns the appointments dated today.
func (s *Store) TodayAppointments(ctx context.Context) ([]document.Appointment, error) {
	return s.AppointmentsByDate(ctx, s.now().Format("2006-01-02"))
}

// UpdateAppointment merges the patch onto the stored record. Returns nil
// when the id does not resolve.
func (s *Store) UpdateAppointment(ctx context.Context, id string, patch AppointmentPatch) (*document.Appointment, error) {
	if patch.Status != nil && !validAppointmentStatuses[*patch.Status] {
		return nil, fmt.Errorf("invalid appointment status: %s", *patch.Status)
	}
	var updated *document.Appointment
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.AppointmentByID(id)
		if i < 0 {
			return errSkipSave
		}
		a := &doc.Appointments[i]
		applyString(&a.PatientName, patch.PatientName)
		applyString(&a.Date, patch.Date)
		applyString(&a.Time, patch.Time)
		applyString(&a.Treatment, patch.Treatment)
		applyString(&a.Status, patch.Status)
		applyString(&a.Notes, patch.Notes)
		if patch.Duration != nil {
			a.Duration = *patch.Duration
		}
		applyString(&a.Color, patch.Color)
		applyString(&a.Room, patch.Room)
		applyString(&a.TreatmentType, patch.TreatmentType)
		cp := *a
		updated = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAppointment removes the appointment, reporting whether it
// existed.
func (s *Store) DeleteAppointment(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.AppointmentByID(id)
		if i < 0 {
			return errSkipSave
		}
		doc.Appointments = append(doc.Appointments[:i], doc.Appointments[i+1:]...)
		removed = true
		return nil
	})
	return removed, err
}

// IsTimeSlotAvailable reports whether no non-cancelled appointment
// occupies the (date, time) pair. excludeID lets an update skip the
// appointment being rescheduled.
func (s *Store) IsTimeSlotAvailable(ctx context.Context, date, timeOfDay, excludeID string) (bool, error) {
	appts, err := s.AppointmentsByDate(ctx, date)
	if err != nil {
		return false, err
	}
	for _, a := range appts {
		if a.Time == timeOfDay && a.ID != excludeID && a.Status != document.StatusCancelled {
			return false, nil
		}
	}
	return true, nil
}
