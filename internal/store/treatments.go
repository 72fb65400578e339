package store

import (
	"context"

	"github.com/dentora/dentora/internal/document"
)

// TreatmentPatch is a partial treatment update.
type TreatmentPatch struct {
	Treatment *string   `json:"treatment,omitempty"`
	Date      *string   `json:"date,omitempty"`
	Dentist   *string   `json:"dentist,omitempty"`
	Duration  *int      `json:"duration,omitempty"`
	Type      *string   `json:"type,omitempty"`
	Cost      *float64  `json:"cost,omitempty"`
	Paid      *bool     `json:"paid,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Photos    *[]string `json:"photos,omitempty"`
}

// AddTreatment appends a treatment to the owning patient's record.
// Returns nil when the patient id does not resolve.
func (s *Store) AddTreatment(ctx context.Context, patientID string, t document.Treatment) (*document.Treatment, error) {
	var created *document.Treatment
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(patientID)
		if i < 0 {
			return errSkipSave
		}
		t.ID = doc.NextTreatmentID()
		t.CreatedAt = s.now()
		if t.Cost < 0 {
			t.Cost = 0
		}
		doc.Patients[i].Treatments = append(doc.Patients[i].Treatments, t)
		cp := t
		created = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Treatments returns the patient's treatment list, or nil when the
// patient is absent.
func (s *Store) Treatments(ctx context.Context, patientID string) ([]document.Treatment, error) {
	p, err := s.GetPatient(ctx, patientID)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Treatments, nil
}

// UpdateTreatment merges the patch onto the nested treatment. Returns
// nil when the patient or treatment id does not resolve.
func (s *Store) UpdateTreatment(ctx context.Context, patientID, treatmentID string, patch TreatmentPatch) (*document.Treatment, error) {
	var updated *document.Treatment
	err := s.withDocument(ctx, func(doc *document.Document) error {
		t := findTreatment(doc, patientID, treatmentID)
		if t == nil {
			return errSkipSave
		}
		applyString(&t.Treatment, patch.Treatment)
		applyString(&t.Date, patch.Date)
		applyString(&t.Dentist, patch.Dentist)
		if patch.Duration != nil {
			t.Duration = *patch.Duration
		}
		applyString(&t.Type, patch.Type)
		if patch.Cost != nil && *patch.Cost >= 0 {
			t.Cost = *patch.Cost
		}
		if patch.Paid != nil {
			t.Paid = *patch.Paid
		}
		applyString(&t.Notes, patch.Notes)
		if patch.Photos != nil {
			t.Photos = *patch.Photos
		}
		cp := *t
		updated = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateTreatmentStatus flips the treatment's paid flag.
func (s *Store) UpdateTreatmentStatus(ctx context.Context, patientID, treatmentID string, paid bool) (*document.Treatment, error) {
	return s.UpdateTreatment(ctx, patientID, treatmentID, TreatmentPatch{Paid: &paid})
}

// DeleteTreatment removes the nested treatment, reporting whether it
// existed.
func (s *Store) DeleteTreatment(ctx context.Context, patientID, treatmentID string) (bool, error) {
	removed := false
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(patientID)
		if i < 0 {
			return errSkipSave
		}
		list := doc.Patients[i].Treatments
		for j := range list {
			if list[j].ID == treatmentID {
				doc.Patients[i].Treatments = append(list[:j], list[j+1:]...)
				removed = true
				return nil
			}
		}
		return errSkipSave
	})
	return removed, err
}

// AddDocument attaches an uploaded document to the patient. Returns nil
// when the patient id does not resolve.
func (s *Store) AddDocument(ctx context.Context, patientID string, d document.PatientDocument) (*document.PatientDocument, error) {
	var created *document.PatientDocument
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(patientID)
		if i < 0 {
			return errSkipSave
		}
		d.ID = doc.NextDocumentID()
		d.UploadDate = s.now()
		doc.Patients[i].Documents = append(doc.Patients[i].Documents, d)
		cp := d
		created = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Documents returns the patient's uploaded documents, or nil when the
// patient is absent.
func (s *Store) Documents(ctx context.Context, patientID string) ([]document.PatientDocument, error) {
	p, err := s.GetPatient(ctx, patientID)
	if err != nil || p == nil {
		return nil, err
	}
	return p.Documents, nil
}

// DeleteDocument removes the nested document, reporting whether it
// existed.
func (s *Store) DeleteDocument(ctx context.Context, patientID, documentID string) (bool, error) {
	removed := false
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(patientID)
		if i < 0 {
			return errSkipSave
		}
		list := doc.Patients[i].Documents
		for j := range list {
			if list[j].ID == documentID {
				doc.Patients[i].Documents = append(list[:j], list[j+1:]...)
				removed = true
				return nil
			}
		}
		return errSkipSave
	})
	return removed, err
}

func findTreatment(doc *document.Document, patientID, treatmentID string) *document.Treatment {
	i := doc.PatientByID(patientID)
	if i < 0 {
		return nil
	}
	for j := range doc.Patients[i].Treatments {
		if doc.Patients[i].Treatments[j].ID == treatmentID {
			return &doc.Patients[i].Treatments[j]
		}
	}
	return nil
}
