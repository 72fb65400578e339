package store

import (
	"context"
	"strings"

	"github.com/dentora/dentora/internal/document"
)

// PatientPatch is a partial patient update: only non-nil fields replace
// the stored values. Nested sub-objects are replaced wholesale when
// supplied, matching the shallow-merge semantics of updates.
type PatientPatch struct {
	Name             *string                    `json:"name,omitempty"`
	BirthDate        *string                    `json:"birthDate,omitempty"`
	Age              *int                       `json:"age,omitempty"`
	Phone            *string                    `json:"phone,omitempty"`
	Email            *string                    `json:"email,omitempty"`
	Address          *string                    `json:"address,omitempty"`
	BloodType        *string                    `json:"bloodType,omitempty"`
	Occupation       *string                    `json:"occupation,omitempty"`
	Insurance        *string                    `json:"insurance,omitempty"`
	EmergencyContact *document.EmergencyContact `json:"emergencyContact,omitempty"`
	ClinicalHistory  *document.ClinicalHistory  `json:"clinicalHistory,omitempty"`
	PrivateNotes     *string                    `json:"privateNotes,omitempty"`
}

// AddPatient assigns an identifier, stamps the creation time, appends
// and persists. The supplied id, timestamps and nested collections are
// ignored.
func (s *Store) AddPatient(ctx context.Context, p document.Patient) (*document.Patient, error) {
	var created document.Patient
	err := s.withDocument(ctx, func(doc *document.Document) error {
		p.ID = doc.NextPatientID()
		p.CreatedAt = s.now()
		p.LastVisit = nil
		if p.Tags == nil {
			p.Tags = []string{}
		}
		p.Treatments = []document.Treatment{}
		p.Documents = []document.PatientDocument{}
		doc.Patients = append(doc.Patients, p)
		created = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetPatient returns the patient with the given id, or nil when absent.
func (s *Store) GetPatient(ctx context.Context, id string) (*document.Patient, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	if i := doc.PatientByID(id); i >= 0 {
		p := doc.Patients[i]
		return &p, nil
	}
	return nil, nil
}

// ListPatients returns every patient.
func (s *Store) ListPatients(ctx context.Context) ([]document.Patient, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Patients, nil
}

// UpdatePatient merges the patch onto the stored record and persists.
// Returns nil when the id does not resolve.
func (s *Store) UpdatePatient(ctx context.Context, id string, patch PatientPatch) (*document.Patient, error) {
	var updated *document.Patient
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(id)
		if i < 0 {
			return errSkipSave
		}
		p := &doc.Patients[i]
		applyString(&p.Name, patch.Name)
		applyString(&p.BirthDate, patch.BirthDate)
		if patch.Age != nil {
			p.Age = *patch.Age
		}
		applyString(&p.Phone, patch.Phone)
		applyString(&p.Email, patch.Email)
		applyString(&p.Address, patch.Address)
		applyString(&p.BloodType, patch.BloodType)
		applyString(&p.Occupation, patch.Occupation)
		applyString(&p.Insurance, patch.Insurance)
		if patch.EmergencyContact != nil {
			p.EmergencyContact = *patch.EmergencyContact
		}
		if patch.ClinicalHistory != nil {
			p.ClinicalHistory = *patch.ClinicalHistory
		}
		applyString(&p.PrivateNotes, patch.PrivateNotes)
		cp := *p
		updated = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePatient removes the patient and cascades to every appointment
// referencing them. Reports whether a patient was removed.
func (s *Store) DeletePatient(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(id)
		if i < 0 {
			return errSkipSave
		}
		doc.Patients = append(doc.Patients[:i], doc.Patients[i+1:]...)
		kept := doc.Appointments[:0]
		for _, a := range doc.Appointments {
			if a.PatientID != id {
				kept = append(kept, a)
			}
		}
		doc.Appointments = kept
		removed = true
		return nil
	})
	return removed, err
}

// SearchPatients performs a case-insensitive substring match over name,
// email, id, address and blood type; phone is matched verbatim.
func (s *Store) SearchPatients(ctx context.Context, query string) ([]document.Patient, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := []document.Patient{}
	for _, p := range doc.Patients {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Email), q) ||
			strings.Contains(p.Phone, query) ||
			strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(p.Address), q) ||
			strings.Contains(strings.ToLower(p.BloodType), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// PatientsByTag returns every patient carrying the tag.
func (s *Store) PatientsByTag(ctx context.Context, tag string) ([]document.Patient, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	out := []document.Patient{}
	for _, p := range doc.Patients {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// AddPatientTag adds the tag to the patient's label set; adding an
// existing tag is a no-op. Returns nil when the patient is absent.
func (s *Store) AddPatientTag(ctx context.Context, id, tag string) (*document.Patient, error) {
	return s.mutatePatient(ctx, id, func(p *document.Patient) {
		for _, t := range p.Tags {
			if t == tag {
				return
			}
		}
		p.Tags = append(p.Tags, tag)
	})
}

// RemovePatientTag removes the tag from the patient's label set.
func (s *Store) RemovePatientTag(ctx context.Context, id, tag string) (*document.Patient, error) {
	return s.mutatePatient(ctx, id, func(p *document.Patient) {
		kept := p.Tags[:0]
		for _, t := range p.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		p.Tags = kept
	})
}

// UpdatePatientPhoto replaces the patient's encoded photo.
func (s *Store) UpdatePatientPhoto(ctx context.Context, id, photo string) (*document.Patient, error) {
	return s.mutatePatient(ctx, id, func(p *document.Patient) {
		p.Photo = &photo
	})
}

// UpdatePrivateNotes replaces the patient's private notes.
func (s *Store) UpdatePrivateNotes(ctx context.Context, id, notes string) (*document.Patient, error) {
	return s.mutatePatient(ctx, id, func(p *document.Patient) {
		p.PrivateNotes = notes
	})
}

// mutatePatient runs fn against the stored patient and persists,
// returning the updated record or nil when the id does not resolve.
func (s *Store) mutatePatient(ctx context.Context, id string, fn func(*document.Patient)) (*document.Patient, error) {
	var updated *document.Patient
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.PatientByID(id)
		if i < 0 {
			return errSkipSave
		}
		fn(&doc.Patients[i])
		cp := doc.Patients[i]
		updated = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
