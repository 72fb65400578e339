// Package document defines the persisted clinic document: the five
// top-level collections that live together in the host's single durable
// key-value slot, plus the identifier and migration helpers that operate
// on them. The package is pure data; persistence lives in
// internal/storage and the operation surface in internal/store.
package document

import (
	"encoding/json"
	"time"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Movement types for the inventory ledger.
const (
	MovementPurchase    = "purchase"
	MovementConsumption = "consumption"
	MovementAdjustment  = "adjustment"
)

// Identifier prefixes, one per collection.
const (
	PrefixPatient     = "P"
	PrefixAppointment = "A"
	PrefixInventory   = "I"
	PrefixMovement    = "M"
	PrefixTreatment   = "T"
	PrefixDocument    = "D"
)

// Document is the whole persisted dataset. Every store operation is a
// read-modify-write over one of these.
type Document struct {
	Patients           []Patient           `json:"patients"`
	Appointments       []Appointment       `json:"appointments"`
	Inventory          []InventoryItem     `json:"inventory"`
	InventoryMovements []InventoryMovement `json:"inventoryMovements"`
	Settings           Settings            `json:"settings"`
}

// EmergencyContact is the patient's emergency contact sub-object.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// ClinicalHistory groups the patient's clinical background fields.
type ClinicalHistory struct {
	Allergies          []string `json:"allergies"`
	ChronicDiseases    []string `json:"chronicDiseases"`
	CurrentMedications []string `json:"currentMedications"`
	PriorSurgeries     []string `json:"priorSurgeries"`
	FamilyHistory      string   `json:"familyHistory"`
	DentalHistory      string   `json:"dentalHistory"`
	Notes              string   `json:"notes"`
}

type Patient struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	BirthDate        string            `json:"birthDate,omitempty"`
	Age              int               `json:"age,omitempty"`
	Phone            string            `json:"phone"`
	Email            string            `json:"email"`
	Address          string            `json:"address,omitempty"`
	BloodType        string            `json:"bloodType,omitempty"`
	Occupation       string            `json:"occupation,omitempty"`
	Insurance        string            `json:"insurance,omitempty"`
	EmergencyContact EmergencyContact  `json:"emergencyContact"`
	ClinicalHistory  ClinicalHistory   `json:"clinicalHistory"`
	Tags             []string          `json:"tags"`
	PrivateNotes     string            `json:"privateNotes"`
	Photo            *string           `json:"photo"`
	Treatments       []Treatment       `json:"treatments"`
	Documents        []PatientDocument `json:"documents"`
	CreatedAt        time.Time         `json:"createdAt"`
	LastVisit        *time.Time        `json:"lastVisit"`
}

type Appointment struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patientId"`
	PatientName   string    `json:"patientName,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Treatment     string    `json:"treatment,omitempty"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	Duration      int       `json:"duration,omitempty"`
	Color         string    `json:"color,omitempty"`
	Room          string    `json:"room,omitempty"`
	TreatmentType string    `json:"treatmentType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Treatment is owned exclusively by its patient; it has no standalone
// storage slot.
type Treatment struct {
	ID        string    `json:"id"`
	Treatment string    `json:"treatment"`
	Date      string    `json:"date,omitempty"`
	Dentist   string    `json:"dentist,omitempty"`
	Duration  int       `json:"duration,omitempty"`
	Type      string    `json:"type,omitempty"`
	Cost      float64   `json:"cost"`
	Paid      bool      `json:"paid"`
	Notes     string    `json:"notes,omitempty"`
	Photos    []string  `json:"photos,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PatientDocument is an uploaded file attached to a patient record.
type PatientDocument struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type,omitempty"`
	Data       string    `json:"data,omitempty"`
	Category   string    `json:"category,omitempty"`
	UploadDate time.Time `json:"uploadDate"`
}

// Supplier is the structured supplier record. Documents written by older
// schema versions stored the supplier as a bare string; UnmarshalJSON
// accepts that variant and flags it so the migration can report the
// upgrade. The flag itself is never persisted.
type Supplier struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Address string `json:"address"`

	legacy bool
}

func (s *Supplier) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*s = Supplier{Name: name, legacy: true}
		return nil
	}
	type plain Supplier
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Supplier(p)
	return nil
}

// Legacy reports whether the supplier was decoded from the pre-migration
// string form.
func (s Supplier) Legacy() bool { return s.legacy }

// PricePoint is one historical price entry for an inventory item.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// PurchaseOrder is a recorded restock order for an inventory item.
type PurchaseOrder struct {
	Date     string  `json:"date"`
	Quantity int     `json:"quantity"`
	Cost     float64 `json:"cost"`
}

type InventoryItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Quantity       int             `json:"quantity"`
	MinStock       int             `json:"minStock"`
	Unit           string          `json:"unit,omitempty"`
	Price          float64         `json:"price"`
	Supplier       Supplier        `json:"supplier"`
	SKU            string          `json:"sku,omitempty"`
	ExpirationDate *string         `json:"expirationDate"`
	PriceHistory   []PricePoint    `json:"priceHistory"`
	PurchaseOrders []PurchaseOrder `json:"purchaseOrders"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

// InventoryMovement is one ledger entry. Entries are append-only and
// immutable once written; they are the audit trail behind all
// consumption analytics.
type InventoryMovement struct {
	ID            string    `json:"id"`
	InventoryID   string    `json:"inventoryId"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	Reason        string    `json:"reason,omitempty"`
	Cost          float64   `json:"cost"`
	CreatedAt     time.Time `json:"createdAt"`
}

// WorkingHours is the clinic's daily schedule window.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Settings struct {
	ClinicName          string       `json:"clinicName"`
	WorkingHours        WorkingHours `json:"workingHours"`
	AppointmentDuration int          `json:"appointmentDuration"`
	Currency            string       `json:"currency"`
}

// DefaultSettings returns the settings used when no seed document is
// available.
func DefaultSettings() Settings {
	return Settings{
		ClinicName:          "Clínica Dental",
		WorkingHours:        WorkingHours{Start: "09:00", End: "18:00"},
		AppointmentDuration: 30,
		Currency:            "MXN",
	}
}

// Empty returns a usable empty document with default settings.
func Empty() *Document {
	doc := &Document{Settings: DefaultSettings()}
	doc.Normalize()
	return doc
}

// Normalize replaces nil collections with empty ones so the document
// always serializes with all five top-level fields present.
func (d *Document) Normalize() {
	if d.Patients == nil {
		d.Patients = []Patient{}
	}
	if d.Appointments == nil {
		d.Appointments = []Appointment{}
	}
	if d.Inventory == nil {
		d.Inventory = []InventoryItem{}
	}
	if d.InventoryMovements == nil {
		d.InventoryMovements = []InventoryMovement{}
	}
}

// PatientByID returns the index of the patient with the given id, or -1.
func (d *Document) PatientByID(id string) int {
	for i := range d.Patients {
		if d.Patients[i].ID == id {
			return i
		}
	}
	return -1
}

// AppointmentByID returns the index of the appointment with the given
// id, or -1.
func (d *Document) AppointmentByID(id string) int {
	for i := range d.Appointments {
		if d.Appointments[i].ID == id {
			return i
		}
	}
	return -1
}

// InventoryByID returns the index of the inventory item with the given
// id, or -1.
func (d *Document) InventoryByID(id string) int {
	for i := range d.Inventory {
		if d.Inventory[i].ID == id {
			return i
		}
	}
	return -1
}
