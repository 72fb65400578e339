package document

// Migration defaults for fields introduced after the first schema
// version. Values match what older records are expected to carry once
// upgraded.
const (
	defaultAppointmentDuration = 30
	defaultAppointmentColor    = "#0077BE"
	defaultAppointmentRoom     = "Sala 1"
	defaultTreatmentType       = "General"
)

// Migrate additively backfills fields introduced by later schema
// versions onto every patient, appointment and inventory record. It
// reports whether anything changed. The pass is idempotent: a second run
// over its own output changes nothing and reports false. Populated
// fields are never dropped or renamed; a record that does not need a
// given backfill is left alone.
func Migrate(d *Document) bool {
	changed := false
	if d == nil {
		return false
	}
	if d.Patients == nil || d.Appointments == nil || d.Inventory == nil || d.InventoryMovements == nil {
		d.Normalize()
		changed = true
	}

	for i := range d.Patients {
		p := &d.Patients[i]
		if p.Tags == nil {
			p.Tags = []string{}
			changed = true
		}
		if p.Treatments == nil {
			p.Treatments = []Treatment{}
			changed = true
		}
		if p.Documents == nil {
			p.Documents = []PatientDocument{}
			changed = true
		}
	}

	for i := range d.Appointments {
		a := &d.Appointments[i]
		if a.Duration == 0 {
			a.Duration = defaultAppointmentDuration
			changed = true
		}
		if a.Color == "" {
			a.Color = defaultAppointmentColor
			changed = true
		}
		if a.Room == "" {
			a.Room = defaultAppointmentRoom
			changed = true
		}
		if a.TreatmentType == "" {
			a.TreatmentType = defaultTreatmentType
			changed = true
		}
	}

	for i := range d.Inventory {
		item := &d.Inventory[i]
		if item.SKU == "" {
			item.SKU = "SKU-" + item.ID
			changed = true
		}
		if item.Supplier.legacy {
			// String-typed supplier promoted to the structured form;
			// the name survives, the remaining fields start blank.
			item.Supplier.legacy = false
			changed = true
		}
		if item.PriceHistory == nil {
			item.PriceHistory = []PricePoint{}
			changed = true
		}
		if item.PurchaseOrders == nil {
			item.PurchaseOrders = []PurchaseOrder{}
			changed = true
		}
	}

	return changed
}
