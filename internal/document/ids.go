package document

import (
	"fmt"
	"strconv"
	"strings"
)

// NextID produces the next identifier for a collection: it scans the
// existing ids sharing the prefix, parses the numeric remainder, and
// formats max+1 with three-digit zero padding ("P001", "P002", ...).
// Because it is max-based rather than count-based, an id is never reused
// after a deletion.
func NextID(prefix string, existing []string) string {
	max := 0
	for _, id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}

// NextPatientID returns the next free patient identifier.
func (d *Document) NextPatientID() string {
	return NextID(PrefixPatient, collectIDs(len(d.Patients), func(i int) string { return d.Patients[i].ID }))
}

// NextAppointmentID returns the next free appointment identifier.
func (d *Document) NextAppointmentID() string {
	return NextID(PrefixAppointment, collectIDs(len(d.Appointments), func(i int) string { return d.Appointments[i].ID }))
}

// NextInventoryID returns the next free inventory item identifier.
func (d *Document) NextInventoryID() string {
	return NextID(PrefixInventory, collectIDs(len(d.Inventory), func(i int) string { return d.Inventory[i].ID }))
}

// NextMovementID returns the next free ledger entry identifier.
func (d *Document) NextMovementID() string {
	return NextID(PrefixMovement, collectIDs(len(d.InventoryMovements), func(i int) string { return d.InventoryMovements[i].ID }))
}

// NextTreatmentID returns the next free treatment identifier. Treatments
// are nested per patient but their ids are unique across the whole
// document, so the scan covers every patient.
func (d *Document) NextTreatmentID() string {
	var ids []string
	for i := range d.Patients {
		for j := range d.Patients[i].Treatments {
			ids = append(ids, d.Patients[i].Treatments[j].ID)
		}
	}
	return NextID(PrefixTreatment, ids)
}

// NextDocumentID returns the next free patient-document identifier,
// unique across all patients.
func (d *Document) NextDocumentID() string {
	var ids []string
	for i := range d.Patients {
		for j := range d.Patients[i].Documents {
			ids = append(ids, d.Patients[i].Documents[j].ID)
		}
	}
	return NextID(PrefixDocument, ids)
}

func collectIDs(n int, get func(int) string) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, get(i))
	}
	return ids
}
