package store

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/dentora/dentora/internal/document"
)

// StockAdjustment is the result of recording a movement: the updated
// item and the ledger entry that captured the change.
type StockAdjustment struct {
	Item     document.InventoryItem     `json:"item"`
	Movement document.InventoryMovement `json:"movement"`
}

// ConsumptionSummary aggregates one item's ledger activity inside a
// calendar month.
type ConsumptionSummary struct {
	ItemName       string                       `json:"itemName"`
	TotalUsed      int                          `json:"totalUsed"`
	TotalPurchased int                          `json:"totalPurchased"`
	TotalCost      float64                      `json:"totalCost"`
	Movements      []document.InventoryMovement `json:"movements"`
}

// Prediction estimates when an item will hit its reorder threshold.
// This is a linear-rate heuristic over the ledger's consumption entries,
// not a time-series forecast; it assumes usage continues at the average
// monthly rate observed so far.
type Prediction struct {
	AvgMonthlyUsage          int `json:"avgMonthlyUsage"`
	DaysUntilReorder         int `json:"daysUntilReorder"`
	SuggestedReorderQuantity int `json:"suggestedReorderQuantity"`
	CurrentStock             int `json:"currentStock"`
	MinStock                 int `json:"minStock"`
}

// RecordMovement applies a signed stock delta to the item (negative =
// consumption, positive = restock) and appends the immutable ledger
// entry carrying both stock snapshots. The entry's cost is
// quantity*price for restocks and zero for consumption. Returns nil
// when the item id does not resolve.
func (s *Store) RecordMovement(ctx context.Context, inventoryID string, quantity int, reason, movementType string) (*StockAdjustment, error) {
	if movementType == "" {
		movementType = document.MovementAdjustment
	}
	var result *StockAdjustment
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.InventoryByID(inventoryID)
		if i < 0 {
			return errSkipSave
		}
		item := &doc.Inventory[i]
		previous := item.Quantity
		item.Quantity = previous + quantity
		item.LastUpdated = s.now()

		cost := 0.0
		if quantity > 0 {
			cost = float64(quantity) * item.Price
		}
		movement := document.InventoryMovement{
			ID:            doc.NextMovementID(),
			InventoryID:   inventoryID,
			Type:          movementType,
			Quantity:      quantity,
			PreviousStock: previous,
			NewStock:      previous + quantity,
			Reason:        reason,
			Cost:          cost,
			CreatedAt:     s.now(),
		}
		doc.InventoryMovements = append(doc.InventoryMovements, movement)
		result = &StockAdjustment{Item: *item, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListMovements returns the whole ledger in append order.
func (s *Store) ListMovements(ctx context.Context) ([]document.InventoryMovement, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.InventoryMovements, nil
}

// MovementsByItem returns the item's ledger entries, newest first.
func (s *Store) MovementsByItem(ctx context.Context, inventoryID string) ([]document.InventoryMovement, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	out := []document.InventoryMovement{}
	for _, m := range doc.InventoryMovements {
		if m.InventoryID == inventoryID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MovementsByDateRange returns the ledger entries inside [start, end].
func (s *Store) MovementsByDateRange(ctx context.Context, start, end time.Time) ([]document.InventoryMovement, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	out := []document.InventoryMovement{}
	for _, m := range doc.InventoryMovements {
		if !m.CreatedAt.Before(start) && !m.CreatedAt.After(end) {
			out = append(out, m)
		}
	}
	return out, nil
}

// MonthlyConsumption aggregates the ledger over one calendar month,
// grouped by item: consumption entries add |quantity| to totalUsed,
// restocks add to totalPurchased and totalCost.
func (s *Store) MonthlyConsumption(ctx context.Context, month, year int) (map[string]*ConsumptionSummary, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	result := map[string]*ConsumptionSummary{}
	for _, m := range doc.InventoryMovements {
		if m.CreatedAt.Before(start) || !m.CreatedAt.Before(end) {
			continue
		}
		summary, ok := result[m.InventoryID]
		if !ok {
			name := "Desconocido"
			if i := doc.InventoryByID(m.InventoryID); i >= 0 {
				name = doc.Inventory[i].Name
			}
			summary = &ConsumptionSummary{ItemName: name, Movements: []document.InventoryMovement{}}
			result[m.InventoryID] = summary
		}
		if m.Quantity < 0 {
			summary.TotalUsed += -m.Quantity
		} else {
			summary.TotalPurchased += m.Quantity
			summary.TotalCost += m.Cost
		}
		summary.Movements = append(summary.Movements, m)
	}
	return result, nil
}

// ReorderPrediction estimates days until the item crosses its reorder
// threshold. Returns nil when the item is absent, has fewer than two
// ledger entries, or has no consumption entries to derive a rate from.
func (s *Store) ReorderPrediction(ctx context.Context, inventoryID string) (*Prediction, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.InventoryByID(inventoryID)
	if i < 0 {
		return nil, nil
	}
	item := doc.Inventory[i]

	var usage []document.InventoryMovement
	entries := 0
	for _, m := range doc.InventoryMovements {
		if m.InventoryID != inventoryID {
			continue
		}
		entries++
		if m.Quantity < 0 {
			usage = append(usage, m)
		}
	}
	if entries < 2 || len(usage) == 0 {
		return nil, nil
	}

	totalUsage := 0
	earliest, latest := usage[0].CreatedAt, usage[0].CreatedAt
	for _, m := range usage {
		totalUsage += -m.Quantity
		if m.CreatedAt.Before(earliest) {
			earliest = m.CreatedAt
		}
		if m.CreatedAt.After(latest) {
			latest = m.CreatedAt
		}
	}

	const daysPerMonth = 30
	months := latest.Sub(earliest).Hours() / 24 / daysPerMonth
	if months == 0 {
		months = 1
	}
	avgMonthly := float64(totalUsage) / months
	daysUntilReorder := float64(item.Quantity-item.MinStock) / (avgMonthly / daysPerMonth)

	return &Prediction{
		AvgMonthlyUsage:          int(math.Round(avgMonthly)),
		DaysUntilReorder:         int(math.Round(daysUntilReorder)),
		SuggestedReorderQuantity: int(math.Ceil(avgMonthly * 1.5)),
		CurrentStock:             item.Quantity,
		MinStock:                 item.MinStock,
	}, nil
}
