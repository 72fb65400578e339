package store

import (
	"context"
	"testing"
	"time"

	"github.com/dentora/dentora/internal/document"
)

func TestRecordMovementStockSnapshots(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 100, Price: 0.5})

	adj, err := s.RecordMovement(ctx, item.ID, -30, "uso diario", document.MovementConsumption)
	if err != nil {
		t.Fatal(err)
	}
	m := adj.Movement
	if m.ID != "M001" {
		t.Errorf("movement id = %s", m.ID)
	}
	if m.PreviousStock != 100 || m.NewStock != 70 {
		t.Errorf("snapshots = %d -> %d, want 100 -> 70", m.PreviousStock, m.NewStock)
	}
	if m.NewStock != m.PreviousStock+m.Quantity {
		t.Error("newStock must equal previousStock + quantity")
	}
	if adj.Item.Quantity != 70 {
		t.Errorf("item quantity = %d, want 70", adj.Item.Quantity)
	}
	// Consumption carries no cost.
	if m.Cost != 0 {
		t.Errorf("consumption cost = %f, want 0", m.Cost)
	}
}

func TestRecordMovementRestockCost(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Resina", Quantity: 10, Price: 25})

	adj, err := s.RecordMovement(ctx, item.ID, 4, "compra", document.MovementPurchase)
	if err != nil {
		t.Fatal(err)
	}
	if adj.Movement.Cost != 100 {
		t.Errorf("restock cost = %f, want 100", adj.Movement.Cost)
	}
	if adj.Item.Quantity != 14 {
		t.Errorf("quantity = %d, want 14", adj.Item.Quantity)
	}
}

func TestRecordMovementDefaultsAndMiss(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 10})

	adj, err := s.RecordMovement(ctx, item.ID, -1, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if adj.Movement.Type != document.MovementAdjustment {
		t.Errorf("default type = %s, want adjustment", adj.Movement.Type)
	}

	miss, err := s.RecordMovement(ctx, "I404", -1, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if miss != nil {
		t.Error("expected nil for a missing item")
	}
}

// recordAt writes a movement with the store clock pinned to ts.
func recordAt(t *testing.T, s *Store, ts time.Time, itemID string, qty int, movType string) {
	t.Helper()
	prev := s.now
	s.now = func() time.Time { return ts }
	defer func() { s.now = prev }()
	if _, err := s.RecordMovement(context.Background(), itemID, qty, "", movType); err != nil {
		t.Fatal(err)
	}
}

func TestMovementsByItemNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 100})
	other := mustAddItem(t, s, document.InventoryItem{Name: "Resina", Quantity: 10})

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	recordAt(t, s, base, item.ID, -1, document.MovementConsumption)
	recordAt(t, s, base.Add(time.Hour), other.ID, -1, document.MovementConsumption)
	recordAt(t, s, base.Add(2*time.Hour), item.ID, -2, document.MovementConsumption)

	got, err := s.MovementsByItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("movements = %d, want 2", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Error("expected newest-first ordering")
	}
}

func TestMovementsByDateRangeInclusive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 100})

	day1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	day5 := time.Date(2026, 3, 5, 12, 0, 0, 0, time.Local)
	day9 := time.Date(2026, 3, 9, 12, 0, 0, 0, time.Local)
	recordAt(t, s, day1, item.ID, -1, document.MovementConsumption)
	recordAt(t, s, day5, item.ID, -1, document.MovementConsumption)
	recordAt(t, s, day9, item.ID, -1, document.MovementConsumption)

	got, err := s.MovementsByDateRange(ctx, day1, day5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("range [day1, day5] = %d entries, want 2 (bounds inclusive)", len(got))
	}
}

func TestMonthlyConsumption(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 200, Price: 0.5})

	march := time.Date(2026, 3, 5, 10, 0, 0, 0, time.Local)
	recordAt(t, s, march, item.ID, -30, document.MovementConsumption)
	recordAt(t, s, march.AddDate(0, 0, 10), item.ID, 50, document.MovementPurchase)
	recordAt(t, s, march.AddDate(0, 0, 20), item.ID, -10, document.MovementConsumption)
	// Outside the window.
	recordAt(t, s, time.Date(2026, 2, 28, 23, 0, 0, 0, time.Local), item.ID, -99, document.MovementConsumption)
	recordAt(t, s, time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local), item.ID, -99, document.MovementConsumption)

	report, err := s.MonthlyConsumption(ctx, 3, 2026)
	if err != nil {
		t.Fatal(err)
	}
	summary := report[item.ID]
	if summary == nil {
		t.Fatal("item missing from report")
	}
	if summary.TotalUsed != 40 {
		t.Errorf("totalUsed = %d, want 40", summary.TotalUsed)
	}
	if summary.TotalPurchased != 50 {
		t.Errorf("totalPurchased = %d, want 50", summary.TotalPurchased)
	}
	if summary.TotalCost != 25 {
		t.Errorf("totalCost = %f, want 25", summary.TotalCost)
	}
	if len(summary.Movements) != 3 {
		t.Errorf("window captured %d movements, want 3", len(summary.Movements))
	}
}

func TestMonthlyConsumptionDeletedItem(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 100})

	recordAt(t, s, time.Date(2026, 3, 5, 10, 0, 0, 0, time.Local), item.ID, -10, document.MovementConsumption)
	if _, err := s.DeleteInventoryItem(ctx, item.ID); err != nil {
		t.Fatal(err)
	}

	report, err := s.MonthlyConsumption(ctx, 3, 2026)
	if err != nil {
		t.Fatal(err)
	}
	summary := report[item.ID]
	if summary == nil {
		t.Fatal("deleted item's history missing from report")
	}
	if summary.ItemName != "Desconocido" {
		t.Errorf("itemName = %s, want Desconocido", summary.ItemName)
	}
}

func TestReorderPredictionLinearRate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 100, MinStock: 20})

	day0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	recordAt(t, s, day0, item.ID, -30, document.MovementConsumption)
	recordAt(t, s, day0.AddDate(0, 0, 60), item.ID, -30, document.MovementConsumption)

	p, err := s.ReorderPrediction(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("expected a prediction")
	}
	// 60 units over a 60-day span = 30/month; stock is 40 with a floor
	// of 20, so 20 days remain at one unit per day.
	if p.AvgMonthlyUsage != 30 {
		t.Errorf("avgMonthlyUsage = %d, want 30", p.AvgMonthlyUsage)
	}
	if p.DaysUntilReorder != 20 {
		t.Errorf("daysUntilReorder = %d, want 20", p.DaysUntilReorder)
	}
	if p.SuggestedReorderQuantity != 45 {
		t.Errorf("suggestedReorderQuantity = %d, want 45", p.SuggestedReorderQuantity)
	}
	if p.CurrentStock != 40 || p.MinStock != 20 {
		t.Errorf("stock fields = %d/%d", p.CurrentStock, p.MinStock)
	}
}

func TestReorderPredictionNilCases(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Missing item.
	if p, err := s.ReorderPrediction(ctx, "I404"); err != nil || p != nil {
		t.Errorf("missing item: p=%v err=%v", p, err)
	}

	// Fewer than two ledger entries.
	one := mustAddItem(t, s, document.InventoryItem{Name: "Resina", Quantity: 10, MinStock: 2})
	recordAt(t, s, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), one.ID, -1, document.MovementConsumption)
	if p, err := s.ReorderPrediction(ctx, one.ID); err != nil || p != nil {
		t.Errorf("single entry: p=%v err=%v", p, err)
	}

	// Entries but no consumption to derive a rate from.
	restocked := mustAddItem(t, s, document.InventoryItem{Name: "Anestesia", Quantity: 10, MinStock: 2})
	recordAt(t, s, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), restocked.ID, 5, document.MovementPurchase)
	recordAt(t, s, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local), restocked.ID, 5, document.MovementPurchase)
	if p, err := s.ReorderPrediction(ctx, restocked.ID); err != nil || p != nil {
		t.Errorf("no consumption: p=%v err=%v", p, err)
	}
}

func TestReorderPredictionSameDayUsage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	item := mustAddItem(t, s, document.InventoryItem{Name: "Guantes", Quantity: 100, MinStock: 20})

	// Zero time span collapses to one month so the rate stays finite.
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	recordAt(t, s, ts, item.ID, -10, document.MovementConsumption)
	recordAt(t, s, ts, item.ID, -20, document.MovementConsumption)

	p, err := s.ReorderPrediction(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p == nil {
		t.Fatal("expected a prediction")
	}
	if p.AvgMonthlyUsage != 30 {
		t.Errorf("avgMonthlyUsage = %d, want 30", p.AvgMonthlyUsage)
	}
}
