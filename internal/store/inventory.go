package store

import (
	"context"
	"strings"

	"github.com/dentora/dentora/internal/document"
)

// InventoryPatch is a partial inventory item update. The supplier
// sub-object is replaced wholesale when supplied.
type InventoryPatch struct {
	Name           *string            `json:"name,omitempty"`
	Category       *string            `json:"category,omitempty"`
	Quantity       *int               `json:"quantity,omitempty"`
	MinStock       *int               `json:"minStock,omitempty"`
	Unit           *string            `json:"unit,omitempty"`
	Price          *float64           `json:"price,omitempty"`
	Supplier       *document.Supplier `json:"supplier,omitempty"`
	SKU            *string            `json:"sku,omitempty"`
	ExpirationDate *string            `json:"expirationDate,omitempty"`
}

// AddInventoryItem assigns an identifier, stamps lastUpdated, appends
// and persists.
func (s *Store) AddInventoryItem(ctx context.Context, item document.InventoryItem) (*document.InventoryItem, error) {
	var created document.InventoryItem
	err := s.withDocument(ctx, func(doc *document.Document) error {
		item.ID = doc.NextInventoryID()
		item.LastUpdated = s.now()
		if item.SKU == "" {
			item.SKU = "SKU-" + item.ID
		}
		if item.PriceHistory == nil {
			item.PriceHistory = []document.PricePoint{}
		}
		if item.PurchaseOrders == nil {
			item.PurchaseOrders = []document.PurchaseOrder{}
		}
		doc.Inventory = append(doc.Inventory, item)
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetInventoryItem returns the item with the given id, or nil.
func (s *Store) GetInventoryItem(ctx context.Context, id string) (*document.InventoryItem, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	if i := doc.InventoryByID(id); i >= 0 {
		item := doc.Inventory[i]
		return &item, nil
	}
	return nil, nil
}

// ListInventory returns every inventory item.
func (s *Store) ListInventory(ctx context.Context) ([]document.InventoryItem, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Inventory, nil
}

// UpdateInventoryItem merges the patch onto the stored item and
// restamps lastUpdated. Returns nil when the id does not resolve.
// Direct quantity edits bypass the ledger; collaborators that care
// about the audit trail use RecordMovement instead.
func (s *Store) UpdateInventoryItem(ctx context.Context, id string, patch InventoryPatch) (*document.InventoryItem, error) {
	var updated *document.InventoryItem
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.InventoryByID(id)
		if i < 0 {
			return errSkipSave
		}
		item := &doc.Inventory[i]
		applyString(&item.Name, patch.Name)
		applyString(&item.Category, patch.Category)
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		if patch.MinStock != nil {
			item.MinStock = *patch.MinStock
		}
		applyString(&item.Unit, patch.Unit)
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if patch.Supplier != nil {
			item.Supplier = *patch.Supplier
		}
		applyString(&item.SKU, patch.SKU)
		if patch.ExpirationDate != nil {
			item.ExpirationDate = patch.ExpirationDate
		}
		item.LastUpdated = s.now()
		cp := *item
		updated = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteInventoryItem removes the item, reporting whether it existed.
// Ledger entries for the item are kept: the ledger is append-only and
// consumption history outlives the item.
func (s *Store) DeleteInventoryItem(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.withDocument(ctx, func(doc *document.Document) error {
		i := doc.InventoryByID(id)
		if i < 0 {
			return errSkipSave
		}
		doc.Inventory = append(doc.Inventory[:i], doc.Inventory[i+1:]...)
		removed = true
		return nil
	})
	return removed, err
}

// SearchInventory performs a case-insensitive substring match over
// name, category and supplier name.
func (s *Store) SearchInventory(ctx context.Context, query string) ([]document.InventoryItem, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := []document.InventoryItem{}
	for _, item := range doc.Inventory {
		if strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Category), q) ||
			strings.Contains(strings.ToLower(item.Supplier.Name), q) {
			out = append(out, item)
		}
	}
	return out, nil
}

// LowStockItems returns the items at or below their reorder threshold.
func (s *Store) LowStockItems(ctx context.Context) ([]document.InventoryItem, error) {
	doc, err := s.readDocument(ctx)
	if err != nil {
		return nil, err
	}
	out := []document.InventoryItem{}
	for _, item := range doc.Inventory {
		if item.Quantity <= item.MinStock {
			out = append(out, item)
		}
	}
	return out, nil
}
