package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/document"
	"github.com/dentora/dentora/internal/storage"
	"github.com/dentora/dentora/internal/store"
)

func newTestServer(t *testing.T) (*echo.Echo, *store.Store) {
	t.Helper()
	slot := storage.NewMemorySlot()
	gw := storage.NewGateway(slot, zerolog.Nop(), nil, storage.SeedSource{})
	st := store.New(gw, zerolog.Nop())
	if err := st.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	e := echo.New()
	NewHandler(st).RegisterRoutes(e.Group("/api/v1"))
	return e, st
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateItem(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory", `{"name":"Guantes","quantity":100,"minStock":20,"price":0.5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var item document.InventoryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatal(err)
	}
	if item.ID != "I001" || item.SKU != "SKU-I001" {
		t.Errorf("created: %+v", item)
	}
}

func TestAdjustStock(t *testing.T) {
	e, st := newTestServer(t)
	if _, err := st.AddInventoryItem(context.Background(), document.InventoryItem{Name: "Guantes", Quantity: 100, Price: 0.5}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(e, http.MethodPost, "/api/v1/inventory/I001/adjust", `{"quantity":-30,"reason":"uso diario","type":"consumption"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var adj store.StockAdjustment
	if err := json.Unmarshal(rec.Body.Bytes(), &adj); err != nil {
		t.Fatal(err)
	}
	if adj.Item.Quantity != 70 || adj.Movement.NewStock != 70 {
		t.Errorf("adjustment: %+v", adj)
	}

	rec = doJSON(e, http.MethodPost, "/api/v1/inventory/I404/adjust", `{"quantity":-1}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", rec.Code)
	}
}

func TestLowStockRoute(t *testing.T) {
	e, st := newTestServer(t)
	ctx := context.Background()
	if _, err := st.AddInventoryItem(ctx, document.InventoryItem{Name: "Guantes", Quantity: 5, MinStock: 20}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.AddInventoryItem(ctx, document.InventoryItem{Name: "Resina", Quantity: 50, MinStock: 5}); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/inventory/low-stock", "")
	var low []document.InventoryItem
	if err := json.Unmarshal(rec.Body.Bytes(), &low); err != nil {
		t.Fatal(err)
	}
	if len(low) != 1 || low[0].Name != "Guantes" {
		t.Errorf("low stock: %+v", low)
	}
}

func TestPredictionRoutes(t *testing.T) {
	e, st := newTestServer(t)
	ctx := context.Background()
	if _, err := st.AddInventoryItem(ctx, document.InventoryItem{Name: "Guantes", Quantity: 100, MinStock: 20}); err != nil {
		t.Fatal(err)
	}

	// Not enough history yet.
	rec := doJSON(e, http.MethodGet, "/api/v1/inventory/I001/prediction", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("no-history status = %d, want 404", rec.Code)
	}

	for i := 0; i < 2; i++ {
		if _, err := st.RecordMovement(ctx, "I001", -10, "", document.MovementConsumption); err != nil {
			t.Fatal(err)
		}
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/inventory/I001/prediction", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var p store.Prediction
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.CurrentStock != 80 || p.AvgMonthlyUsage == 0 {
		t.Errorf("prediction: %+v", p)
	}
}

func TestConsumptionValidation(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/v1/inventory/consumption?month=13&year=2026", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("month=13 status = %d, want 400", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/inventory/consumption?month=3&year=2026", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMovementsRangeValidation(t *testing.T) {
	e, _ := newTestServer(t)
	rec := doJSON(e, http.MethodGet, "/api/v1/inventory/movements?start=not-a-date", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad start status = %d, want 400", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/v1/inventory/movements?start=2026-03-01&end=2026-03-31", "")
	if rec.Code != http.StatusOK {
		t.Errorf("range status = %d", rec.Code)
	}
}
