// Package inventory exposes the supply catalog and its movement ledger
// over HTTP: item CRUD, stock adjustments, consumption reports and
// reorder predictions.
package inventory

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/document"
	"github.com/dentora/dentora/internal/platform/httpx"
	"github.com/dentora/dentora/internal/store"
	"github.com/dentora/dentora/pkg/pagination"
)

type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/inventory", h.ListItems)
	api.POST("/inventory", h.CreateItem)
	api.GET("/inventory/search", h.SearchItems)
	api.GET("/inventory/low-stock", h.LowStockItems)
	api.GET("/inventory/movements", h.ListMovements)
	api.GET("/inventory/consumption", h.MonthlyConsumption)
	api.GET("/inventory/:id", h.GetItem)
	api.PUT("/inventory/:id", h.UpdateItem)
	api.DELETE("/inventory/:id", h.DeleteItem)
	api.POST("/inventory/:id/adjust", h.AdjustStock)
	api.GET("/inventory/:id/movements", h.ItemMovements)
	api.GET("/inventory/:id/prediction", h.ReorderPrediction)
}

func (h *Handler) CreateItem(c echo.Context) error {
	var item document.InventoryItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.store.AddInventoryItem(c.Request().Context(), item)
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetItem(c echo.Context) error {
	item, err := h.store.GetInventoryItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "inventory item not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) ListItems(c echo.Context) error {
	items, err := h.store.ListInventory(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	pg := pagination.FromContext(c)
	lo, hi := pg.Slice(len(items))
	return c.JSON(http.StatusOK, pagination.NewResponse(items[lo:hi], len(items), pg.Limit, pg.Offset))
}

func (h *Handler) UpdateItem(c echo.Context) error {
	var patch store.InventoryPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.store.UpdateInventoryItem(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return httpx.StorageError(err)
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "inventory item not found")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	removed, err := h.store.DeleteInventoryItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "inventory item not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchItems(c echo.Context) error {
	items, err := h.store.SearchInventory(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) LowStockItems(c echo.Context) error {
	items, err := h.store.LowStockItems(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// AdjustStock applies a signed stock delta through the movement ledger.
// Negative quantities record consumption, positive ones restocking.
func (h *Handler) AdjustStock(c echo.Context) error {
	var body struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason"`
		Type     string `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	adj, err := h.store.RecordMovement(c.Request().Context(), c.Param("id"), body.Quantity, body.Reason, body.Type)
	if err != nil {
		return httpx.StorageError(err)
	}
	if adj == nil {
		return echo.NewHTTPError(http.StatusNotFound, "inventory item not found")
	}
	return c.JSON(http.StatusOK, adj)
}

// ListMovements returns the whole ledger, optionally narrowed to a
// start/end date range (RFC 3339 or plain dates).
func (h *Handler) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()
	startParam, endParam := c.QueryParam("start"), c.QueryParam("end")

	if startParam != "" || endParam != "" {
		start, err := parseTimeParam(startParam, time.Time{})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start date")
		}
		end, err := parseTimeParam(endParam, time.Now())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end date")
		}
		movements, err := h.store.MovementsByDateRange(ctx, start, end)
		if err != nil {
			return httpx.StorageError(err)
		}
		return c.JSON(http.StatusOK, movements)
	}

	movements, err := h.store.ListMovements(ctx)
	if err != nil {
		return httpx.StorageError(err)
	}
	pg := pagination.FromContext(c)
	lo, hi := pg.Slice(len(movements))
	return c.JSON(http.StatusOK, pagination.NewResponse(movements[lo:hi], len(movements), pg.Limit, pg.Offset))
}

func (h *Handler) ItemMovements(c echo.Context) error {
	movements, err := h.store.MovementsByItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, movements)
}

func (h *Handler) MonthlyConsumption(c echo.Context) error {
	now := time.Now()
	month, err := intParam(c.QueryParam("month"), int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
	}
	year, err := intParam(c.QueryParam("year"), now.Year())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	report, err := h.store.MonthlyConsumption(c.Request().Context(), month, year)
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ReorderPrediction(c echo.Context) error {
	prediction, err := h.store.ReorderPrediction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if prediction == nil {
		return echo.NewHTTPError(http.StatusNotFound, "not enough movement history for a prediction")
	}
	return c.JSON(http.StatusOK, prediction)
}

func parseTimeParam(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", v, time.Local)
}

func intParam(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
