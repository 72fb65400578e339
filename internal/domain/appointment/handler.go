// Package appointment exposes the agenda over HTTP: scheduling,
// per-date and per-patient queries, and slot availability checks.
package appointment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/document"
	"github.com/dentora/dentora/internal/platform/httpx"
	"github.com/dentora/dentora/internal/storage"
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
	api.GET("/appointments", h.ListAppointments)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/availability", h.CheckAvailability)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a document.Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.store.AddAppointment(c.Request().Context(), a)
	if err != nil {
		if errors.Is(err, storage.ErrCapacityExceeded) || errors.Is(err, storage.ErrQuotaExceeded) {
			return httpx.StorageError(err)
		}
		// Unknown patient reference or invalid status.
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.store.GetAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

// ListAppointments serves the agenda. The date, patient and today query
// parameters narrow the result; without them the full list is paginated.
func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()

	switch {
	case c.QueryParam("date") != "":
		appts, err := h.store.AppointmentsByDate(ctx, c.QueryParam("date"))
		if err != nil {
			return httpx.StorageError(err)
		}
		return c.JSON(http.StatusOK, appts)
	case c.QueryParam("patient") != "":
		appts, err := h.store.AppointmentsByPatient(ctx, c.QueryParam("patient"))
		if err != nil {
			return httpx.StorageError(err)
		}
		return c.JSON(http.StatusOK, appts)
	case c.QueryParam("today") == "true":
		appts, err := h.store.TodayAppointments(ctx)
		if err != nil {
			return httpx.StorageError(err)
		}
		return c.JSON(http.StatusOK, appts)
	}

	appts, err := h.store.ListAppointments(ctx)
	if err != nil {
		return httpx.StorageError(err)
	}
	pg := pagination.FromContext(c)
	lo, hi := pg.Slice(len(appts))
	return c.JSON(http.StatusOK, pagination.NewResponse(appts[lo:hi], len(appts), pg.Limit, pg.Offset))
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	var patch store.AppointmentPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.store.UpdateAppointment(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, storage.ErrCapacityExceeded) || errors.Is(err, storage.ErrQuotaExceeded) {
			return httpx.StorageError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	removed, err := h.store.DeleteAppointment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckAvailability reports whether the (date, time) slot is free of
// non-cancelled appointments. exclude skips the appointment being
// rescheduled.
func (h *Handler) CheckAvailability(c echo.Context) error {
	date := c.QueryParam("date")
	timeOfDay := c.QueryParam("time")
	if date == "" || timeOfDay == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date and time query parameters are required")
	}
	available, err := h.store.IsTimeSlotAvailable(c.Request().Context(), date, timeOfDay, c.QueryParam("exclude"))
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": available})
}
