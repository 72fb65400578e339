// Package patient exposes the patient roster over HTTP, including the
// treatment history and uploaded documents nested under each record.
package patient

import (
	"net/http"

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
	api.GET("/patients", h.ListPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/search", h.SearchPatients)
	api.GET("/patients/by-tag/:tag", h.PatientsByTag)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
	api.PUT("/patients/:id/photo", h.UpdatePhoto)
	api.PUT("/patients/:id/notes", h.UpdateNotes)
	api.POST("/patients/:id/tags/:tag", h.AddTag)
	api.DELETE("/patients/:id/tags/:tag", h.RemoveTag)

	api.GET("/patients/:id/treatments", h.ListTreatments)
	api.POST("/patients/:id/treatments", h.CreateTreatment)
	api.PUT("/patients/:id/treatments/:treatmentId", h.UpdateTreatment)
	api.DELETE("/patients/:id/treatments/:treatmentId", h.DeleteTreatment)
	api.PUT("/patients/:id/treatments/:treatmentId/status", h.UpdateTreatmentStatus)

	api.GET("/patients/:id/documents", h.ListDocuments)
	api.POST("/patients/:id/documents", h.CreateDocument)
	api.DELETE("/patients/:id/documents/:documentId", h.DeleteDocument)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p document.Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.store.AddPatient(c.Request().Context(), p)
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.store.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	patients, err := h.store.ListPatients(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	pg := pagination.FromContext(c)
	lo, hi := pg.Slice(len(patients))
	return c.JSON(http.StatusOK, pagination.NewResponse(patients[lo:hi], len(patients), pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var patch store.PatientPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.store.UpdatePatient(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	removed, err := h.store.DeletePatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchPatients(c echo.Context) error {
	patients, err := h.store.SearchPatients(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) PatientsByTag(c echo.Context) error {
	patients, err := h.store.PatientsByTag(c.Request().Context(), c.Param("tag"))
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) UpdatePhoto(c echo.Context) error {
	var body struct {
		Photo string `json:"photo"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.store.UpdatePatientPhoto(c.Request().Context(), c.Param("id"), body.Photo)
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.store.UpdatePrivateNotes(c.Request().Context(), c.Param("id"), body.Notes)
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) AddTag(c echo.Context) error {
	p, err := h.store.AddPatientTag(c.Request().Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) RemoveTag(c echo.Context) error {
	p, err := h.store.RemovePatientTag(c.Request().Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

// -- Treatments --

func (h *Handler) ListTreatments(c echo.Context) error {
	p, err := h.store.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p.Treatments)
}

func (h *Handler) CreateTreatment(c echo.Context) error {
	var t document.Treatment
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.store.AddTreatment(c.Request().Context(), c.Param("id"), t)
	if err != nil {
		return httpx.StorageError(err)
	}
	if created == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateTreatment(c echo.Context) error {
	var patch store.TreatmentPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.store.UpdateTreatment(c.Request().Context(), c.Param("id"), c.Param("treatmentId"), patch)
	if err != nil {
		return httpx.StorageError(err)
	}
	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTreatmentStatus(c echo.Context) error {
	var body struct {
		Paid bool `json:"paid"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t, err := h.store.UpdateTreatmentStatus(c.Request().Context(), c.Param("id"), c.Param("treatmentId"), body.Paid)
	if err != nil {
		return httpx.StorageError(err)
	}
	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTreatment(c echo.Context) error {
	removed, err := h.store.DeleteTreatment(c.Request().Context(), c.Param("id"), c.Param("treatmentId"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "treatment not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Documents --

func (h *Handler) ListDocuments(c echo.Context) error {
	p, err := h.store.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p.Documents)
}

func (h *Handler) CreateDocument(c echo.Context) error {
	var d document.PatientDocument
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.store.AddDocument(c.Request().Context(), c.Param("id"), d)
	if err != nil {
		return httpx.StorageError(err)
	}
	if created == nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) DeleteDocument(c echo.Context) error {
	removed, err := h.store.DeleteDocument(c.Request().Context(), c.Param("id"), c.Param("documentId"))
	if err != nil {
		return httpx.StorageError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return c.NoContent(http.StatusNoContent)
}
