// Package admin exposes the operational surface: dashboard stats,
// storage diagnostics, clinic settings and the export/import/clear
// lifecycle of the whole document.
package admin

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/document"
	"github.com/dentora/dentora/internal/platform/httpx"
	"github.com/dentora/dentora/internal/store"
)

// maxImportBytes caps uploaded documents well above the storage hard
// limit so oversized payloads fail fast instead of buffering.
const maxImportBytes = 16 * 1024 * 1024

type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/stats", h.GetStats)
	api.GET("/admin/storage", h.GetStorageInfo)
	api.GET("/admin/export", h.ExportDocument)
	api.POST("/admin/import", h.ImportDocument)
	api.POST("/admin/clear", h.ClearDocument)
	api.GET("/admin/settings", h.GetSettings)
	api.PUT("/admin/settings", h.UpdateSettings)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetStorageInfo(c echo.Context) error {
	info, err := h.store.Gateway().SizeInfo(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// ExportDocument streams the whole document as a JSON download.
func (h *Handler) ExportDocument(c echo.Context) error {
	name, data, err := h.store.Export(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// ImportDocument replaces the persisted document with the uploaded one.
// Malformed JSON is a 400 with ok=false; the previous state stays put.
func (h *Handler) ImportDocument(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	ok, err := h.store.Import(c.Request().Context(), data)
	if err != nil {
		return httpx.StorageError(err)
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]bool{"ok": false})
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ClearDocument wipes the stored document and reseeds it.
func (h *Handler) ClearDocument(c echo.Context) error {
	doc, err := h.store.Clear(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) GetSettings(c echo.Context) error {
	settings, err := h.store.Settings(c.Request().Context())
	if err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var settings document.Settings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.store.UpdateSettings(c.Request().Context(), settings); err != nil {
		return httpx.StorageError(err)
	}
	return c.JSON(http.StatusOK, settings)
}
