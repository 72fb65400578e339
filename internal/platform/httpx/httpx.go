// Package httpx maps store and storage errors onto HTTP responses so
// every domain handler reports them the same way.
package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/storage"
)

// StorageError translates a failed store call into an echo HTTP error.
// Capacity refusals and host quota rejections become 507 Insufficient
// Storage; anything else is a plain 500.
func StorageError(err error) error {
	if errors.Is(err, storage.ErrCapacityExceeded) || errors.Is(err, storage.ErrQuotaExceeded) {
		return echo.NewHTTPError(http.StatusInsufficientStorage, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
