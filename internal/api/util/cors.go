package util

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Preflight answers a CORS preflight request for a POST-only endpoint. It
// always responds 200 with a wildcard origin, regardless of the request
// headers.
func Preflight(ec echo.Context) error {
	header := ec.Response().Header()
	header.Set(echo.HeaderAccessControlAllowOrigin, "*")
	header.Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	header.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)

	return ec.NoContent(http.StatusOK)
}
