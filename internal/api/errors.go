package api

import (
	"errors"
	"net/http"

	"github.com/hbomb79/Cadence/internal/convert"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetHTTPErrorHandler returns an echo HTTP error handler which understands
// how to render a convert.Error. Only the error's Message is sent to the
// caller; the underlying cause is logged. Any other error (e.g. an echo
// routing error) is rendered in the same shape, using the message echo
// provides where one exists.
func GetHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ec echo.Context) {
		if ec.Response().Committed {
			log.Warnf("%s request to %s failed after response was committed: %v\n", ec.Request().Method, ec.Path(), err)
			return
		}

		status, message := statusAndMessage(err)

		var respErr error
		if ec.Request().Method == http.MethodHead {
			respErr = ec.NoContent(status)
		} else {
			respErr = ec.JSON(status, ErrorResponse{Error: message})
		}

		if respErr != nil {
			log.Errorf("Failed to write error response: %v\n", respErr)
		}
	}
}

func statusAndMessage(err error) (int, string) {
	var convErr *convert.Error
	if errors.As(err, &convErr) {
		if convErr.Cause != nil {
			log.Errorf("Request failure (%s), internal error: %v\n", convErr.Kind, convErr.Cause)
		}

		return statusForKind(convErr.Kind), convErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Internal != nil {
			log.Errorf("Request failure, internal error: %v\n", httpErr.Internal)
		}

		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			return httpErr.Code, msg
		}

		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	log.Errorf("Unrecognised error caused failure response: %v\n", err)
	return http.StatusInternalServerError, convert.MsgInternal
}

func statusForKind(kind convert.Kind) int {
	if kind == convert.BadRequest {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
