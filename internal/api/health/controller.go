package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const statusOK = "ok"

type (
	// Tool reports whether the conversion tool can currently be found.
	Tool interface {
		Available() bool
	}

	// Tracker reports how many conversions are currently in flight.
	Tracker interface {
		ActiveConversions() int
	}

	Controller struct {
		tool    Tool
		tracker Tracker
	}

	healthDto struct {
		Status            string `json:"status"`
		ToolAvailable     bool   `json:"tool_available"`
		ActiveConversions int    `json:"active_conversions"`
	}
)

func New(tool Tool, tracker Tracker) *Controller {
	return &Controller{tool: tool, tracker: tracker}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.get)
}

// get always responds 200 while the server is accepting requests; a
// missing tool is reported in the body rather than as a failure so that
// liveness checks are not affected by it.
func (controller *Controller) get(ec echo.Context) error {
	return ec.JSON(http.StatusOK, healthDto{
		Status:            statusOK,
		ToolAvailable:     controller.tool.Available(),
		ActiveConversions: controller.tracker.ActiveConversions(),
	})
}
