package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// datasetSizer reports how many flights are loaded.
type datasetSizer interface {
	Len() int
}

// Health returns a health-check endpoint for load balancers.  It answers
// 200 with the number of loaded flights; the dataset is loaded before the
// server starts, so a running process is always ready.
func Health(flights datasetSizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "flights": flights.Len()})
	}
}
