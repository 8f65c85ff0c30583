package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"solisview/internal/production"
	"solisview/internal/revalidate"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *production.Service, reval *revalidate.Handler) {
	v1 := app.Group("/api/v1")

	v1.Get("/production/month", func(c *fiber.Ctx) error {
		result, err := service.Current(c.Context())
		if err != nil {
			// The page renders this message in place of the chart.
			return c.JSON(fiber.Map{"error": "Failed to fetch data"})
		}
		return c.JSON(monthResponse{MonthlyProduction: result})
	})

	v1.Post("/revalidate", reval.Handle)
}

// monthResponse keeps the error field present (and null) on success so the
// page consumer sees one stable shape.
type monthResponse struct {
	*production.MonthlyProduction
	Error *string `json:"error"`
}
