package fare

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type QuoteRequest struct {
	DistanceKm float64 `json:"distance_km" validate:"gte=0"`
	RatePerKm  float64 `json:"rate_per_km" validate:"gte=0"`
}

type QuoteResponse struct {
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

// RegisterRoutes exposes the manual fare calculator.
func RegisterRoutes(r fiber.Router, formatter *Formatter) {
	r.Post("/quote", func(c *fiber.Ctx) error {
		var req QuoteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		total := Fare(req.DistanceKm, req.RatePerKm)
		return c.JSON(QuoteResponse{Total: total, Formatted: formatter.Format(total)})
	})
}
