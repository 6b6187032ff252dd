package tracker

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type rateRequest struct {
	RatePerKm float64 `json:"rate_per_km" validate:"gt=0"`
}

// RegisterRoutes exposes read-only snapshots and the imperative tracking
// controls.
func RegisterRoutes(r fiber.Router, e *Engine) {
	r.Get("/snapshot", func(c *fiber.Ctx) error {
		return c.JSON(e.Snapshot())
	})

	r.Post("/trip/start", func(c *fiber.Ctx) error {
		if err := e.StartTrip(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(e.Snapshot())
	})

	r.Post("/trip/stop", func(c *fiber.Ctx) error {
		e.StopTrip(c.Context())
		return c.JSON(e.Snapshot())
	})

	r.Post("/work/start", func(c *fiber.Ctx) error {
		if err := e.StartWork(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(e.Snapshot())
	})

	r.Post("/work/stop", func(c *fiber.Ctx) error {
		e.StopWork(c.Context())
		return c.JSON(e.Snapshot())
	})

	r.Post("/work/toggle", func(c *fiber.Ctx) error {
		active, err := e.ToggleWork(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(fiber.Map{"active": active, "snapshot": e.Snapshot()})
	})

	r.Put("/rate", func(c *fiber.Ctx) error {
		var req rateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		e.SetRate(req.RatePerKm)
		return c.JSON(e.Snapshot())
	})
}
