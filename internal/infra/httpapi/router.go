package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

// NewApp builds the fiber app with every route registered.
func NewApp(h *Handlers, logger *logrus.Entry) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "fleet_backoffice",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
			}
			return Error(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(requestLogger(logger))

	app.Get("/health", h.Health)

	api := app.Group("/api")

	trips := api.Group("/trips")
	trips.Post("/", h.CreateTrip)
	trips.Get("/", h.ListTrips)
	trips.Get("/:id", h.GetTrip)
	trips.Patch("/:id", h.PatchTrip)

	notifs := api.Group("/notifications")
	notifs.Get("/next", h.NextNotification)
	notifs.Post("/run", h.RunNotification)
	notifs.Get("/runs", h.ListRuns)

	return app
}

func requestLogger(logger *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Method(),
			"path":     c.Path(),
			"status":   c.Response().StatusCode(),
			"duration": time.Since(start).String(),
		}).Debug("Request handled")
		return err
	}
}
