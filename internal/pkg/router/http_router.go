package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subhound/subhound/app/controllers"
)

type HttpRouter struct {
	webhooks *controllers.WebhookController
}

func NewHttpRouter(webhooks *controllers.WebhookController) *HttpRouter {
	return &HttpRouter{webhooks: webhooks}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	// The provider posts deliveries to the root path.
	app.Post("/", h.webhooks.HandleWebhook)

	app.Get("/stats", controllers.HandleStats)
	app.Get("/up", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
