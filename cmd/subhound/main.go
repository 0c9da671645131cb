package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/subhound/subhound/app/controllers"
	"github.com/subhound/subhound/internal/pkg/billing"
	"github.com/subhound/subhound/internal/pkg/cache"
	"github.com/subhound/subhound/internal/pkg/database"
	"github.com/subhound/subhound/internal/pkg/dispatch"
	"github.com/subhound/subhound/internal/pkg/env"
	"github.com/subhound/subhound/internal/pkg/poller"
	"github.com/subhound/subhound/internal/pkg/router"
)

func main() {
	app, p := NewApplication()
	if p != nil {
		defer p.Stop()
	}

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", ""), env.GetEnv("APP_PORT", "6868")))
	log.Fatal(err)
}

// NewApplication wires both ingress channels onto the shared executor and
// returns the Fiber app plus the running poller (nil when polling is
// disabled).
func NewApplication() (*fiber.App, *poller.Poller) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	signingSecret := env.MustGetEnv("STRIPE_SIGNING_SECRET")
	api := billing.NewStripeClientFromEnv()
	svc := billing.NewServiceFromDB(database.GetDB(), api)
	executor := dispatch.NewExecutor(svc)

	var p *poller.Poller
	if env.GetEnv("POLL_ENABLED", "true") == "true" {
		seconds, err := strconv.Atoi(env.GetEnv("POLL_INTERVAL", "2"))
		if err != nil || seconds <= 0 {
			seconds = 2
		}
		p = poller.New(api, executor, time.Duration(seconds)*time.Second)
		p.Start()
	}

	app := fiber.New(fiber.Config{
		AppName: "subhound",
	})
	app.Use(recover.New(), logger.New())

	router.InstallRouter(app, controllers.NewWebhookController(signingSecret, executor))

	return app, p
}
