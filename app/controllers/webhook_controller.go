package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/subhound/subhound/internal/pkg/billing"
	metrics "github.com/subhound/subhound/internal/pkg/metrics/counter"
)

// Dispatcher hands accepted events to detached processing.
type Dispatcher interface {
	Dispatch(evt billing.Event)
}

// WebhookController accepts provider push deliveries. The response reflects
// only accept/reject of the delivery envelope; processing runs after the
// response is sent.
type WebhookController struct {
	signingSecret string
	executor      Dispatcher
}

// NewWebhookController wires the push channel to the delivery executor.
func NewWebhookController(signingSecret string, executor Dispatcher) *WebhookController {
	return &WebhookController{signingSecret: signingSecret, executor: executor}
}

// HandleWebhook verifies and parses one push delivery and hands it off.
func (wc *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := firstHeaderValue(c, "Stripe-Signature", "Signature")

	if err := billing.VerifySignature(signature, rawBody, wc.signingSecret, time.Now()); err != nil {
		log.Errorf("[Webhook] Rejected delivery: %v", err)
		if cerr := metrics.AddDeliveryRejected("signature"); cerr != nil {
			log.Debugf("[Webhook] Counter update failed: %v", cerr)
		}
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	var evt billing.Event
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		log.Errorf("[Webhook] Failed to parse delivery body: %v", err)
		if cerr := metrics.AddDeliveryRejected("parse"); cerr != nil {
			log.Debugf("[Webhook] Counter update failed: %v", cerr)
		}
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	if cerr := metrics.AddDeliveryAccepted("push"); cerr != nil {
		log.Debugf("[Webhook] Counter update failed: %v", cerr)
	}
	wc.executor.Dispatch(evt)

	return c.Status(fiber.StatusOK).Send(nil)
}

// HandleStats reports the delivery counters.
func HandleStats(c *fiber.Ctx) error {
	stats, err := metrics.Snapshot()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_unavailable"})
	}
	return c.JSON(stats)
}

func firstHeaderValue(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
