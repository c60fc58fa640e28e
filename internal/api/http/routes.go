package httpapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-subscription-bot/internal/store"
)

var validate = validator.New()

// Trigger requests an immediate reconciliation pass.
type Trigger interface {
	TriggerNow()
	Running() bool
}

// RegisterRoutes wires the admin HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st *store.Store, trigger Trigger) {
	v1 := app.Group("/api/v1")

	v1.Get("/subscriptions", func(c *fiber.Ctx) error {
		q, err := parseSubscriptionQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		find := &store.FindSubscription{}
		if q.ChatID != nil {
			find.ChatID = q.ChatID
		}

		subs, err := st.ListSubscriptions(c.UserContext(), find)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list subscriptions")
		}
		if subs == nil {
			subs = []*store.Subscription{}
		}

		return c.JSON(fiber.Map{
			"subscriptions": subs,
			"count":         len(subs),
		})
	})

	v1.Post("/reconcile", func(c *fiber.Ctx) error {
		if trigger == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "scheduler is not running")
		}
		if trigger.Running() {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "already running"})
		}
		trigger.TriggerNow()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "scheduled"})
	})
}

// subscriptionQuery holds query parameters for the subscriptions endpoint.
type subscriptionQuery struct {
	ChatID *int64 `validate:"omitempty,ne=0"`
}

func parseSubscriptionQuery(c *fiber.Ctx) (subscriptionQuery, error) {
	var q subscriptionQuery

	if raw := c.Query("chat_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, fiber.NewError(fiber.StatusBadRequest, "chat_id must be an integer")
		}
		q.ChatID = &id
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
