package middleware

import "github.com/gofiber/fiber/v2"

const (
	// ActorHeader carries the authenticated user id set by the access-control
	// gateway in front of this service. The core trusts it as-is; permission
	// checks (owner-or-admin) happen at the gateway.
	ActorHeader = "X-User-ID"
	// ActorLocalKey is the context locals key for the actor id.
	ActorLocalKey = "actor_id"
)

// Actor copies the gateway-supplied user id into context locals so handlers
// can pass it to the services as an explicit parameter.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(ActorLocalKey, c.Get(ActorHeader))
		return c.Next()
	}
}

// ActorFromCtx returns the actor id stored by Actor, or "".
func ActorFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(ActorLocalKey).(string); ok {
		return v
	}
	return ""
}
