package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/middleware"
)

const defaultRateLimit = 120

type ApiRouter struct {
	deps Deps
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", h.limiter())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hidden Treasures Network API",
		})
	})

	h.registerBillingRoutes(api)
	h.registerPublicRoutes(api)
	h.registerUserRoutes(api)
	h.registerAdminRoutes(api)
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h ApiRouter) limiter() fiber.Handler {
	limit := h.deps.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		Storage:    h.deps.LimiterStorage,
		// payment provider retries arrive in bursts and are signature checked
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/webhooks/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
	})
}

func (h ApiRouter) registerBillingRoutes(api fiber.Router) {
	bc := h.deps.Billing
	if bc == nil {
		api.All("/subscriptions/*", unavailable("Database"))
		api.All("/webhooks/*", unavailable("Database"))
		return
	}
	subs := api.Group("/subscriptions")
	subs.Post("/create-checkout", bc.HandleCreateCheckout)
	subs.Post("/create-portal", bc.HandleCreatePortal)
	subs.Get("/status", bc.HandleStatus)
	subs.Get("/tiers", bc.HandleTiers)

	api.Post("/webhooks/payment-provider", bc.HandleWebhook)
	api.Post("/webhooks/stripe", bc.HandleWebhook)
}

func (h ApiRouter) registerPublicRoutes(api fiber.Router) {
	// admin callers may send raw html; everyone else is held to templates
	if h.deps.Email != nil {
		api.Post("/email/send", middleware.DetectAdminKey(h.deps.AdminKeyHash), h.deps.Email.HandleSendEmail)
	} else {
		api.Post("/email/send", unavailable("Email"))
	}

	auth := api.Group("/auth")
	if ac := h.deps.Auth; ac != nil {
		auth.Post("/register", ac.HandleRegister)
		auth.Post("/login", ac.HandleLogin)
		auth.Post("/logout", ac.HandleLogout)
		auth.Get("/me", middleware.RequireUser, ac.HandleMe)
	} else {
		auth.All("/*", unavailable("Database"))
	}

	if cc := h.deps.Contact; cc != nil {
		api.Post("/contact", cc.HandleSubmit)
	} else {
		api.Post("/contact", unavailable("Database"))
	}

	if sc := h.deps.Schools; sc != nil {
		api.Get("/districts", sc.HandleListDistricts)
		api.Get("/schools", sc.HandleListSchools)
		api.Get("/schools/:id", sc.HandleGetSchool)
	} else {
		api.Get("/districts", unavailable("Database"))
		api.Get("/schools/*", unavailable("Database"))
	}
}

func (h ApiRouter) registerUserRoutes(api fiber.Router) {
	messages := api.Group("/messages", middleware.RequireUser)
	if mc := h.deps.Messages; mc != nil {
		messages.Get("/threads", mc.HandleListThreads)
		messages.Post("/threads", mc.HandleCreateThread)
		messages.Get("/threads/:id", mc.HandleGetThread)
		messages.Post("/threads/:id/messages", mc.HandlePostMessage)
	} else {
		messages.All("/*", unavailable("Database"))
	}

	if ic := h.deps.Insights; ic != nil {
		api.Get("/notifications", middleware.RequireUser, ic.HandleListNotifications)
	} else {
		api.Get("/notifications", middleware.RequireUser, unavailable("Database"))
	}

	classrooms := api.Group("/classrooms", middleware.RequireUser)
	if sc := h.deps.Schools; sc != nil {
		classrooms.Get("/", sc.HandleListClassrooms)
		classrooms.Post("/", sc.HandleCreateClassroom)
		classrooms.Post("/join", sc.HandleJoin)
		classrooms.Get("/:id", sc.HandleGetClassroom)
		classrooms.Post("/:id/join-code", sc.HandleRegenerateJoinCode)
		classrooms.Get("/:id/roster", sc.HandleRoster)
		classrooms.Post("/:id/roster", sc.HandleAddStudent)
		classrooms.Patch("/:id/roster/:rosterId", sc.HandleUpdateEnrollment)
	} else {
		classrooms.All("/*", unavailable("Database"))
	}
}
