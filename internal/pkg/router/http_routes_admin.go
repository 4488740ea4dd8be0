package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/ai"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/middleware"
)

// registerAdminRoutes mounts everything guarded by the shared admin key.
func (h ApiRouter) registerAdminRoutes(api fiber.Router) {
	admin := middleware.AdminKey(h.deps.AdminKeyHash)

	if ec := h.deps.Export; ec != nil {
		api.Get("/export", admin, ec.HandleExport)
	}
	if rc := h.deps.Report; rc != nil {
		api.Get("/reports/generate", admin, rc.HandleGenerateReport)
	}

	scheduled := api.Group("/reports/scheduled", admin)
	if sc := h.deps.Schedule; sc != nil {
		scheduled.Get("/", sc.HandleList)
		scheduled.Post("/", sc.HandleCreate)
		scheduled.Post("/run-due", sc.HandleRunDue)
		scheduled.Get("/:id", sc.HandleGet)
		scheduled.Put("/:id", sc.HandleUpdate)
		scheduled.Delete("/:id", sc.HandleDelete)
		scheduled.Get("/:id/deliveries", sc.HandleDeliveries)
		scheduled.Post("/:id/run", sc.HandleRunNow)
	} else {
		scheduled.All("/*", unavailable("Database"))
	}

	insights := api.Group("/insights", admin)
	if ic := h.deps.Insights; ic != nil {
		insights.Get("/network", ic.HandleNetworkInsights)
		insights.Get("/at-risk", ic.HandleAtRiskUsers)
		insights.Get("/growth", ic.HandleGrowthOpportunities)
		insights.Get("/sponsors/:id/matches", ic.HandleSponsorMatches)
		insights.Get("/organizations/:id/sponsors", ic.HandleTargetSponsors(ai.TargetOrganization))
		insights.Get("/programs/:id/sponsors", ic.HandleTargetSponsors(ai.TargetProgram))

		api.Post("/notifications/smart", admin, ic.HandleSmartNotifications)
		api.Post("/notifications/re-engagement", admin, ic.HandleReEngagement)
		api.Post("/notifications/organization-support", admin, ic.HandleOrganizationSupport)
	} else {
		insights.All("/*", unavailable("Database"))
		api.Post("/notifications/*", admin, unavailable("Database"))
	}

	contact := api.Group("/admin/contact", admin)
	if cc := h.deps.Contact; cc != nil {
		contact.Get("/", cc.HandleList)
		contact.Get("/unread-count", cc.HandleUnreadCount)
		contact.Patch("/:id", cc.HandleUpdateStatus)
	} else {
		contact.All("/*", unavailable("Database"))
	}

	settings := api.Group("/admin/settings", admin)
	if stc := h.deps.Settings; stc != nil {
		settings.Get("/", stc.HandleList)
		settings.Put("/:key", stc.HandleUpdate)
	} else {
		settings.All("/*", unavailable("Database"))
	}

	if sc := h.deps.Schools; sc != nil {
		api.Post("/admin/districts", admin, sc.HandleCreateDistrict)
		api.Post("/admin/schools", admin, sc.HandleCreateSchool)
		api.Get("/admin/schools/:id/classrooms", admin, sc.HandleSchoolClassrooms)
	} else {
		api.All("/admin/districts", admin, unavailable("Database"))
		api.All("/admin/schools/*", admin, unavailable("Database"))
	}

	cache := api.Group("/admin/cache", admin)
	if acc := h.deps.AdminCache; acc != nil {
		cache.Get("/", acc.HandleList)
		cache.Delete("/", acc.HandleDelete)
	} else {
		cache.All("/*", unavailable("Cache"))
	}
}
