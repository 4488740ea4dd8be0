package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/app/repository"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/ai"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

const (
	defaultAtRiskScan  = 500
	maxAtRiskScan      = 2000
	maxSmartRecipients = 500
)

// InsightsSource provides the aggregates the AI features reason over.
type InsightsSource interface {
	NetworkData(ctx context.Context, now time.Time) (*ai.NetworkData, error)
	RegionData(ctx context.Context) (*ai.RegionData, error)
	MatchTargets(ctx context.Context) ([]ai.MatchTarget, error)
}

// InsightsController serves AI insights, sponsor matching and generated
// notifications. Every feature answers from rules when no AI key is set.
type InsightsController struct {
	ai            *ai.Service
	source        InsightsSource
	users         repository.UserRepository
	sponsors      repository.SponsorRepository
	organizations repository.OrganizationRepository
	programs      repository.ProgramRepository
	notifications repository.NotificationRepository
	now           func() time.Time
}

func NewInsightsController(svc *ai.Service, source InsightsSource, repos *repository.Repositories) *InsightsController {
	return &InsightsController{
		ai:            svc,
		source:        source,
		users:         repos.User,
		sponsors:      repos.Sponsor,
		organizations: repos.Organization,
		programs:      repos.Program,
		notifications: repos.Notification,
		now:           time.Now,
	}
}

// GET /api/insights/network
func (ic *InsightsController) HandleNetworkInsights(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	data, err := ic.source.NetworkData(ctx, ic.now())
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load network data")
	}
	return c.JSON(ic.ai.NetworkInsights(ctx, *data))
}

// GET /api/insights/at-risk?limit=
func (ic *InsightsController) HandleAtRiskUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultAtRiskScan)
	if limit <= 0 || limit > maxAtRiskScan {
		limit = defaultAtRiskScan
	}
	users, err := ic.users.ListActive(c.UserContext(), limit)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load users")
	}
	flagged := ic.ai.AtRiskUsers(users)
	return c.JSON(fiber.Map{"users": flagged, "total": len(flagged), "scanned": len(users)})
}

// GET /api/insights/growth
func (ic *InsightsController) HandleGrowthOpportunities(c *fiber.Ctx) error {
	data, err := ic.source.RegionData(c.UserContext())
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load region data")
	}
	return c.JSON(fiber.Map{"opportunities": ic.ai.GrowthOpportunities(*data)})
}

// HandleSponsorMatches ranks organizations and programs for a sponsor.
// GET /api/insights/sponsors/:id/matches
func (ic *InsightsController) HandleSponsorMatches(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid sponsor id")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sponsor, err := ic.sponsors.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Sponsor not found")
	}
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load sponsor")
	}
	targets, err := ic.source.MatchTargets(ctx)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load match targets")
	}

	matches, err := ic.ai.BestTargetsForSponsor(ctx, *sponsor, targets)
	if err != nil {
		return upstreamError(c, "AI", err, "Sponsor matching failed")
	}
	return c.JSON(fiber.Map{"sponsor": sponsor, "matches": matches})
}

// HandleTargetSponsors ranks active sponsors for an organization or a
// program, depending on the route.
// GET /api/insights/organizations/:id/sponsors
// GET /api/insights/programs/:id/sponsors
func (ic *InsightsController) HandleTargetSponsors(targetType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uintParam(c, "id")
		if !ok {
			return errorJSON(c, fiber.StatusBadRequest, "Invalid "+targetType+" id")
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		target, err := ic.loadTarget(ctx, targetType, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, strings.ToUpper(targetType[:1])+targetType[1:]+" not found")
		}
		if err != nil {
			return upstreamError(c, "AI", err, "Failed to load match target")
		}
		sponsors, err := ic.sponsors.ListActive(ctx)
		if err != nil {
			return upstreamError(c, "AI", err, "Failed to load sponsors")
		}

		matches, err := ic.ai.BestSponsorsForTarget(ctx, sponsors, target)
		if err != nil {
			return upstreamError(c, "AI", err, "Sponsor matching failed")
		}
		return c.JSON(fiber.Map{"target": target, "matches": matches})
	}
}

func (ic *InsightsController) loadTarget(ctx context.Context, targetType string, id uint) (ai.MatchTarget, error) {
	if targetType == ai.TargetProgram {
		p, err := ic.programs.GetByID(ctx, id)
		if err != nil {
			return ai.MatchTarget{}, err
		}
		return ai.ProgramTarget(*p), nil
	}
	o, err := ic.organizations.GetByID(ctx, id)
	if err != nil {
		return ai.MatchTarget{}, err
	}
	return ai.OrganizationTarget(*o), nil
}

type smartNotificationRequest struct {
	UserIDs []string               `json:"userIds"`
	Type    string                 `json:"type"`
	Data    map[string]interface{} `json:"data"`
}

// HandleSmartNotifications generates and stores one notification per user.
// POST /api/notifications/smart
func (ic *InsightsController) HandleSmartNotifications(c *fiber.Ctx) error {
	var req smartNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" || len(req.UserIDs) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields: userIds, type")
	}
	if len(req.UserIDs) > maxSmartRecipients {
		return errorJSON(c, fiber.StatusBadRequest, "Too many recipients")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := ic.users.ListByUIDs(ctx, req.UserIDs)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load users")
	}
	list, err := ic.ai.SmartNotifications(ctx, ic.notifications, users, req.Type, req.Data)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to create notifications")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"notifications": list, "count": len(list)})
}

type reEngagementRequest struct {
	UserID         string                 `json:"userId"`
	InactiveDays   int                    `json:"inactiveDays"`
	RecentActivity map[string]interface{} `json:"recentActivity"`
}

// POST /api/notifications/re-engagement
func (ic *InsightsController) HandleReEngagement(c *fiber.Ctx) error {
	var req reEngagementRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required field: userId")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ic.users.GetByUID(ctx, req.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load user")
	}
	if req.InactiveDays <= 0 {
		req.InactiveDays = inactiveDays(user, ic.now())
	}

	n, err := ic.ai.ReEngagement(ctx, ic.notifications, *user, req.InactiveDays, req.RecentActivity)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to create notification")
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

type organizationSupportRequest struct {
	OrganizationID uint   `json:"organizationId"`
	Issue          string `json:"issue"`
}

// POST /api/notifications/organization-support
func (ic *InsightsController) HandleOrganizationSupport(c *fiber.Ctx) error {
	var req organizationSupportRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Issue = strings.TrimSpace(req.Issue)
	if req.OrganizationID == 0 || req.Issue == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields: organizationId, issue")
	}

	org, err := ic.organizations.GetByID(c.UserContext(), req.OrganizationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Organization not found")
	}
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load organization")
	}

	n, err := ic.ai.OrganizationSupport(c.UserContext(), ic.notifications, *org, req.Issue)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to create notification")
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

// HandleListNotifications returns the caller's newest notifications.
// GET /api/notifications?limit=
func (ic *InsightsController) HandleListNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	list, err := ic.notifications.ListByUser(c.UserContext(), usercontext.GetUserID(c), limit)
	if err != nil {
		return upstreamError(c, "AI", err, "Failed to load notifications")
	}
	return c.JSON(fiber.Map{"notifications": list})
}

func inactiveDays(u *models.User, now time.Time) int {
	last := u.CreatedAt
	if u.LastActiveAt != nil {
		last = *u.LastActiveAt
	}
	return int(now.Sub(last) / (24 * time.Hour))
}
