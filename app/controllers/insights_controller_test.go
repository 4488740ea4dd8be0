package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/app/repository"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/ai"
)

var insightsNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type userDirectory struct {
	repository.UserRepository
	users []models.User
}

func (d *userDirectory) ListActive(_ context.Context, limit int) ([]models.User, error) {
	if len(d.users) > limit {
		return d.users[:limit], nil
	}
	return d.users, nil
}

func (d *userDirectory) ListByUIDs(_ context.Context, uids []string) ([]models.User, error) {
	var out []models.User
	for _, u := range d.users {
		for _, uid := range uids {
			if u.UID == uid {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (d *userDirectory) GetByUID(_ context.Context, uid string) (*models.User, error) {
	for i := range d.users {
		if d.users[i].UID == uid {
			return &d.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type sponsorDirectory struct {
	repository.SponsorRepository
	sponsors []models.Sponsor
}

func (d *sponsorDirectory) GetByID(_ context.Context, id uint) (*models.Sponsor, error) {
	for i := range d.sponsors {
		if d.sponsors[i].ID == id {
			return &d.sponsors[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (d *sponsorDirectory) ListActive(context.Context) ([]models.Sponsor, error) {
	return d.sponsors, nil
}

type organizationDirectory struct {
	repository.OrganizationRepository
	orgs []models.Organization
}

func (d *organizationDirectory) GetByID(_ context.Context, id uint) (*models.Organization, error) {
	for i := range d.orgs {
		if d.orgs[i].ID == id {
			return &d.orgs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type programDirectory struct {
	repository.ProgramRepository
	programs []models.Program
}

func (d *programDirectory) GetByID(_ context.Context, id uint) (*models.Program, error) {
	for i := range d.programs {
		if d.programs[i].ID == id {
			return &d.programs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type notificationLog struct {
	stored []models.Notification
}

func (l *notificationLog) CreateNotifications(_ context.Context, list []models.Notification) error {
	l.stored = append(l.stored, list...)
	return nil
}

func (l *notificationLog) ListByUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range l.stored {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

type staticInsights struct {
	network ai.NetworkData
	regions ai.RegionData
	targets []ai.MatchTarget
}

func (s *staticInsights) NetworkData(context.Context, time.Time) (*ai.NetworkData, error) {
	return &s.network, nil
}

func (s *staticInsights) RegionData(context.Context) (*ai.RegionData, error) {
	return &s.regions, nil
}

func (s *staticInsights) MatchTargets(context.Context) ([]ai.MatchTarget, error) {
	return s.targets, nil
}

type insightsFixture struct {
	app           *fiber.App
	notifications *notificationLog
}

func newInsightsFixture(userID string) *insightsFixture {
	recent := insightsNow.Add(-2 * 24 * time.Hour)
	stale := insightsNow.Add(-45 * 24 * time.Hour)
	notifications := &notificationLog{}
	repos := &repository.Repositories{
		User: &userDirectory{users: []models.User{
			{UID: "active-1", DisplayName: "Ada Active", Role: models.ROLE_STUDENT, SessionCount: 12, EngagementScore: 80, LastActiveAt: &recent},
			{UID: "stale-1", DisplayName: "Sam Stale", Role: models.ROLE_MENTOR, SessionCount: 1, EngagementScore: 5, LastActiveAt: &stale},
		}},
		Sponsor: &sponsorDirectory{sponsors: []models.Sponsor{
			{ID: 7, OrgName: "Skyward Foundation", Region: "FL", ProgramSupport: "aviation", Status: "active"},
		}},
		Organization: &organizationDirectory{orgs: []models.Organization{
			{ID: 3, Name: "Tampa Aero Club", State: "FL", Category: "aviation", StudentsImpacted: 120},
		}},
		Program:      &programDirectory{programs: []models.Program{{ID: 5, Name: "Drone Camp", Region: "FL", Category: "stem"}}},
		Notification: notifications,
	}
	source := &staticInsights{
		regions: ai.RegionData{
			UsersByRegion:    map[string]int64{"FL": 80, "GA": 10},
			ProgramsByRegion: map[string]int64{"FL": 1},
			SponsorsByRegion: map[string]int64{"FL": 2},
		},
		targets: []ai.MatchTarget{
			ai.OrganizationTarget(models.Organization{ID: 3, Name: "Tampa Aero Club", State: "FL", Category: "aviation"}),
			ai.ProgramTarget(models.Program{ID: 5, Name: "Drone Camp", Region: "TX", Category: "stem"}),
		},
	}
	source.network.Users.Total = 90

	ic := NewInsightsController(ai.NewService(ai.Config{}, ai.WithClock(func() time.Time { return insightsNow })), source, repos)
	ic.now = func() time.Time { return insightsNow }

	app := newTestApp(userID)
	app.Get("/insights/network", ic.HandleNetworkInsights)
	app.Get("/insights/at-risk", ic.HandleAtRiskUsers)
	app.Get("/insights/growth", ic.HandleGrowthOpportunities)
	app.Get("/insights/sponsors/:id/matches", ic.HandleSponsorMatches)
	app.Get("/insights/organizations/:id/sponsors", ic.HandleTargetSponsors(ai.TargetOrganization))
	app.Get("/insights/programs/:id/sponsors", ic.HandleTargetSponsors(ai.TargetProgram))
	app.Post("/notifications/smart", ic.HandleSmartNotifications)
	app.Post("/notifications/re-engagement", ic.HandleReEngagement)
	app.Post("/notifications/organization-support", ic.HandleOrganizationSupport)
	app.Get("/notifications", ic.HandleListNotifications)
	return &insightsFixture{app: app, notifications: notifications}
}

func TestNetworkInsightsFallback(t *testing.T) {
	f := newInsightsFixture("")
	resp, body := doRequest(t, f.app, http.MethodGet, "/insights/network", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeMap(t, body)
	assert.Equal(t, ai.SourceFallback, got["source"])
	assert.NotEmpty(t, got["summary"])
}

func TestAtRiskUsers(t *testing.T) {
	f := newInsightsFixture("")
	resp, body := doRequest(t, f.app, http.MethodGet, "/insights/at-risk?limit=0", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeMap(t, body)
	assert.EqualValues(t, 1, got["total"])
	assert.EqualValues(t, 2, got["scanned"])
	users := got["users"].([]interface{})
	flagged := users[0].(map[string]interface{})
	assert.Equal(t, ai.RiskHigh, flagged["riskLevel"])
	assert.Equal(t, "stale-1", flagged["user"].(map[string]interface{})["uid"])
}

func TestGrowthOpportunities(t *testing.T) {
	f := newInsightsFixture("")
	resp, body := doRequest(t, f.app, http.MethodGet, "/insights/growth", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"opportunities":[{"region":"FL","opportunity":"High user demand with limited programs","priority":"high"}]}`, string(body))
}

func TestSponsorMatching(t *testing.T) {
	f := newInsightsFixture("")

	resp, body := doRequest(t, f.app, http.MethodGet, "/insights/sponsors/7/matches", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	got := decodeMap(t, body)
	assert.Len(t, got["matches"], 2)
	assert.Equal(t, "Skyward Foundation", got["sponsor"].(map[string]interface{})["orgName"])

	resp, body = doRequest(t, f.app, http.MethodGet, "/insights/organizations/3/sponsors", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	got = decodeMap(t, body)
	assert.Equal(t, "Tampa Aero Club", got["target"].(map[string]interface{})["name"])
	assert.Len(t, got["matches"], 1)

	resp, _ = doRequest(t, f.app, http.MethodGet, "/insights/programs/5/sponsors", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	tests := []struct {
		target string
		status int
		msg    string
	}{
		{"/insights/sponsors/99/matches", fiber.StatusNotFound, "Sponsor not found"},
		{"/insights/sponsors/zero/matches", fiber.StatusBadRequest, "Invalid sponsor id"},
		{"/insights/organizations/99/sponsors", fiber.StatusNotFound, "Organization not found"},
		{"/insights/programs/99/sponsors", fiber.StatusNotFound, "Program not found"},
		{"/insights/programs/0/sponsors", fiber.StatusBadRequest, "Invalid program id"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp, body := doRequest(t, f.app, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.msg, decodeMap(t, body)["error"])
		})
	}
}

func TestSmartNotifications(t *testing.T) {
	f := newInsightsFixture("")

	resp, body := doRequest(t, f.app, http.MethodPost, "/notifications/smart", map[string]interface{}{
		"userIds": []string{"active-1", "stale-1", "unknown"},
		"type":    "event_reminder",
		"data":    map[string]interface{}{"eventName": "Fly-in", "actionUrl": "/events/1"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	assert.EqualValues(t, 2, decodeMap(t, body)["count"])
	require.Len(t, f.notifications.stored, 2)
	for _, n := range f.notifications.stored {
		assert.Equal(t, "event_reminder", n.Type)
		assert.Equal(t, "/events/1", n.ActionURL)
		assert.NotEmpty(t, n.Title)
	}

	resp, body = doRequest(t, f.app, http.MethodPost, "/notifications/smart", map[string]interface{}{"userIds": []string{"active-1"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields: userIds, type", decodeMap(t, body)["error"])

	many := make([]string, maxSmartRecipients+1)
	for i := range many {
		many[i] = "u"
	}
	resp, body = doRequest(t, f.app, http.MethodPost, "/notifications/smart", map[string]interface{}{"userIds": many, "type": "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Too many recipients", decodeMap(t, body)["error"])
}

func TestReEngagement(t *testing.T) {
	f := newInsightsFixture("")

	resp, body := doRequest(t, f.app, http.MethodPost, "/notifications/re-engagement", map[string]interface{}{"userId": "stale-1"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	got := decodeMap(t, body)
	assert.Equal(t, "stale-1", got["userId"])
	assert.Equal(t, models.NotificationPriorityHigh, got["priority"])
	assert.Equal(t, "re_engagement", got["category"])

	resp, body = doRequest(t, f.app, http.MethodPost, "/notifications/re-engagement", map[string]interface{}{"userId": "active-1", "inactiveDays": 10})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, models.NotificationPriorityMedium, decodeMap(t, body)["priority"])

	resp, _ = doRequest(t, f.app, http.MethodPost, "/notifications/re-engagement", map[string]interface{}{"userId": "ghost"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, f.app, http.MethodPost, "/notifications/re-engagement", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOrganizationSupportAndList(t *testing.T) {
	f := newInsightsFixture(models.ROLE_ADMIN)

	resp, body := doRequest(t, f.app, http.MethodPost, "/notifications/organization-support", map[string]interface{}{
		"organizationId": 3,
		"issue":          "low enrollment",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	got := decodeMap(t, body)
	assert.Equal(t, "Tampa Aero Club may need assistance: low enrollment", got["message"])
	assert.Equal(t, "/dashboard/admin/organizations/3", got["actionUrl"])

	resp, _ = doRequest(t, f.app, http.MethodPost, "/notifications/organization-support", map[string]interface{}{"organizationId": 42, "issue": "x"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, f.app, http.MethodPost, "/notifications/organization-support", map[string]interface{}{"organizationId": 3})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = doRequest(t, f.app, http.MethodGet, "/notifications", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeMap(t, body)["notifications"], 1)
}

func TestInactiveDays(t *testing.T) {
	last := insightsNow.Add(-72 * time.Hour)
	assert.Equal(t, 3, inactiveDays(&models.User{LastActiveAt: &last}, insightsNow))
	assert.Equal(t, 10, inactiveDays(&models.User{CreatedAt: insightsNow.Add(-240 * time.Hour)}, insightsNow))
}
