package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	return f.reply, f.err
}

type memoryNotifications struct {
	stored []models.Notification
}

func (m *memoryNotifications) CreateNotifications(_ context.Context, list []models.Notification) error {
	for i := range list {
		list[i].ID = uint(len(m.stored) + 1)
		m.stored = append(m.stored, list[i])
	}
	return nil
}

var aiNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func fallbackService() *Service {
	return NewService(Config{}, WithClock(func() time.Time { return aiNow }))
}

func aiService(c Completer) *Service {
	return NewService(Config{}, WithCompleter(c), WithClock(func() time.Time { return aiNow }))
}

func TestRedactPII(t *testing.T) {
	in := map[string]interface{}{
		"Email":       "jane@example.com",
		"phoneNumber": "555-123-4567",
		"name":        "Jane Doe",
		"displayName": "Émile",
		"notes":       "call 555.123.4567 or mail jane@example.com, ssn 123-45-6789",
		"nested":      []interface{}{map[string]interface{}{"password": "hunter2", "count": 3.0}},
	}

	out := RedactPII(in).(map[string]interface{})
	assert.Equal(t, "[REDACTED]", out["Email"])
	assert.Equal(t, "[REDACTED]", out["phoneNumber"])
	assert.Equal(t, "J***", out["name"])
	assert.Equal(t, "É***", out["displayName"])
	assert.Equal(t, "call [PHONE] or mail [EMAIL], ssn [SSN]", out["notes"])
	nested := out["nested"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[REDACTED]", nested["password"])
	assert.Equal(t, 3.0, nested["count"])
	assert.Equal(t, 42, RedactPII(42))
}

func sampleNetwork() NetworkData {
	var d NetworkData
	d.Users.Total = 1000
	d.Users.NewThisMonth = 150
	d.Users.ActiveThisMonth = 200
	d.Users.ByRole = map[string]int64{"student": 900, "mentor": 50}
	d.Programs.Total = 10
	d.Programs.StudentsEnrolled = 40
	d.Sponsors.Total = 4
	d.Events.Upcoming = 1
	return d
}

func TestFallbackInsights(t *testing.T) {
	out := fallbackService().NetworkInsights(context.Background(), sampleNetwork())

	assert.Equal(t, SourceFallback, out.Source)
	require.Len(t, out.KeyTrends, 1)
	assert.Equal(t, "Strong User Growth", out.KeyTrends[0].Title)
	assert.Equal(t, "150 new users this month (15.0% growth)", out.KeyTrends[0].Description)

	var risks []string
	for _, r := range out.Risks {
		risks = append(risks, r.Title)
	}
	assert.Equal(t, []string{"Low User Engagement", "Mentor Shortage"}, risks)
	assert.Equal(t, "High student-to-mentor ratio (18.0:1)", out.Risks[1].Description)

	var opps []string
	for _, o := range out.Opportunities {
		opps = append(opps, o.Title)
	}
	assert.Equal(t, []string{"Underutilized Programs", "Expand Sponsorship", "Increase Event Programming"}, opps)
	assert.Equal(t, []string{
		"Launch mentor recruitment campaign",
		"Develop sponsor outreach strategy",
		"Monitor engagement metrics weekly",
		"Survey users for feedback and suggestions",
	}, out.Recommendations)
}

func TestFallbackInsightsEmptyNetwork(t *testing.T) {
	var d NetworkData
	d.Sponsors.Total = 20
	d.Events.Upcoming = 5
	out := fallbackService().NetworkInsights(context.Background(), d)

	assert.Equal(t, "Slow User Growth", out.KeyTrends[0].Title)
	assert.Len(t, out.Recommendations, 3)
	assert.Equal(t, "Continue building community partnerships", out.Recommendations[2])
}

func TestNetworkInsightsUsesCompletion(t *testing.T) {
	c := &fakeCompleter{reply: `{"summary":"Healthy network","keyTrends":[{"title":"Growth","direction":"up","impact":"high"}]}`}
	out := aiService(c).NetworkInsights(context.Background(), sampleNetwork())

	assert.Equal(t, SourceAI, out.Source)
	assert.Equal(t, "Healthy network", out.Summary)
	assert.Len(t, out.KeyTrends, 1)
	assert.NotNil(t, out.Risks)
	require.Len(t, c.prompts, 1)
	assert.Contains(t, c.prompts[0], `"newThisMonth": 150`)
}

func TestNetworkInsightsFallsBackOnBadCompletion(t *testing.T) {
	for name, c := range map[string]*fakeCompleter{
		"error":      {err: errors.New("rate limited")},
		"bad json":   {reply: "not json"},
		"no summary": {reply: `{"keyTrends":[]}`},
	} {
		t.Run(name, func(t *testing.T) {
			out := aiService(c).NetworkInsights(context.Background(), sampleNetwork())
			assert.Equal(t, SourceFallback, out.Source)
		})
	}
}

func TestAtRiskUsers(t *testing.T) {
	day := 24 * time.Hour
	ago := func(d time.Duration) *time.Time { v := aiNow.Add(-d); return &v }
	users := []models.User{
		{UID: "healthy", LastActiveAt: ago(2 * day), SessionCount: 10, EngagementScore: 80},
		{UID: "few-sessions", LastActiveAt: ago(day), SessionCount: 1, EngagementScore: 50},
		{UID: "gone", LastActiveAt: ago(45 * day), SessionCount: 1, EngagementScore: 5},
		{UID: "quiet", LastActiveAt: ago(20 * day), SessionCount: 5, EngagementScore: 50},
		{UID: "never", CreatedAt: aiNow.Add(-40 * day), SessionCount: 5, EngagementScore: 50},
	}

	out := fallbackService().AtRiskUsers(users)
	require.Len(t, out, 4)
	assert.Equal(t, "gone", out[0].User.UID)
	assert.Equal(t, RiskHigh, out[0].RiskLevel)
	assert.Equal(t, []string{"Inactive for 45 days", "Very few sessions completed", "Low engagement score"}, out[0].Reasons)
	assert.Equal(t, "never", out[1].User.UID)
	assert.Equal(t, RiskHigh, out[1].RiskLevel)
	assert.Equal(t, "few-sessions", out[2].User.UID)
	assert.Equal(t, RiskMedium, out[2].RiskLevel)
	assert.Equal(t, "quiet", out[3].User.UID)
	assert.Equal(t, []string{"No activity for 20 days"}, out[3].Reasons)
}

func TestGrowthOpportunities(t *testing.T) {
	out := fallbackService().GrowthOpportunities(RegionData{
		UsersByRegion:    map[string]int64{"Tampa": 80, "Orlando": 30, "Miami": 10},
		ProgramsByRegion: map[string]int64{"Tampa": 1, "Orlando": 5},
		SponsorsByRegion: map[string]int64{"Tampa": 2},
	})
	assert.Equal(t, []GrowthOpportunity{
		{Region: "Orlando", Opportunity: "Untapped sponsorship market", Priority: "medium"},
		{Region: "Tampa", Opportunity: "High user demand with limited programs", Priority: "high"},
	}, out)
}

func TestFallbackMatch(t *testing.T) {
	sponsor := models.Sponsor{OrgName: "SkyCorp", Region: "Florida, Georgia", ProgramSupport: "Aviation, Robotics", TotalContributions: 600000}

	tests := []struct {
		name      string
		sponsor   models.Sponsor
		target    MatchTarget
		score     int
		alignment []string
		risks     int
	}{
		{"full match", sponsor, MatchTarget{Type: TargetOrganization, State: "florida", Category: "aviation", StudentsImpacted: 1500}, 95, []string{"Geographic alignment", "Program type match", "Scale compatibility"}, 0},
		{"appropriate size", models.Sponsor{TotalContributions: 200000}, MatchTarget{Type: TargetOrganization, StudentsImpacted: 200}, 55, []string{"Appropriate program size"}, 0},
		{"program ignores scale", sponsor, MatchTarget{Type: TargetProgram, Category: "Robotics", StudentsImpacted: 5000}, 65, []string{"Program type match"}, 0},
		{"underfunded", models.Sponsor{TotalContributions: 500}, MatchTarget{Type: TargetOrganization, StudentsImpacted: 800}, 50, []string{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FallbackMatch(tt.sponsor, tt.target)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.alignment, res.Alignment)
			assert.Len(t, res.Risks, tt.risks)
			assert.Equal(t, SourceFallback, res.Source)
		})
	}

	org := FallbackMatch(sponsor, MatchTarget{Type: TargetOrganization})
	assert.Contains(t, org.Opportunities, "Direct student engagement opportunities")
}

func TestMatchSponsorClampsCompletionScore(t *testing.T) {
	c := &fakeCompleter{reply: `{"score":140,"alignment":["Mission"]}`}
	res := aiService(c).MatchSponsor(context.Background(), models.Sponsor{OrgName: "SkyCorp", ContactEmail: "cfo@sky.example"}, MatchTarget{Type: TargetRegion, Name: "Tampa"})

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, []string{"Mission"}, res.Alignment)
	assert.Equal(t, []string{}, res.Risks)
	assert.NotContains(t, c.prompts[0], "cfo@sky.example")
	assert.Contains(t, c.prompts[0], "Region Details:")

	c.reply = `{"alignment":[]}`
	res = aiService(c).MatchSponsor(context.Background(), models.Sponsor{}, MatchTarget{Type: TargetProgram})
	assert.Equal(t, SourceFallback, res.Source)
}

func TestBestSponsorsForTarget(t *testing.T) {
	sponsors := []models.Sponsor{
		{ID: 1, OrgName: "Nobody"},
		{ID: 2, OrgName: "Local", Region: "Florida"},
		{ID: 3, OrgName: "Perfect", Region: "Florida", ProgramSupport: "aviation"},
	}
	target := MatchTarget{Type: TargetProgram, State: "Florida", Category: "Aviation"}

	out, err := fallbackService().BestSponsorsForTarget(context.Background(), sponsors, target)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []uint{3, 2, 1}, []uint{out[0].Sponsor.ID, out[1].Sponsor.ID, out[2].Sponsor.ID})

	targets, err := fallbackService().BestTargetsForSponsor(context.Background(), sponsors[2], []MatchTarget{
		{Type: TargetProgram, ID: 7},
		target,
	})
	require.NoError(t, err)
	assert.Equal(t, 85, targets[0].Match.Score)
	assert.Equal(t, TargetProgram, targets[0].Type)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fallbackService().BestSponsorsForTarget(ctx, sponsors, target)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPriority(t *testing.T) {
	s := fallbackService()
	tests := []struct {
		name  string
		typ   string
		data  map[string]interface{}
		role  string
		wants string
	}{
		{"high type", "safety_alert", nil, "student", "high"},
		{"low type", "newsletter", map[string]interface{}{"daysInactive": 90}, "student", "low"},
		{"long inactive", "inactive_user", map[string]interface{}{"daysInactive": 31.0}, "student", "high"},
		{"near deadline", "application_due", map[string]interface{}{"deadline": "2026-10-18"}, "student", "high"},
		{"far deadline", "application_due", map[string]interface{}{"deadline": "2026-12-01T00:00:00Z"}, "student", "medium"},
		{"mentor request", "new_mentee_request", nil, "mentor", "high"},
		{"admin alert", "system_alert", nil, "admin", "high"},
		{"student default", "mentor_match", nil, "student", "medium"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, s.Priority(tt.typ, tt.data, tt.role))
		})
	}
}

func TestFallbackContent(t *testing.T) {
	u := models.User{DisplayName: "Amelia Earhart"}
	assert.Equal(t, "Hi Amelia! We found a great mentor match for you. Check out their profile.", FallbackContent(u, "mentor_match", nil).Message)
	assert.Equal(t, "Don't forget: Fly-In Day is coming up soon!", FallbackContent(u, "event_reminder", map[string]interface{}{"eventName": "Fly-In Day"}).Message)
	assert.Equal(t, "Update from Hidden Treasures Network", FallbackContent(u, "unknown", nil).Title)
	assert.Equal(t, "Hi there! We found a great mentor match for you. Check out their profile.", FallbackContent(models.User{}, "mentor_match", nil).Message)
}

func TestSmartNotificationsPersist(t *testing.T) {
	store := &memoryNotifications{}
	users := []models.User{
		{UID: "u1", DisplayName: "Amelia Earhart", Role: "student"},
		{UID: "u2", DisplayName: "Bessie Coleman", Role: "mentor"},
	}

	out, err := fallbackService().SmartNotifications(context.Background(), store, users, "session_reminder", map[string]interface{}{"actionUrl": "/sessions"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "u1", out[0].UserID)
	assert.Equal(t, "medium", out[0].Priority)
	assert.Equal(t, "high", out[1].Priority)
	assert.Equal(t, "/sessions", out[1].ActionURL)
	assert.Len(t, store.stored, 2)
	assert.NotZero(t, out[0].ID)
}

func TestPersonalizeRedactsProfile(t *testing.T) {
	c := &fakeCompleter{reply: `{"title":"Welcome back","message":"Your hangar misses you"}`}
	content := aiService(c).Personalize(context.Background(), models.User{DisplayName: "Amelia Earhart", Email: "amelia@example.com", Role: "student"}, "inactive_user", nil)

	assert.Equal(t, Content{Title: "Welcome back", Message: "Your hangar misses you"}, content)
	assert.Contains(t, c.prompts[0], `"displayName": "A***"`)
	assert.NotContains(t, c.prompts[0], "Earhart")
}

func TestReEngagementAndOrganizationSupport(t *testing.T) {
	store := &memoryNotifications{}
	s := fallbackService()

	n, err := s.ReEngagement(context.Background(), store, models.User{UID: "u9"}, 45, map[string]interface{}{"newEvents": 3})
	require.NoError(t, err)
	assert.Equal(t, "high", n.Priority)
	assert.Equal(t, "re_engagement", n.Category)
	assert.Equal(t, "We Miss You!", n.Title)
	assert.Equal(t, uint(1), n.ID)

	n, err = s.OrganizationSupport(context.Background(), store, models.Organization{ID: 12, Name: "Sky Club"}, "no active mentors")
	require.NoError(t, err)
	assert.Equal(t, "Sky Club may need assistance: no active mentors", n.Message)
	assert.Equal(t, "/dashboard/admin/organizations/12", n.ActionURL)
	assert.Len(t, store.stored, 2)
}
