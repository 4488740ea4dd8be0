package ai

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

// NetworkData is the metric snapshot insights are generated from.
type NetworkData struct {
	Users struct {
		Total           int64            `json:"total"`
		ByRole          map[string]int64 `json:"byRole"`
		ActiveThisMonth int64            `json:"activeThisMonth"`
		NewThisMonth    int64            `json:"newThisMonth"`
	} `json:"users"`
	Mentorships struct {
		Total           int64   `json:"total"`
		ActiveThisMonth int64   `json:"activeThisMonth"`
		AverageDuration float64 `json:"averageDuration"`
	} `json:"mentorships"`
	Programs struct {
		Total            int64 `json:"total"`
		Active           int64 `json:"active"`
		StudentsEnrolled int64 `json:"studentsEnrolled"`
	} `json:"programs"`
	Events struct {
		Total         int64   `json:"total"`
		Upcoming      int64   `json:"upcoming"`
		AvgAttendance float64 `json:"avgAttendance"`
	} `json:"events"`
	Sponsors struct {
		Total        int64 `json:"total"`
		Active       int64 `json:"active"`
		TotalFunding int64 `json:"totalFunding"`
	} `json:"sponsors"`
	Engagement struct {
		AvgSessionsPerUser float64 `json:"avgSessionsPerUser"`
		MessagesSent       int64   `json:"messagesSent"`
		ResourcesShared    int64   `json:"resourcesShared"`
	} `json:"engagement"`
}

type Trend struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Direction   string `json:"direction"`
	Impact      string `json:"impact"`
}

type Opportunity struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type Risk struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Actionable  bool   `json:"actionable"`
}

type NetworkInsights struct {
	Summary         string        `json:"summary"`
	KeyTrends       []Trend       `json:"keyTrends"`
	Opportunities   []Opportunity `json:"opportunities"`
	Risks           []Risk        `json:"risks"`
	Recommendations []string      `json:"recommendations"`
	Source          string        `json:"source"`
}

const insightsPrompt = `You are an expert analyst for aviation/STEM education networks.

Network Metrics:
%s

Analyze these metrics and generate comprehensive insights for network administrators.

Return a JSON object with this exact structure:
{
  "summary": "<1-2 sentence executive summary of network health>",
  "keyTrends": [
    {"title": "<trend name>", "description": "<brief explanation>", "direction": "<up|down|stable>", "impact": "<high|medium|low>"}
  ],
  "opportunities": [
    {"title": "<opportunity name>", "description": "<brief explanation>", "priority": "<high|medium|low>"}
  ],
  "risks": [
    {"title": "<risk name>", "description": "<brief explanation>", "severity": "<high|medium|low>", "actionable": <true|false>}
  ],
  "recommendations": ["<specific actionable recommendation>"]
}

Provide 2-4 trends, 2-3 opportunities, 1-3 risks, and 3-5 recommendations.
Be specific, data-driven, and actionable.`

// NetworkInsights summarizes network health for administrators.
func (s *Service) NetworkInsights(ctx context.Context, data NetworkData) *NetworkInsights {
	if s.completer != nil {
		metricsJSON, err := safeJSON(data)
		if err == nil {
			var out NetworkInsights
			err = s.completeJSON(ctx, "insights", fmt.Sprintf(insightsPrompt, metricsJSON), 0.6, 1200, &out)
			if err == nil && out.Summary != "" {
				out.Source = SourceAI
				out.normalize()
				s.record("insights", SourceAI)
				return &out
			}
		}
	}
	s.record("insights", SourceFallback)
	return fallbackInsights(data)
}

func (n *NetworkInsights) normalize() {
	if n.KeyTrends == nil {
		n.KeyTrends = []Trend{}
	}
	if n.Opportunities == nil {
		n.Opportunities = []Opportunity{}
	}
	if n.Risks == nil {
		n.Risks = []Risk{}
	}
	if n.Recommendations == nil {
		n.Recommendations = []string{}
	}
}

func ratio(a, b int64) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func fallbackInsights(data NetworkData) *NetworkInsights {
	out := &NetworkInsights{
		Summary: "Network metrics show overall stability with growth opportunities.",
		Source:  SourceFallback,
	}
	out.normalize()

	growth := ratio(data.Users.NewThisMonth, data.Users.Total)
	switch {
	case growth > 0.1:
		out.KeyTrends = append(out.KeyTrends, Trend{
			Title:       "Strong User Growth",
			Description: fmt.Sprintf("%d new users this month (%.1f%% growth)", data.Users.NewThisMonth, growth*100),
			Direction:   "up",
			Impact:      "high",
		})
	case growth < 0.02:
		out.KeyTrends = append(out.KeyTrends, Trend{
			Title:       "Slow User Growth",
			Description: fmt.Sprintf("Only %d new users this month", data.Users.NewThisMonth),
			Direction:   "down",
			Impact:      "medium",
		})
	}

	engagement := ratio(data.Users.ActiveThisMonth, data.Users.Total)
	switch {
	case engagement > 0.6:
		out.KeyTrends = append(out.KeyTrends, Trend{
			Title:       "High Engagement",
			Description: fmt.Sprintf("%.1f%% of users active this month", engagement*100),
			Direction:   "up",
			Impact:      "high",
		})
	case engagement < 0.3:
		out.Risks = append(out.Risks, Risk{
			Title:       "Low User Engagement",
			Description: fmt.Sprintf("Only %.1f%% of users are active", engagement*100),
			Severity:    "medium",
			Actionable:  true,
		})
	}

	mentors := data.Users.ByRole[models.ROLE_MENTOR]
	students := data.Users.ByRole[models.ROLE_STUDENT]
	// No mentors at all with students waiting counts as a shortage too.
	if (mentors == 0 && students > 0) || ratio(students, mentors) > 10 {
		desc := fmt.Sprintf("High student-to-mentor ratio (%.1f:1)", ratio(students, mentors))
		if mentors == 0 {
			desc = fmt.Sprintf("%d students and no active mentors", students)
		}
		out.Risks = append(out.Risks, Risk{
			Title:       "Mentor Shortage",
			Description: desc,
			Severity:    "high",
			Actionable:  true,
		})
		out.Recommendations = append(out.Recommendations, "Launch mentor recruitment campaign")
	}

	if data.Programs.Total > 0 && ratio(data.Programs.StudentsEnrolled, data.Programs.Total) < 10 {
		out.Opportunities = append(out.Opportunities, Opportunity{
			Title:       "Underutilized Programs",
			Description: "Several programs have low enrollment",
			Priority:    "medium",
		})
	}

	if data.Sponsors.Total < 10 {
		out.Opportunities = append(out.Opportunities, Opportunity{
			Title:       "Expand Sponsorship",
			Description: "Significant growth potential in corporate partnerships",
			Priority:    "high",
		})
		out.Recommendations = append(out.Recommendations, "Develop sponsor outreach strategy")
	}

	if data.Events.Upcoming < 3 {
		out.Opportunities = append(out.Opportunities, Opportunity{
			Title:       "Increase Event Programming",
			Description: "Few upcoming events scheduled",
			Priority:    "medium",
		})
	}

	out.Recommendations = append(out.Recommendations,
		"Monitor engagement metrics weekly",
		"Survey users for feedback and suggestions",
	)
	if len(out.Recommendations) < 3 {
		out.Recommendations = append(out.Recommendations, "Continue building community partnerships")
	}
	return out
}

// Risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

type AtRiskUser struct {
	User      models.User `json:"user"`
	RiskLevel string      `json:"riskLevel"`
	Reasons   []string    `json:"reasons"`
}

var riskRank = map[string]int{RiskHigh: 3, RiskMedium: 2, RiskLow: 1}

// AtRiskUsers flags inactive or low-engagement users, highest risk first.
// Users that never logged activity are measured from their signup.
func (s *Service) AtRiskUsers(users []models.User) []AtRiskUser {
	now := s.now()
	out := []AtRiskUser{}
	for _, u := range users {
		last := u.CreatedAt
		if u.LastActiveAt != nil {
			last = *u.LastActiveAt
		}
		days := int(now.Sub(last) / (24 * time.Hour))

		level := RiskLow
		var reasons []string
		switch {
		case days > 30:
			level = RiskHigh
			reasons = append(reasons, fmt.Sprintf("Inactive for %d days", days))
		case days > 14:
			level = RiskMedium
			reasons = append(reasons, fmt.Sprintf("No activity for %d days", days))
		}
		if u.SessionCount < 3 {
			if level != RiskHigh {
				level = RiskMedium
			}
			reasons = append(reasons, "Very few sessions completed")
		}
		if u.EngagementScore < 20 {
			if level != RiskHigh {
				level = RiskMedium
			}
			reasons = append(reasons, "Low engagement score")
		}

		if len(reasons) > 0 {
			out = append(out, AtRiskUser{User: u, RiskLevel: level, Reasons: reasons})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return riskRank[out[i].RiskLevel] > riskRank[out[j].RiskLevel]
	})
	return out
}

// RegionData counts users, programs and sponsors per region.
type RegionData struct {
	UsersByRegion    map[string]int64 `json:"usersByRegion"`
	ProgramsByRegion map[string]int64 `json:"programsByRegion"`
	SponsorsByRegion map[string]int64 `json:"sponsorsByRegion"`
}

type GrowthOpportunity struct {
	Region      string `json:"region"`
	Opportunity string `json:"opportunity"`
	Priority    string `json:"priority"`
}

// GrowthOpportunities finds regions with unmet program or sponsor demand,
// ordered by region name.
func (s *Service) GrowthOpportunities(data RegionData) []GrowthOpportunity {
	regions := make([]string, 0, len(data.UsersByRegion))
	for region := range data.UsersByRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	out := []GrowthOpportunity{}
	for _, region := range regions {
		users := data.UsersByRegion[region]
		if users > 50 && data.ProgramsByRegion[region] < 3 {
			out = append(out, GrowthOpportunity{Region: region, Opportunity: "High user demand with limited programs", Priority: "high"})
		}
		if users > 20 && data.SponsorsByRegion[region] == 0 {
			out = append(out, GrowthOpportunity{Region: region, Opportunity: "Untapped sponsorship market", Priority: "medium"})
		}
	}
	return out
}
