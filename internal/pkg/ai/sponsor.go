package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"golang.org/x/sync/errgroup"
)

// Match target types.
const (
	TargetOrganization = "organization"
	TargetProgram      = "program"
	TargetRegion       = "region"
	TargetEvent        = "event"
)

// matchConcurrency bounds parallel completions per matching request.
const matchConcurrency = 4

// MatchTarget is anything a sponsor can be matched against.
type MatchTarget struct {
	Type             string `json:"type"`
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	State            string `json:"state,omitempty"`
	Category         string `json:"category,omitempty"`
	StudentsImpacted int64  `json:"studentsImpacted,omitempty"`
	Description      string `json:"description,omitempty"`
}

// OrganizationTarget adapts a partner organization.
func OrganizationTarget(o models.Organization) MatchTarget {
	return MatchTarget{
		Type:             TargetOrganization,
		ID:               o.ID,
		Name:             o.Name,
		State:            o.State,
		Category:         o.Category,
		StudentsImpacted: int64(o.StudentsImpacted),
	}
}

func ProgramTarget(p models.Program) MatchTarget {
	return MatchTarget{
		Type:     TargetProgram,
		ID:       p.ID,
		Name:     p.Name,
		State:    p.Region,
		Category: p.Category,
	}
}

type MatchResult struct {
	Score         int      `json:"score"`
	Alignment     []string `json:"alignment"`
	Opportunities []string `json:"opportunities"`
	Risks         []string `json:"risks"`
	Source        string   `json:"source"`
}

type SponsorMatch struct {
	Sponsor models.Sponsor `json:"sponsor"`
	Match   MatchResult    `json:"match"`
}

type TargetMatch struct {
	Target MatchTarget `json:"target"`
	Type   string      `json:"type"`
	Match  MatchResult `json:"match"`
}

const sponsorPrompt = `You are an expert corporate sponsorship and partnership matchmaker for aviation/STEM education programs.

Sponsor Profile:
%s

%s Details:
%s

Evaluate the sponsorship fit based on:
- Mission alignment and values match
- Geographic reach and coverage
- Program type compatibility
- Impact measurement potential
- CSR goals alignment
- Budget and funding level appropriateness
- Long-term partnership potential

Return a JSON object with this exact structure:
{
  "score": <number between 0-100>,
  "alignment": [<array of 2-4 key alignment factors>],
  "opportunities": [<array of 2-4 collaboration opportunities>],
  "risks": [<array of 0-2 potential concerns or empty array>]
}

Be objective, strategic, and focus on mutual value creation.`

// MatchSponsor scores how well sponsor fits target.
func (s *Service) MatchSponsor(ctx context.Context, sponsor models.Sponsor, target MatchTarget) MatchResult {
	if s.completer != nil {
		if res, err := s.aiMatch(ctx, sponsor, target); err == nil {
			s.record("sponsor_match", SourceAI)
			return res
		}
	}
	s.record("sponsor_match", SourceFallback)
	return FallbackMatch(sponsor, target)
}

func (s *Service) aiMatch(ctx context.Context, sponsor models.Sponsor, target MatchTarget) (MatchResult, error) {
	profile, err := safeJSON(map[string]interface{}{
		"orgName":            sponsor.OrgName,
		"tierId":             sponsor.TierID,
		"totalContributions": sponsor.TotalContributions,
		"region":             sponsor.Region,
		"programSupport":     sponsor.ProgramSupport,
		"companyDescription": sponsor.CompanyDescription,
	})
	if err != nil {
		return MatchResult{}, err
	}
	details, err := safeJSON(target)
	if err != nil {
		return MatchResult{}, err
	}

	var raw struct {
		Score         *float64 `json:"score"`
		Alignment     []string `json:"alignment"`
		Opportunities []string `json:"opportunities"`
		Risks         []string `json:"risks"`
	}
	prompt := fmt.Sprintf(sponsorPrompt, profile, targetLabel(target.Type), details)
	if err := s.completeJSON(ctx, "sponsor_match", prompt, 0.4, 600, &raw); err != nil {
		return MatchResult{}, err
	}
	if raw.Score == nil {
		return MatchResult{}, fmt.Errorf("sponsor match response has no score")
	}

	res := MatchResult{
		Score:         clampScore(int(*raw.Score + 0.5)),
		Alignment:     nonNil(raw.Alignment),
		Opportunities: nonNil(raw.Opportunities),
		Risks:         nonNil(raw.Risks),
		Source:        SourceAI,
	}
	return res, nil
}

func targetLabel(t string) string {
	switch t {
	case TargetOrganization:
		return "Organization"
	case TargetProgram:
		return "Program"
	case TargetEvent:
		return "Event"
	}
	return "Region"
}

// FallbackMatch is the rule-based score: 50 base, +20 region, +15 program
// type, +10/+5 scale for organizations, clamped to 0..100.
func FallbackMatch(sponsor models.Sponsor, target MatchTarget) MatchResult {
	score := 50
	res := MatchResult{
		Alignment:     []string{},
		Opportunities: []string{},
		Risks:         []string{},
		Source:        SourceFallback,
	}

	if sponsor.Region != "" && target.State != "" &&
		strings.Contains(strings.ToLower(sponsor.Region), strings.ToLower(target.State)) {
		score += 20
		res.Alignment = append(res.Alignment, "Geographic alignment")
	}

	if sponsor.ProgramSupport != "" && target.Category != "" &&
		strings.Contains(strings.ToLower(sponsor.ProgramSupport), strings.ToLower(target.Category)) {
		score += 15
		res.Alignment = append(res.Alignment, "Program type match")
	}

	contribution := sponsor.TotalContributions
	if target.Type == TargetOrganization {
		switch {
		case contribution > 500000 && target.StudentsImpacted > 1000:
			score += 10
			res.Alignment = append(res.Alignment, "Scale compatibility")
		case contribution > 100000 && target.StudentsImpacted > 100:
			score += 5
			res.Alignment = append(res.Alignment, "Appropriate program size")
		}
	}

	res.Opportunities = append(res.Opportunities, "Brand visibility and recognition", "Impact measurement and reporting")
	if target.Type == TargetOrganization {
		res.Opportunities = append(res.Opportunities, "Direct student engagement opportunities")
	}
	if contribution < 10000 && target.StudentsImpacted > 500 {
		res.Risks = append(res.Risks, "Funding level may be below program needs")
	}

	res.Score = clampScore(score)
	return res
}

// BestSponsorsForTarget ranks sponsors for target, best first.
func (s *Service) BestSponsorsForTarget(ctx context.Context, sponsors []models.Sponsor, target MatchTarget) ([]SponsorMatch, error) {
	out := make([]SponsorMatch, len(sponsors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchConcurrency)
	for i := range sponsors {
		i := i
		g.Go(func() error {
			out[i] = SponsorMatch{Sponsor: sponsors[i], Match: s.MatchSponsor(gctx, sponsors[i], target)}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Match.Score > out[j].Match.Score })
	return out, nil
}

// BestTargetsForSponsor ranks targets for sponsor, best first.
func (s *Service) BestTargetsForSponsor(ctx context.Context, sponsor models.Sponsor, targets []MatchTarget) ([]TargetMatch, error) {
	out := make([]TargetMatch, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchConcurrency)
	for i := range targets {
		i := i
		g.Go(func() error {
			out[i] = TargetMatch{Target: targets[i], Type: targets[i].Type, Match: s.MatchSponsor(gctx, sponsor, targets[i])}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Match.Score > out[j].Match.Score })
	return out, nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
