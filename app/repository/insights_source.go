package repository

import (
	"context"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/ai"
	"golang.org/x/sync/errgroup"
)

// InsightsSource collects the aggregates the AI features reason over.
type InsightsSource struct {
	repos *Repositories
}

func NewInsightsSource(repos *Repositories) *InsightsSource {
	return &InsightsSource{repos: repos}
}

// NetworkData summarizes the network as of now. Mentorship, event and
// resource figures are not tracked and stay zero.
func (s *InsightsSource) NetworkData(ctx context.Context, now time.Time) (*ai.NetworkData, error) {
	var data ai.NetworkData
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		byRole, err := s.repos.User.CountByRole(ctx)
		if err != nil {
			return err
		}
		data.Users.ByRole = byRole
		for _, n := range byRole {
			data.Users.Total += n
		}
		return nil
	})
	g.Go(func() (err error) {
		data.Users.ActiveThisMonth, err = s.repos.User.CountActiveSince(ctx, monthStart)
		return err
	})
	g.Go(func() (err error) {
		data.Users.NewThisMonth, err = s.repos.User.CountCreatedSince(ctx, monthStart)
		return err
	})
	g.Go(func() (err error) {
		data.Programs.Total, err = s.repos.Program.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Programs.Active, err = s.repos.Program.CountActive(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Programs.StudentsEnrolled, err = s.repos.Program.CountEnrollments(ctx, models.EnrollmentStatusEnrolled)
		return err
	})
	g.Go(func() error {
		totals, err := s.repos.Sponsor.Totals(ctx)
		if err != nil {
			return err
		}
		data.Sponsors.Total = totals.Total
		data.Sponsors.Active = totals.Active
		data.Sponsors.TotalFunding = totals.Funding
		return nil
	})
	g.Go(func() (err error) {
		data.Engagement.AvgSessionsPerUser, err = s.repos.User.AverageSessions(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Engagement.MessagesSent, err = s.repos.Message.CountMessages(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// RegionData counts users, programs and sponsors per region.
func (s *InsightsSource) RegionData(ctx context.Context) (*ai.RegionData, error) {
	var data ai.RegionData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.UsersByRegion, err = s.repos.User.CountByRegion(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.ProgramsByRegion, err = s.repos.Program.CountByRegion(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.SponsorsByRegion, err = s.repos.Sponsor.CountByRegion(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// MatchTargets lists every active organization and program as a match target.
func (s *InsightsSource) MatchTargets(ctx context.Context) ([]ai.MatchTarget, error) {
	orgs, err := s.repos.Organization.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	programs, err := s.repos.Program.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]ai.MatchTarget, 0, len(orgs)+len(programs))
	for i := range orgs {
		if orgs[i].Status == models.STATUS_INACTIVE {
			continue
		}
		targets = append(targets, ai.OrganizationTarget(orgs[i]))
	}
	for i := range programs {
		targets = append(targets, ai.ProgramTarget(programs[i]))
	}
	return targets, nil
}
