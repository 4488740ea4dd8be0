package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/report"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var _ report.Source = (*ReportSource)(nil)

// ReportSource loads report counts from the repositories.
type ReportSource struct {
	repos *Repositories
}

func NewReportSource(repos *Repositories) *ReportSource {
	return &ReportSource{repos: repos}
}

func (s *ReportSource) ReportCounts(ctx context.Context) (report.Counts, error) {
	var c report.Counts
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		byRole, err := s.repos.User.CountByRole(ctx)
		if err != nil {
			return err
		}
		c.Students = byRole[models.ROLE_STUDENT]
		c.Mentors = byRole[models.ROLE_MENTOR]
		return nil
	})
	g.Go(func() (err error) {
		c.Organizations, err = s.repos.Organization.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.Programs, err = s.repos.Program.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.Enrollments, err = s.repos.Program.CountEnrollments(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		c.Completions, err = s.repos.Program.CountEnrollments(ctx, models.EnrollmentStatusCompleted)
		return err
	})
	g.Go(func() (err error) {
		c.ScholarshipsAwarded, err = s.repos.Program.CountScholarships(ctx, models.ScholarshipStatusAwarded)
		return err
	})
	g.Go(func() (err error) {
		c.DonationCents, err = s.repos.Donation.SumCompleted(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.LivesImpacted, err = s.intSetting(ctx, models.SettingTotalLivesImpacted)
		return err
	})
	g.Go(func() (err error) {
		c.Goal, err = s.intSetting(ctx, models.SettingFlightPlanGoal)
		return err
	})
	g.Go(func() error {
		prev, err := s.repos.Analytics.Latest(ctx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		c.PreviousStudents = prev.TotalStudents
		c.PreviousMentors = prev.TotalMentors
		return nil
	})

	if err := g.Wait(); err != nil {
		return report.Counts{}, err
	}
	return c, nil
}

// intSetting returns 0 for missing or non-numeric settings.
func (s *ReportSource) intSetting(ctx context.Context, key string) (int64, error) {
	raw, err := s.repos.Setting.GetValue(ctx, key)
	if err != nil || raw == "" {
		return 0, err
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}
