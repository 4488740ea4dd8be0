package repository

import (
	"context"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/export"
)

var _ export.Source = (*ExportSource)(nil)

// ExportSource serves export datasets from the repositories.
type ExportSource struct {
	repos *Repositories
}

func NewExportSource(repos *Repositories) *ExportSource {
	return &ExportSource{repos: repos}
}

func (s *ExportSource) ExportRows(ctx context.Context, dataset string, limit int) ([]export.Row, error) {
	switch dataset {
	case export.Students, export.Mentors:
		role := models.ROLE_STUDENT
		if dataset == export.Mentors {
			role = models.ROLE_MENTOR
		}
		users, err := s.repos.User.ListByRole(ctx, role, limit)
		if err != nil {
			return nil, err
		}
		rows := make([]export.Row, 0, len(users))
		for i := range users {
			rows = append(rows, userRow(&users[i]))
		}
		return rows, nil
	case export.Organizations:
		orgs, err := s.repos.Organization.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		rows := make([]export.Row, 0, len(orgs))
		for i := range orgs {
			rows = append(rows, organizationRow(&orgs[i]))
		}
		return rows, nil
	case export.Donations:
		donations, err := s.repos.Donation.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		rows := make([]export.Row, 0, len(donations))
		for i := range donations {
			rows = append(rows, donationRow(&donations[i]))
		}
		return rows, nil
	case export.Waitlist:
		entries, err := s.repos.Waitlist.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		rows := make([]export.Row, 0, len(entries))
		for i := range entries {
			rows = append(rows, waitlistRow(&entries[i]))
		}
		return rows, nil
	case export.Analytics:
		snapshots, err := s.repos.Analytics.List(ctx, limit)
		if err != nil {
			return nil, err
		}
		rows := make([]export.Row, 0, len(snapshots))
		for i := range snapshots {
			rows = append(rows, analyticsRow(&snapshots[i]))
		}
		return rows, nil
	}
	return nil, export.ErrUnknownDataset
}

func userRow(u *models.User) export.Row {
	return export.Row{
		"displayName":  u.DisplayName,
		"email":        u.Email,
		"school":       u.School,
		"gradeLevel":   u.GradeLevel,
		"program":      u.Program,
		"organization": u.Organization,
		"expertise":    u.Expertise,
		"createdAt":    u.CreatedAt,
		"status":       u.Status,
	}
}

func organizationRow(o *models.Organization) export.Row {
	return export.Row{
		"name":         o.Name,
		"type":         o.Type,
		"city":         o.City,
		"state":        o.State,
		"country":      o.Country,
		"contactEmail": o.ContactEmail,
		"createdAt":    o.CreatedAt,
		"status":       o.Status,
	}
}

func donationRow(d *models.Donation) export.Row {
	return export.Row{
		"donorName":   d.DonorName,
		"email":       d.Email,
		"amount":      d.Amount,
		"type":        d.Type,
		"sponsorTier": d.SponsorTier,
		"createdAt":   d.CreatedAt,
		"status":      d.Status,
	}
}

func waitlistRow(w *models.WaitlistEntry) export.Row {
	return export.Row{
		"email":        w.Email,
		"name":         w.Name,
		"role":         w.Role,
		"organization": w.Organization,
		"createdAt":    w.CreatedAt,
		"source":       w.Source,
	}
}

func analyticsRow(a *models.AnalyticsSnapshot) export.Row {
	return export.Row{
		"createdAt": a.CreatedAt,
		"metrics": map[string]interface{}{
			"totalStudents":      a.TotalStudents,
			"activeStudents":     a.ActiveStudents,
			"totalMentors":       a.TotalMentors,
			"totalOrganizations": a.TotalOrganizations,
			"livesImpacted":      a.LivesImpacted,
			"progressToGoal":     a.ProgressToGoal,
		},
	}
}
