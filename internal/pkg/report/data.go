package report

import (
	"context"
	"fmt"
	"math"
	"time"
)

const DefaultGoal = 1000000

// Counts are the raw figures a report is computed from.
type Counts struct {
	Students            int64
	Mentors             int64
	Organizations       int64
	Programs            int64
	Enrollments         int64
	Completions         int64
	DonationCents       int64
	ScholarshipsAwarded int64
	// LivesImpacted is the operator-maintained figure; 0 means unset.
	LivesImpacted int64
	Goal          int64
	// Previous snapshot figures used for trends; 0 means no snapshot.
	PreviousStudents int64
	PreviousMentors  int64
}

// Source loads report counts.
type Source interface {
	ReportCounts(ctx context.Context) (Counts, error)
}

type Milestone struct {
	Year   int
	Target int64
	Actual int64
	Status string
}

// Data is the computed report input.
type Data struct {
	TotalStudents       int64
	ActiveMentors       int64
	TotalOrganizations  int64
	TotalPrograms       int64
	ProgramEnrollments  int64
	ProgramCompletions  int64
	CompletionRate      float64
	TotalRaised         float64
	LivesImpacted       int64
	Goal                int64
	ProgressToGoal      float64
	DaysRemaining       int
	StudentTrend        string
	MentorTrend         string
	Milestones          []Milestone
	ScholarshipsAwarded int64
	ProgramsFunded      int64
}

var milestoneTargets = []struct {
	year   int
	target int64
}{
	{2024, 50000},
	{2025, 150000},
	{2026, 300000},
	{2027, 500000},
	{2028, 700000},
	{2029, 850000},
	{2030, 1000000},
}

// Gather loads counts and derives the report figures.
func Gather(ctx context.Context, src Source, now time.Time) (*Data, error) {
	c, err := src.ReportCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("gather report data: %w", err)
	}
	return Compute(c, now), nil
}

// Compute derives report figures from counts.
func Compute(c Counts, now time.Time) *Data {
	d := &Data{
		TotalStudents:       c.Students,
		ActiveMentors:       c.Mentors,
		TotalOrganizations:  c.Organizations,
		TotalPrograms:       c.Programs,
		ProgramEnrollments:  c.Enrollments,
		ProgramCompletions:  c.Completions,
		TotalRaised:         float64(c.DonationCents) / 100,
		ScholarshipsAwarded: c.ScholarshipsAwarded,
		ProgramsFunded:      c.Programs,
		Goal:                c.Goal,
		StudentTrend:        trend(c.Students, c.PreviousStudents),
		MentorTrend:         trend(c.Mentors, c.PreviousMentors),
	}
	if d.Goal <= 0 {
		d.Goal = DefaultGoal
	}
	if c.Enrollments > 0 {
		d.CompletionRate = float64(c.Completions) / float64(c.Enrollments) * 100
	}

	d.LivesImpacted = c.LivesImpacted
	if d.LivesImpacted <= 0 {
		d.LivesImpacted = c.Students + c.Completions
	}
	d.ProgressToGoal = float64(d.LivesImpacted) / float64(d.Goal) * 100

	end := time.Date(2030, time.December, 31, 0, 0, 0, 0, now.Location())
	d.DaysRemaining = int(math.Ceil(end.Sub(now).Hours() / 24))

	for i, m := range milestoneTargets {
		ms := Milestone{Year: m.year, Target: m.target, Status: "Upcoming"}
		switch {
		case i == 0:
			ms.Actual = d.LivesImpacted
			ms.Status = "In Progress"
			if d.LivesImpacted >= m.target {
				ms.Status = "✓"
			}
		case i == len(milestoneTargets)-1:
			ms.Status = "Goal"
		}
		d.Milestones = append(d.Milestones, ms)
	}
	return d
}

// trend compares against the previous snapshot. Without one, growth is
// assumed.
func trend(cur, prev int64) string {
	switch {
	case prev == 0 || cur > prev:
		return "up"
	case cur < prev:
		return "down"
	}
	return "stable"
}
