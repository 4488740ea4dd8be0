package schools

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/entitlements"
)

const (
	JoinCodeLength = 6
	// joinCodeAlphabet drops 0/O and 1/I; its 32 symbols divide 256 evenly.
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	joinCodeAttempts = 10
	// fallbackTier applies to teachers without an entitling subscription.
	fallbackTier = "community"
)

func randomJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeJoinCode upper-cases and trims a code typed by a student.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// uniqueJoinCode draws codes until one is free.
func (s *Service) uniqueJoinCode(ctx context.Context) (string, error) {
	for i := 0; i < joinCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		taken, err := s.store.JoinCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrJoinCodeExhausted
}

type ClassroomInput struct {
	SchoolID    uint   `json:"schoolId"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	GradeLevel  string `json:"gradeLevel"`
	MaxStudents int    `json:"maxStudents"`
	Draft       bool   `json:"draft"`
}

// CreateClassroom opens a classroom taught by teacherID with a fresh join code.
func (s *Service) CreateClassroom(ctx context.Context, teacherID string, in ClassroomInput) (*models.Classroom, error) {
	c := &models.Classroom{
		SchoolID:    in.SchoolID,
		TeacherID:   strings.TrimSpace(teacherID),
		Name:        strings.TrimSpace(in.Name),
		Subject:     strings.TrimSpace(in.Subject),
		GradeLevel:  strings.TrimSpace(in.GradeLevel),
		Status:      models.CLASSROOM_STATUS_ACTIVE,
		MaxStudents: in.MaxStudents,
	}
	if in.Draft {
		c.Status = models.CLASSROOM_STATUS_DRAFT
	}
	switch {
	case c.TeacherID == "":
		return nil, &ValidationError{Message: "teacherId is required"}
	case c.Name == "":
		return nil, &ValidationError{Message: "Classroom name is required"}
	case c.SchoolID == 0:
		return nil, &ValidationError{Message: "schoolId is required"}
	case c.MaxStudents < 0:
		return nil, &ValidationError{Message: "maxStudents cannot be negative"}
	}
	if _, err := s.School(ctx, c.SchoolID); err != nil {
		return nil, err
	}

	// a concurrent create can still win the code between check and insert
	for i := 0; i < joinCodeAttempts; i++ {
		code, err := s.uniqueJoinCode(ctx)
		if err != nil {
			return nil, err
		}
		c.JoinCode = code
		err = s.store.CreateClassroom(ctx, c)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, ErrJoinCodeExhausted
}

// TeacherClassroom returns a classroom owned by teacherID. Other teachers'
// classrooms are reported as not found.
func (s *Service) TeacherClassroom(ctx context.Context, id uint, teacherID string) (*models.Classroom, error) {
	c, err := s.store.GetClassroom(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrClassroomNotFound)
	}
	if c.TeacherID != teacherID {
		return nil, ErrClassroomNotFound
	}
	return c, nil
}

// TeacherClassrooms lists teacherID's active and draft classrooms, newest first.
func (s *Service) TeacherClassrooms(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	if strings.TrimSpace(teacherID) == "" {
		return nil, &ValidationError{Message: "teacherId is required"}
	}
	return s.store.ListClassroomsByTeacher(ctx, teacherID)
}

// RegenerateJoinCode replaces the join code; the old one stops working.
func (s *Service) RegenerateJoinCode(ctx context.Context, id uint, teacherID string) (string, error) {
	if _, err := s.TeacherClassroom(ctx, id, teacherID); err != nil {
		return "", err
	}
	code, err := s.uniqueJoinCode(ctx)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateJoinCode(ctx, id, code); err != nil {
		return "", err
	}
	return code, nil
}

type EnrollInput struct {
	StudentID       string
	StudentName     string
	ParentalConsent bool
}

// Join enrolls the student in the active classroom behind code.
func (s *Service) Join(ctx context.Context, code string, in EnrollInput) (*models.ClassroomRoster, error) {
	code = NormalizeJoinCode(code)
	if len(code) != JoinCodeLength {
		return nil, &ValidationError{Message: "Join code must be 6 characters"}
	}
	c, err := s.store.GetClassroomByJoinCode(ctx, code)
	if err != nil {
		return nil, notFound(err, ErrClassroomNotFound)
	}
	if c.Status != models.CLASSROOM_STATUS_ACTIVE {
		return nil, ErrClassroomNotFound
	}
	return s.Enroll(ctx, c.ID, in)
}

// Enroll adds a student to a classroom. It checks, in order, that the
// student is not enrolled yet, the classroom has a free seat, the
// teacher's plan has room, and parental consent when the school needs it.
func (s *Service) Enroll(ctx context.Context, classroomID uint, in EnrollInput) (*models.ClassroomRoster, error) {
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.StudentName = strings.TrimSpace(in.StudentName)
	if in.StudentID == "" {
		return nil, &ValidationError{Message: "studentId is required"}
	}

	c, err := s.store.GetClassroom(ctx, classroomID)
	if err != nil {
		return nil, notFound(err, ErrClassroomNotFound)
	}
	planLimit, limited, err := s.teacherLimit(ctx, c.TeacherID)
	if err != nil {
		return nil, err
	}

	var entry *models.ClassroomRoster
	err = s.store.Enroll(ctx, classroomID, in.StudentID, func(st EnrollmentState) (*models.ClassroomRoster, error) {
		switch {
		case st.Existing:
			return nil, ErrAlreadyEnrolled
		case st.Classroom.IsFull():
			return nil, ErrClassroomFull
		case limited && st.TeacherActive >= int64(planLimit):
			return nil, ErrPlanLimitReached
		case st.School != nil && st.School.RequireParentalConsent && !in.ParentalConsent:
			return nil, ErrConsentRequired
		}
		entry = &models.ClassroomRoster{
			ClassroomID:          classroomID,
			StudentID:            in.StudentID,
			StudentName:          in.StudentName,
			EnrollmentStatus:     models.ENROLLMENT_ACTIVE,
			ParentalConsentGiven: in.ParentalConsent,
			EnrolledAt:           time.Now(),
		}
		return entry, nil
	})
	s.metrics.Enrollment(enrollmentResult(err))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, notFound(err, ErrClassroomNotFound)
	}
	log.Infof("[Schools] enrolled %s in classroom %d", in.StudentID, classroomID)
	return entry, nil
}

// teacherLimit returns the plan's student limit for teacherID. limited is
// false without a plan resolver or for unlimited tiers.
func (s *Service) teacherLimit(ctx context.Context, teacherID string) (int, bool, error) {
	if s.plans == nil {
		return 0, false, nil
	}
	tierID, err := s.plans.EducatorTier(ctx, teacherID)
	if err != nil {
		return 0, false, fmt.Errorf("resolve plan for %s: %w", teacherID, err)
	}
	tier, err := entitlements.Resolve(entitlements.RoleEducator, tierID)
	if err != nil {
		log.Warnf("[Schools] teacher %s has unknown educator tier %q, using %s", teacherID, tierID, fallbackTier)
		if tier, err = entitlements.Resolve(entitlements.RoleEducator, fallbackTier); err != nil {
			return 0, false, err
		}
	}
	limit, limited := tier.StudentLimit()
	return limit, limited, nil
}

func enrollmentResult(err error) string {
	switch {
	case err == nil:
		return "enrolled"
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, gorm.ErrDuplicatedKey):
		return "already_enrolled"
	case errors.Is(err, ErrClassroomFull):
		return "classroom_full"
	case errors.Is(err, ErrPlanLimitReached):
		return "plan_limit"
	case errors.Is(err, ErrConsentRequired):
		return "consent_required"
	}
	return "error"
}

// Roster returns the active students of a teacher's classroom by name.
func (s *Service) Roster(ctx context.Context, classroomID uint, teacherID string) ([]models.ClassroomRoster, error) {
	if _, err := s.TeacherClassroom(ctx, classroomID, teacherID); err != nil {
		return nil, err
	}
	return s.store.ListRoster(ctx, classroomID)
}

// UpdateEnrollmentStatus closes an active roster entry as dropped or
// completed and stamps the time. Closed entries do not reopen, so seat and
// plan limits are only ever checked by Enroll.
func (s *Service) UpdateEnrollmentStatus(ctx context.Context, classroomID, rosterID uint, teacherID, status string) (*models.ClassroomRoster, error) {
	switch status {
	case models.ENROLLMENT_DROPPED, models.ENROLLMENT_COMPLETED:
	default:
		return nil, &ValidationError{Message: "status must be dropped or completed"}
	}
	if _, err := s.TeacherClassroom(ctx, classroomID, teacherID); err != nil {
		return nil, err
	}
	entry, err := s.store.GetRosterEntry(ctx, rosterID)
	if err != nil {
		return nil, notFound(err, ErrEnrollmentMissing)
	}
	if entry.ClassroomID != classroomID {
		return nil, ErrEnrollmentMissing
	}
	if entry.EnrollmentStatus != models.ENROLLMENT_ACTIVE {
		return nil, &ValidationError{Message: "Enrollment is already " + entry.EnrollmentStatus}
	}

	now := time.Now()
	entry.EnrollmentStatus = status
	switch status {
	case models.ENROLLMENT_DROPPED:
		entry.DroppedAt = &now
	case models.ENROLLMENT_COMPLETED:
		entry.CompletedAt = &now
	}
	if err := s.store.UpdateRosterEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// notFound maps gorm.ErrRecordNotFound to target and passes other errors through.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
