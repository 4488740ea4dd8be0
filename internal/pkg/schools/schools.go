// Package schools manages districts, schools and classrooms, and enrolls
// students into classrooms within the seat limits of the teacher's plan.
package schools

import (
	"context"
	"errors"
	"strings"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
)

var (
	ErrDistrictNotFound  = errors.New("district not found")
	ErrSchoolNotFound    = errors.New("school not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrEnrollmentMissing = errors.New("enrollment not found")
	ErrAlreadyEnrolled   = errors.New("student already enrolled")
	ErrClassroomFull     = errors.New("classroom is full")
	ErrPlanLimitReached  = errors.New("student limit reached for the teacher's plan")
	ErrConsentRequired   = errors.New("parental consent required")
	ErrJoinCodeExhausted = errors.New("failed to generate unique join code")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// EnrollmentState is what Store.Enroll hands the admission check while the
// classroom row is locked.
type EnrollmentState struct {
	Classroom *models.Classroom
	// School is nil when the classroom's school row is gone.
	School *models.School
	// Existing is set when the student has any roster row in the classroom.
	Existing bool
	// TeacherActive counts active enrollments across the teacher's classrooms.
	TeacherActive int64
}

// Store persists the school hierarchy. Lookups return
// gorm.ErrRecordNotFound for missing rows.
type Store interface {
	CreateDistrict(ctx context.Context, d *models.District) error
	GetDistrict(ctx context.Context, id uint) (*models.District, error)
	ListActiveDistricts(ctx context.Context) ([]models.District, error)

	// CreateSchool also bumps the district's school count.
	CreateSchool(ctx context.Context, s *models.School) error
	GetSchool(ctx context.Context, id uint) (*models.School, error)
	// ListActiveSchools filters by district when districtID is non-zero.
	ListActiveSchools(ctx context.Context, districtID uint) ([]models.School, error)

	// CreateClassroom also bumps the school's classroom count. A taken join
	// code surfaces as gorm.ErrDuplicatedKey.
	CreateClassroom(ctx context.Context, c *models.Classroom) error
	GetClassroom(ctx context.Context, id uint) (*models.Classroom, error)
	GetClassroomByJoinCode(ctx context.Context, code string) (*models.Classroom, error)
	ListClassroomsByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error)
	ListClassroomsBySchool(ctx context.Context, schoolID uint) ([]models.Classroom, error)
	JoinCodeTaken(ctx context.Context, code string) (bool, error)
	UpdateJoinCode(ctx context.Context, classroomID uint, code string) error

	// Enroll locks the classroom, lets admit inspect the state and build
	// the roster row, then stores it and refreshes the student count.
	Enroll(ctx context.Context, classroomID uint, studentID string, admit func(EnrollmentState) (*models.ClassroomRoster, error)) error
	// ListRoster returns active enrollments ordered by student name.
	ListRoster(ctx context.Context, classroomID uint) ([]models.ClassroomRoster, error)
	GetRosterEntry(ctx context.Context, id uint) (*models.ClassroomRoster, error)
	// UpdateRosterEntry saves entry and refreshes the classroom's count.
	UpdateRosterEntry(ctx context.Context, entry *models.ClassroomRoster) error
}

// PlanResolver returns the educator tier id a teacher is entitled to.
type PlanResolver interface {
	EducatorTier(ctx context.Context, teacherID string) (string, error)
}

type Option func(*Service)

// WithPlans enforces the teacher's plan capacity on enrollment.
func WithPlans(p PlanResolver) Option {
	return func(s *Service) {
		s.plans = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

type Service struct {
	store   Store
	plans   PlanResolver
	metrics *metrics.Metrics
	newCode func() (string, error)
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, newCode: randomJoinCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type DistrictInput struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func (s *Service) CreateDistrict(ctx context.Context, in DistrictInput) (*models.District, error) {
	d := &models.District{
		Name:     strings.TrimSpace(in.Name),
		State:    strings.TrimSpace(in.State),
		IsActive: true,
	}
	if d.Name == "" {
		return nil, &ValidationError{Message: "District name is required"}
	}
	if err := s.store.CreateDistrict(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ActiveDistricts(ctx context.Context) ([]models.District, error) {
	return s.store.ListActiveDistricts(ctx)
}

type SchoolInput struct {
	DistrictID             uint   `json:"districtId"`
	Name                   string `json:"name"`
	City                   string `json:"city"`
	State                  string `json:"state"`
	RequireParentalConsent bool   `json:"requireParentalConsent"`
}

func (s *Service) CreateSchool(ctx context.Context, in SchoolInput) (*models.School, error) {
	school := &models.School{
		Name:                   strings.TrimSpace(in.Name),
		City:                   strings.TrimSpace(in.City),
		State:                  strings.TrimSpace(in.State),
		Status:                 models.SCHOOL_STATUS_ACTIVE,
		RequireParentalConsent: in.RequireParentalConsent,
	}
	if school.Name == "" {
		return nil, &ValidationError{Message: "School name is required"}
	}
	if in.DistrictID != 0 {
		if _, err := s.store.GetDistrict(ctx, in.DistrictID); err != nil {
			return nil, notFound(err, ErrDistrictNotFound)
		}
		id := in.DistrictID
		school.DistrictID = &id
	}
	if err := s.store.CreateSchool(ctx, school); err != nil {
		return nil, err
	}
	return school, nil
}

func (s *Service) School(ctx context.Context, id uint) (*models.School, error) {
	school, err := s.store.GetSchool(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSchoolNotFound)
	}
	return school, nil
}

// ActiveSchools lists active schools by name, within one district when
// districtID is non-zero.
func (s *Service) ActiveSchools(ctx context.Context, districtID uint) ([]models.School, error) {
	return s.store.ListActiveSchools(ctx, districtID)
}

// SchoolClassrooms lists a school's active classrooms by name.
func (s *Service) SchoolClassrooms(ctx context.Context, schoolID uint) ([]models.Classroom, error) {
	if _, err := s.School(ctx, schoolID); err != nil {
		return nil, err
	}
	return s.store.ListClassroomsBySchool(ctx, schoolID)
}
