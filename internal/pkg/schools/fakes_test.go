package schools

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

type memoryStore struct {
	districts  []models.District
	schools    []models.School
	classrooms []models.Classroom
	roster     []models.ClassroomRoster

	// duplicateCreates fails that many CreateClassroom calls as a lost race.
	duplicateCreates int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) CreateDistrict(_ context.Context, d *models.District) error {
	d.ID = uint(len(m.districts) + 1)
	m.districts = append(m.districts, *d)
	return nil
}

func (m *memoryStore) GetDistrict(_ context.Context, id uint) (*models.District, error) {
	for _, d := range m.districts {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryStore) ListActiveDistricts(_ context.Context) ([]models.District, error) {
	var out []models.District
	for _, d := range m.districts {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryStore) CreateSchool(_ context.Context, s *models.School) error {
	s.ID = uint(len(m.schools) + 1)
	m.schools = append(m.schools, *s)
	if s.DistrictID != nil {
		for i := range m.districts {
			if m.districts[i].ID == *s.DistrictID {
				m.districts[i].SchoolCount++
			}
		}
	}
	return nil
}

func (m *memoryStore) GetSchool(_ context.Context, id uint) (*models.School, error) {
	for _, s := range m.schools {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryStore) ListActiveSchools(_ context.Context, districtID uint) ([]models.School, error) {
	var out []models.School
	for _, s := range m.schools {
		if s.Status != models.SCHOOL_STATUS_ACTIVE {
			continue
		}
		if districtID != 0 && (s.DistrictID == nil || *s.DistrictID != districtID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryStore) CreateClassroom(_ context.Context, c *models.Classroom) error {
	if m.duplicateCreates > 0 {
		m.duplicateCreates--
		return gorm.ErrDuplicatedKey
	}
	c.ID = uint(len(m.classrooms) + 1)
	m.classrooms = append(m.classrooms, *c)
	for i := range m.schools {
		if m.schools[i].ID == c.SchoolID {
			m.schools[i].ClassroomCount++
		}
	}
	return nil
}

func (m *memoryStore) classroom(id uint) *models.Classroom {
	for i := range m.classrooms {
		if m.classrooms[i].ID == id {
			return &m.classrooms[i]
		}
	}
	return nil
}

func (m *memoryStore) GetClassroom(_ context.Context, id uint) (*models.Classroom, error) {
	if c := m.classroom(id); c != nil {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryStore) GetClassroomByJoinCode(_ context.Context, code string) (*models.Classroom, error) {
	for _, c := range m.classrooms {
		if c.JoinCode == code {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryStore) ListClassroomsByTeacher(_ context.Context, teacherID string) ([]models.Classroom, error) {
	var out []models.Classroom
	for _, c := range m.classrooms {
		if c.TeacherID == teacherID && c.Status != models.CLASSROOM_STATUS_ARCHIVED {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) ListClassroomsBySchool(_ context.Context, schoolID uint) ([]models.Classroom, error) {
	var out []models.Classroom
	for _, c := range m.classrooms {
		if c.SchoolID == schoolID && c.Status == models.CLASSROOM_STATUS_ACTIVE {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryStore) JoinCodeTaken(_ context.Context, code string) (bool, error) {
	for _, c := range m.classrooms {
		if c.JoinCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) UpdateJoinCode(_ context.Context, classroomID uint, code string) error {
	m.classroom(classroomID).JoinCode = code
	return nil
}

func (m *memoryStore) Enroll(_ context.Context, classroomID uint, studentID string, admit func(EnrollmentState) (*models.ClassroomRoster, error)) error {
	c := m.classroom(classroomID)
	if c == nil {
		return gorm.ErrRecordNotFound
	}
	state := EnrollmentState{Classroom: c}
	for i := range m.schools {
		if m.schools[i].ID == c.SchoolID {
			state.School = &m.schools[i]
		}
	}
	for _, r := range m.roster {
		if r.ClassroomID == classroomID && r.StudentID == studentID {
			state.Existing = true
		}
		if r.EnrollmentStatus == models.ENROLLMENT_ACTIVE && m.classroom(r.ClassroomID).TeacherID == c.TeacherID {
			state.TeacherActive++
		}
	}
	entry, err := admit(state)
	if err != nil {
		return err
	}
	entry.ID = uint(len(m.roster) + 1)
	m.roster = append(m.roster, *entry)
	m.refresh(classroomID)
	return nil
}

func (m *memoryStore) refresh(classroomID uint) {
	n := 0
	for _, r := range m.roster {
		if r.ClassroomID == classroomID && r.EnrollmentStatus == models.ENROLLMENT_ACTIVE {
			n++
		}
	}
	m.classroom(classroomID).StudentCount = n
}

func (m *memoryStore) ListRoster(_ context.Context, classroomID uint) ([]models.ClassroomRoster, error) {
	var out []models.ClassroomRoster
	for _, r := range m.roster {
		if r.ClassroomID == classroomID && r.EnrollmentStatus == models.ENROLLMENT_ACTIVE {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (m *memoryStore) GetRosterEntry(_ context.Context, id uint) (*models.ClassroomRoster, error) {
	for _, r := range m.roster {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryStore) UpdateRosterEntry(_ context.Context, entry *models.ClassroomRoster) error {
	for i := range m.roster {
		if m.roster[i].ID == entry.ID {
			m.roster[i] = *entry
		}
	}
	m.refresh(entry.ClassroomID)
	return nil
}

type fixedPlans map[string]string

func (p fixedPlans) EducatorTier(_ context.Context, teacherID string) (string, error) {
	if tier, ok := p[teacherID]; ok {
		return tier, nil
	}
	return fallbackTier, nil
}

// codes returns a generator that yields the given codes in order.
func codes(list ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		code := list[i%len(list)]
		i++
		return code, nil
	}
}
