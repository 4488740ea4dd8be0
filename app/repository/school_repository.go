package repository

import (
	"context"
	"errors"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schools"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ schools.Store = (*SchoolRepository)(nil)

// SchoolRepository stores districts, schools, classrooms and rosters.
type SchoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (r *SchoolRepository) CreateDistrict(ctx context.Context, d *models.District) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *SchoolRepository) GetDistrict(ctx context.Context, id uint) (*models.District, error) {
	var d models.District
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *SchoolRepository) ListActiveDistricts(ctx context.Context) ([]models.District, error) {
	var list []models.District
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&list).Error
	return list, err
}

func (r *SchoolRepository) CreateSchool(ctx context.Context, s *models.School) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		if s.DistrictID == nil {
			return nil
		}
		return tx.Model(&models.District{}).Where("id = ?", *s.DistrictID).
			UpdateColumn("school_count", gorm.Expr("school_count + 1")).Error
	})
}

func (r *SchoolRepository) GetSchool(ctx context.Context, id uint) (*models.School, error) {
	var s models.School
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SchoolRepository) ListActiveSchools(ctx context.Context, districtID uint) ([]models.School, error) {
	var list []models.School
	query := r.db.WithContext(ctx).Where("status = ?", models.SCHOOL_STATUS_ACTIVE)
	if districtID != 0 {
		query = query.Where("district_id = ?", districtID)
	}
	err := query.Order("name").Find(&list).Error
	return list, err
}

func (r *SchoolRepository) CreateClassroom(ctx context.Context, c *models.Classroom) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Model(&models.School{}).Where("id = ?", c.SchoolID).
			UpdateColumn("classroom_count", gorm.Expr("classroom_count + 1")).Error
	})
}

func (r *SchoolRepository) GetClassroom(ctx context.Context, id uint) (*models.Classroom, error) {
	var c models.Classroom
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SchoolRepository) GetClassroomByJoinCode(ctx context.Context, code string) (*models.Classroom, error) {
	var c models.Classroom
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SchoolRepository) ListClassroomsByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	var list []models.Classroom
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND status IN ?", teacherID, []string{models.CLASSROOM_STATUS_ACTIVE, models.CLASSROOM_STATUS_DRAFT}).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *SchoolRepository) ListClassroomsBySchool(ctx context.Context, schoolID uint) ([]models.Classroom, error) {
	var list []models.Classroom
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND status = ?", schoolID, models.CLASSROOM_STATUS_ACTIVE).
		Order("name").
		Find(&list).Error
	return list, err
}

func (r *SchoolRepository) JoinCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Classroom{}).Where("join_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *SchoolRepository) UpdateJoinCode(ctx context.Context, classroomID uint, code string) error {
	return r.db.WithContext(ctx).Model(&models.Classroom{}).Where("id = ?", classroomID).
		Update("join_code", code).Error
}

func (r *SchoolRepository) Enroll(ctx context.Context, classroomID uint, studentID string, admit func(schools.EnrollmentState) (*models.ClassroomRoster, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var classroom models.Classroom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&classroom, classroomID).Error; err != nil {
			return err
		}
		state := schools.EnrollmentState{Classroom: &classroom}

		var school models.School
		err := tx.First(&school, classroom.SchoolID).Error
		switch {
		case err == nil:
			state.School = &school
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var existing int64
		if err := tx.Model(&models.ClassroomRoster{}).
			Where("classroom_id = ? AND student_id = ?", classroomID, studentID).
			Count(&existing).Error; err != nil {
			return err
		}
		state.Existing = existing > 0

		if err := tx.Model(&models.ClassroomRoster{}).
			Joins("JOIN classrooms ON classrooms.id = classroom_roster.classroom_id").
			Where("classrooms.teacher_id = ? AND classroom_roster.enrollment_status = ?", classroom.TeacherID, models.ENROLLMENT_ACTIVE).
			Count(&state.TeacherActive).Error; err != nil {
			return err
		}

		entry, err := admit(state)
		if err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return refreshStudentCount(tx, classroomID)
	})
}

func (r *SchoolRepository) ListRoster(ctx context.Context, classroomID uint) ([]models.ClassroomRoster, error) {
	var list []models.ClassroomRoster
	err := r.db.WithContext(ctx).
		Where("classroom_id = ? AND enrollment_status = ?", classroomID, models.ENROLLMENT_ACTIVE).
		Order("student_name").
		Find(&list).Error
	return list, err
}

func (r *SchoolRepository) GetRosterEntry(ctx context.Context, id uint) (*models.ClassroomRoster, error) {
	var entry models.ClassroomRoster
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *SchoolRepository) UpdateRosterEntry(ctx context.Context, entry *models.ClassroomRoster) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(entry).Error; err != nil {
			return err
		}
		return refreshStudentCount(tx, entry.ClassroomID)
	})
}

// refreshStudentCount recomputes the cached count of active students.
func refreshStudentCount(tx *gorm.DB, classroomID uint) error {
	active := tx.Model(&models.ClassroomRoster{}).Select("COUNT(*)").
		Where("classroom_id = ? AND enrollment_status = ?", classroomID, models.ENROLLMENT_ACTIVE)
	return tx.Model(&models.Classroom{}).Where("id = ?", classroomID).
		UpdateColumn("student_count", active).Error
}
