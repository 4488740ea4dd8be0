package models

import "time"

const (
	SCHOOL_STATUS_ACTIVE   = "active"
	SCHOOL_STATUS_INACTIVE = "inactive"
	SCHOOL_STATUS_PENDING  = "pending"

	CLASSROOM_STATUS_ACTIVE   = "active"
	CLASSROOM_STATUS_DRAFT    = "draft"
	CLASSROOM_STATUS_ARCHIVED = "archived"

	ENROLLMENT_ACTIVE    = "active"
	ENROLLMENT_DROPPED   = "dropped"
	ENROLLMENT_COMPLETED = "completed"
)

// District groups the schools of one administrative area.
type District struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null;index" json:"name" validate:"required,max=200"`
	State       string    `gorm:"type:varchar(100);default:''" json:"state"`
	IsActive    bool      `gorm:"default:true;index" json:"isActive"`
	SchoolCount int       `gorm:"default:0" json:"schoolCount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type School struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	DistrictID             *uint     `gorm:"index" json:"districtId,omitempty"`
	Name                   string    `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	City                   string    `gorm:"type:varchar(100);default:''" json:"city"`
	State                  string    `gorm:"type:varchar(100);default:''" json:"state"`
	Status                 string    `gorm:"type:varchar(16);not null;default:'active';index" json:"status" validate:"oneof=active inactive pending"`
	ClassroomCount         int       `gorm:"default:0" json:"classroomCount"`
	RequireParentalConsent bool      `gorm:"default:false" json:"requireParentalConsent"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Classroom is a teacher's class. Students join it with JoinCode.
type Classroom struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SchoolID     uint      `gorm:"not null;index" json:"schoolId" validate:"required"`
	TeacherID    string    `gorm:"type:varchar(128);not null;index" json:"teacherId" validate:"required"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Subject      string    `gorm:"type:varchar(100);default:''" json:"subject"`
	GradeLevel   string    `gorm:"type:varchar(50);default:''" json:"gradeLevel"`
	JoinCode     string    `gorm:"type:char(6);not null;uniqueIndex" json:"joinCode"`
	Status       string    `gorm:"type:varchar(16);not null;default:'active';index" json:"status" validate:"oneof=active draft archived"`
	MaxStudents  int       `gorm:"default:0" json:"maxStudents" validate:"min=0"`
	StudentCount int       `gorm:"default:0" json:"studentCount"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsFull reports whether the classroom's own seat limit is reached. Zero
// means the classroom sets no limit.
func (c *Classroom) IsFull() bool {
	return c.MaxStudents > 0 && c.StudentCount >= c.MaxStudents
}

// ClassroomRoster is one student's enrollment in a classroom.
type ClassroomRoster struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	ClassroomID          uint       `gorm:"not null;uniqueIndex:idx_classroom_roster_student,priority:1" json:"classroomId"`
	StudentID            string     `gorm:"type:varchar(128);not null;uniqueIndex:idx_classroom_roster_student,priority:2;index" json:"studentId"`
	StudentName          string     `gorm:"type:varchar(150);default:''" json:"studentName"`
	EnrollmentStatus     string     `gorm:"type:varchar(16);not null;default:'active';index" json:"enrollmentStatus"`
	ParentalConsentGiven bool       `gorm:"default:false" json:"parentalConsentGiven"`
	EnrolledAt           time.Time  `gorm:"not null" json:"enrolledAt"`
	DroppedAt            *time.Time `gorm:"type:timestamp;default:null" json:"droppedAt,omitempty"`
	CompletedAt          *time.Time `gorm:"type:timestamp;default:null" json:"completedAt,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ClassroomRoster) TableName() string {
	return "classroom_roster"
}
