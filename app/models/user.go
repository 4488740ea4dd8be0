package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

const (
	ROLE_STUDENT      = "student"
	ROLE_MENTOR       = "mentor"
	ROLE_EDUCATOR     = "educator"
	ROLE_TEACHER      = "teacher"
	ROLE_ORGANIZATION = "organization"
	ROLE_SPONSOR      = "sponsor"
	ROLE_ADMIN        = "admin"
	STATUS_ACTIVE     = "active"
	STATUS_INACTIVE   = "inactive"
	STATUS_PENDING    = "pending"
)

// User is a platform member. UID is the identity-provider subject id that
// clients pass around as userId.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UID             string         `gorm:"type:varchar(128);uniqueIndex" json:"uid" validate:"required,max=128"`
	DisplayName     string         `gorm:"type:varchar(150)" json:"displayName" validate:"required,min=1,max=150"`
	Email           string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	PasswordHash    string         `gorm:"type:varchar(255);default:''" json:"-"`
	Role            string         `gorm:"type:varchar(50);index;default:'student'" json:"role" validate:"oneof=student mentor educator teacher organization sponsor admin"`
	Status          string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive pending"`
	School          string         `gorm:"type:varchar(200);default:''" json:"school"`
	GradeLevel      string         `gorm:"type:varchar(50);default:''" json:"gradeLevel"`
	Program         string         `gorm:"type:varchar(100);default:''" json:"program"`
	Organization    string         `gorm:"type:varchar(200);default:''" json:"organization"`
	Expertise       string         `gorm:"type:varchar(255);default:''" json:"expertise"`
	Region          string         `gorm:"type:varchar(100);default:'';index" json:"region"`
	SessionCount    int            `gorm:"default:0" json:"sessionCount"`
	EngagementScore float64        `gorm:"default:0" json:"engagementScore"`
	LastActiveAt    *time.Time     `gorm:"type:timestamp;default:null" json:"lastActiveAt,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// NewMember builds an active member with a fresh UID and a hashed password.
func NewMember(email, displayName, role, password string) (*User, error) {
	u := &User{
		UID:         uuid.NewString(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: strings.TrimSpace(displayName),
		Role:        role,
		Status:      STATUS_ACTIVE,
	}
	if u.Role == "" {
		u.Role = ROLE_STUDENT
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword stores the bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash. Members
// without a password never match.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// FirstName returns the first word of the display name, or "there".
func (u *User) FirstName() string {
	if first := strings.Split(u.DisplayName, " ")[0]; first != "" {
		return first
	}
	return "there"
}
