package repository

import (
	"context"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/cache"
	"gorm.io/gorm"
)

// UserRepository defines the interface for member queries
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByUIDs(ctx context.Context, uids []string) ([]models.User, error)
	// ListByRole returns newest members first; an empty role lists everyone.
	ListByRole(ctx context.Context, role string, limit int) ([]models.User, error)
	ListActive(ctx context.Context, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[string]int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByRegion(ctx context.Context) (map[string]int64, error)
	AverageSessions(ctx context.Context) (float64, error)
}

type OrganizationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Organization, error)
	List(ctx context.Context, limit int) ([]models.Organization, error)
	Count(ctx context.Context) (int64, error)
}

type SponsorRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Sponsor, error)
	ListActive(ctx context.Context) ([]models.Sponsor, error)
	Totals(ctx context.Context) (SponsorTotals, error)
	CountByRegion(ctx context.Context) (map[string]int64, error)
}

// SponsorTotals aggregates the sponsors table. Funding is in cents.
type SponsorTotals struct {
	Total   int64
	Active  int64
	Funding int64
}

type ProgramRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Program, error)
	ListActive(ctx context.Context) ([]models.Program, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountByRegion(ctx context.Context) (map[string]int64, error)
	// CountEnrollments counts every enrollment when status is empty.
	CountEnrollments(ctx context.Context, status string) (int64, error)
	CountScholarships(ctx context.Context, status string) (int64, error)
}

type DonationRepository interface {
	List(ctx context.Context, limit int) ([]models.Donation, error)
	SumCompleted(ctx context.Context) (int64, error)
}

type WaitlistRepository interface {
	List(ctx context.Context, limit int) ([]models.WaitlistEntry, error)
}

type AnalyticsRepository interface {
	Create(ctx context.Context, snapshot *models.AnalyticsSnapshot) error
	List(ctx context.Context, limit int) ([]models.AnalyticsSnapshot, error)
	// Latest returns gorm.ErrRecordNotFound when no snapshot exists.
	Latest(ctx context.Context) (*models.AnalyticsSnapshot, error)
}

type SettingRepository interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value, valueType string) error
}

type NotificationRepository interface {
	CreateNotifications(ctx context.Context, list []models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}

// CacheRepository browses the redis keys the platform writes.
type CacheRepository interface {
	FindKeys(ctx context.Context, pattern string, limit int) ([]CacheEntry, error)
	DeleteKeys(ctx context.Context, keys ...string) (int64, error)
}

type CacheEntry struct {
	Key string        `json:"key"`
	TTL time.Duration `json:"ttl"`
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	Organization    OrganizationRepository
	Sponsor         SponsorRepository
	Program         ProgramRepository
	Donation        DonationRepository
	Waitlist        WaitlistRepository
	Analytics       AnalyticsRepository
	Setting         SettingRepository
	Notification    NotificationRepository
	ScheduledReport *ScheduledReportRepository
	Message         *MessageRepository
	Contact         *ContactRepository
	School          *SchoolRepository
	Cache           CacheRepository
}

// NewRepositories creates a new instance of all repositories. A nil redis
// client leaves Cache nil.
func NewRepositories(db *gorm.DB, redisCache *cache.Redis) *Repositories {
	repos := &Repositories{
		User:            NewUserRepository(db),
		Organization:    NewOrganizationRepository(db),
		Sponsor:         NewSponsorRepository(db),
		Program:         NewProgramRepository(db),
		Donation:        NewDonationRepository(db),
		Waitlist:        NewWaitlistRepository(db),
		Analytics:       NewAnalyticsRepository(db),
		Setting:         NewSettingRepository(db),
		Notification:    NewNotificationRepository(db),
		ScheduledReport: NewScheduledReportRepository(db),
		Message:         NewMessageRepository(db),
		Contact:         NewContactRepository(db),
		School:          NewSchoolRepository(db),
	}
	if redisCache != nil {
		repos.Cache = NewCacheRepository(redisCache.Client())
	}
	return repos
}
