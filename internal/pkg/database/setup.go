package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

type Config struct {
	User        string
	Password    string
	Host        string
	Port        string
	Name        string
	AutoMigrate bool
}

func LoadConfig() Config {
	return Config{
		User:        env.GetEnv("DB_USER", ""),
		Password:    env.GetEnv("DB_PASSWORD", ""),
		Host:        env.GetEnv("DB_HOST", "127.0.0.1"),
		Port:        env.GetEnv("DB_PORT", "3306"),
		Name:        env.GetEnv("DB_NAME", ""),
		AutoMigrate: env.GetBool("DB_AUTO_MIGRATE", false),
	}
}

// Configured reports whether enough settings exist to attempt a connection.
func (c Config) Configured() bool {
	return c.User != "" && c.Name != ""
}

// DSN returns the go-sql-driver/mysql data source name.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// MigrateURL returns the golang-migrate mysql URL.
func (c Config) MigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// Models lists every table owned by the platform.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Donation{},
		&models.Organization{},
		&models.WaitlistEntry{},
		&models.Sponsor{},
		&models.Program{},
		&models.Enrollment{},
		&models.ScholarshipApplication{},
		&models.AnalyticsSnapshot{},
		&models.Setting{},
		&models.BillingAccount{},
		&models.BillingSubscription{},
		&models.BillingPayment{},
		&models.BillingWebhookEvent{},
		&models.ScheduledReport{},
		&models.ReportDelivery{},
		&models.MessageThread{},
		&models.ThreadParticipant{},
		&models.Message{},
		&models.Notification{},
		&models.ContactMessage{},
		&models.District{},
		&models.School{},
		&models.Classroom{},
		&models.ClassroomRoster{},
	}
}

// Setup opens the MySQL connection with retries. Schema changes normally go
// through cmd/migrate; DB_AUTO_MIGRATE=true runs gorm's AutoMigrate for
// local development.
func Setup(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       cfg.DSN(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}

		log.Warnf("[Database] failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(Models()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return db, nil
}
