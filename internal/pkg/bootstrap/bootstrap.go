// Package bootstrap builds the shared service graph for the server and the
// scheduler. Nothing here is global; callers own the returned Services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/repository"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/ai"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/archive"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/billing"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/cache"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/contact"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/database"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/export"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/mail"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/messaging"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics/counter"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/report"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schedule"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schools"
)

// Services is the wired application. Fields backed by the database are nil
// when the database is not configured; Cache is nil when redis is unreachable.
type Services struct {
	DB          *gorm.DB
	Cache       *cache.Redis
	CacheConfig cache.Config
	Metrics     *metrics.Metrics
	Factory     *repository.Factory
	// Activity needs both the database and redis.
	Activity *counter.Counter

	Billing   *billing.Service
	Mailer    *mail.Mailer
	Exporter  *export.Exporter
	Reports   *report.Generator
	Archive   archive.Store
	Schedule  *schedule.Service
	Messaging *messaging.Service
	Contact   *contact.Service
	Schools   *schools.Service
	AI        *ai.Service
}

// New connects to every configured backend and builds the services.
// Unconfigured optional backends are logged and left out.
func New(ctx context.Context) (*Services, error) {
	s := &Services{Metrics: metrics.New()}

	dbCfg := database.LoadConfig()
	if dbCfg.Configured() {
		db, err := database.Setup(dbCfg)
		if err != nil {
			return nil, err
		}
		s.DB = db
	} else {
		log.Warn("[Bootstrap] database not configured, data routes answer 503")
	}

	s.CacheConfig = cache.LoadConfig()
	redisCache := cache.NewRedis(ctx, s.CacheConfig)
	if err := redisCache.Ping(ctx); err == nil {
		s.Cache = redisCache
	} else {
		_ = redisCache.Close()
	}

	mailer, err := mail.New(mail.LoadConfig(), mail.WithMetrics(s.Metrics))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("mail: %w", err)
	}
	s.Mailer = mailer

	archiveCfg, err := archive.LoadConfig()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("archive config: %w", err)
	}
	archiveClient, err := archive.NewClient(ctx, archiveCfg)
	switch {
	case errors.Is(err, archive.ErrDisabled):
	case err != nil:
		log.Warnf("[Bootstrap] archive unavailable: %v", err)
	default:
		s.Archive = archiveClient
	}

	s.AI = ai.NewService(ai.LoadConfig(), ai.WithMetrics(s.Metrics))

	var exportSource export.Source
	var reportSource report.Source
	if s.DB != nil {
		s.Factory = repository.NewFactory(s.DB, s.Cache)
		exportSource = s.Factory.ExportSource()
		reportSource = s.Factory.ReportSource()
		repos := s.Factory.GetRepositories()

		var store cache.Store = cache.Noop{}
		if s.Cache != nil {
			store = s.Cache
		}
		s.Billing = billing.NewServiceFromDB(billing.LoadConfig(), s.DB,
			billing.WithCache(store),
			billing.WithNotifier(mail.NewBillingNotifier(mailer)),
			billing.WithMetrics(s.Metrics),
		)
		s.Messaging = messaging.NewService(repos.Message)
		s.Contact = contact.NewService(repos.Contact, mail.NewContactNotifier(mailer))
		s.Schools = schools.NewService(repos.School,
			schools.WithPlans(schools.NewBillingPlans(repos.User, s.Billing)),
			schools.WithMetrics(s.Metrics),
		)
		if s.Cache != nil {
			s.Activity = counter.New(s.Cache.Client(), s.DB)
		}
	}

	s.Exporter = export.NewExporter(exportSource, s.Metrics)
	s.Reports, err = report.NewGenerator(reportSource, s.Metrics)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("report templates: %w", err)
	}

	if s.Factory != nil {
		opts := []schedule.Option{schedule.WithMetrics(s.Metrics)}
		if s.Archive != nil {
			opts = append(opts, schedule.WithArchive(s.Archive))
		}
		s.Schedule = schedule.NewService(s.Factory.GetRepositories().ScheduledReport, s.Reports, mailer, opts...)
	}
	return s, nil
}

// Close releases the database and cache connections.
func (s *Services) Close() {
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			log.Warnf("[Bootstrap] closing cache: %v", err)
		}
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
