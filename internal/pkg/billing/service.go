package billing

import (
	"time"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/cache"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
	"gorm.io/gorm"
)

// Service orchestrates checkout, webhook synchronization and status reads.
type Service struct {
	cfg      Config
	repo     Repository
	provider Provider
	cache    cache.Store
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

func WithCache(store cache.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.cache = store
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a billing service. provider may be nil when no payment
// credentials are configured; checkout then fails with ErrNotConfigured.
func NewService(cfg Config, repo Repository, provider Provider, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		repo:     repo,
		provider: provider,
		cache:    cache.Noop{},
		notifier: nopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewServiceFromDB builds the production service from a GORM handle.
func NewServiceFromDB(cfg Config, db *gorm.DB, opts ...Option) *Service {
	var provider Provider
	if cfg.Configured() {
		provider = NewStripeProvider(cfg.SecretKey)
	}
	return NewService(cfg, NewRepository(db), provider, opts...)
}

func (s *Service) Config() Config {
	return s.cfg
}
