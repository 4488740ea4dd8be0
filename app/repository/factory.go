package repository

import (
	"sync"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/cache"
	"gorm.io/gorm"
)

// Factory builds the repositories once and hands out the derived sources.
// It is constructed in main and passed down; there is no global instance.
type Factory struct {
	db    *gorm.DB
	cache *cache.Redis
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB, redisCache *cache.Redis) *Factory {
	return &Factory{
		db:    db,
		cache: redisCache,
	}
}

// GetRepositories returns the shared repositories instance
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db, f.cache)
	})
	return f.repos
}

// ExportSource returns the export dataset source
func (f *Factory) ExportSource() *ExportSource {
	return NewExportSource(f.GetRepositories())
}

// ReportSource returns the report counts source
func (f *Factory) ReportSource() *ReportSource {
	return NewReportSource(f.GetRepositories())
}

// InsightsSource returns the AI aggregates source
func (f *Factory) InsightsSource() *InsightsSource {
	return NewInsightsSource(f.GetRepositories())
}
