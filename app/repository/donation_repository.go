package repository

import (
	"context"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"gorm.io/gorm"
)

const donationStatusCompleted = "completed"

type donationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) List(ctx context.Context, limit int) ([]models.Donation, error) {
	var donations []models.Donation
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&donations).Error
	return donations, err
}

// SumCompleted returns the completed donation total in cents.
func (r *donationRepository) SumCompleted(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("status = ?", donationStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (r *waitlistRepository) List(ctx context.Context, limit int) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Create(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *analyticsRepository) List(ctx context.Context, limit int) ([]models.AnalyticsSnapshot, error) {
	var snapshots []models.AnalyticsSnapshot
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&snapshots).Error
	return snapshots, err
}

func (r *analyticsRepository) Latest(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	var snapshot models.AnalyticsSnapshot
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
