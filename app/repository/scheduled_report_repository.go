package repository

import (
	"context"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schedule"
	"gorm.io/gorm"
)

var _ schedule.Store = (*ScheduledReportRepository)(nil)

// ScheduledReportRepository persists scheduled reports and their delivery log.
type ScheduledReportRepository struct {
	db *gorm.DB
}

func NewScheduledReportRepository(db *gorm.DB) *ScheduledReportRepository {
	return &ScheduledReportRepository{db: db}
}

func (r *ScheduledReportRepository) ListScheduledReports(ctx context.Context) ([]models.ScheduledReport, error) {
	var reports []models.ScheduledReport
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ScheduledReportRepository) GetScheduledReport(ctx context.Context, id uint) (*models.ScheduledReport, error) {
	var report models.ScheduledReport
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ScheduledReportRepository) CreateScheduledReport(ctx context.Context, report *models.ScheduledReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ScheduledReportRepository) SaveScheduledReport(ctx context.Context, report *models.ScheduledReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// DeleteScheduledReport removes the report and its delivery log.
func (r *ScheduledReportRepository) DeleteScheduledReport(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ScheduledReport{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("scheduled_report_id = ?", id).Delete(&models.ReportDelivery{}).Error
	})
}

// DueScheduledReports returns enabled reports whose next run is at or before now.
func (r *ScheduledReportRepository) DueScheduledReports(ctx context.Context, now time.Time) ([]models.ScheduledReport, error) {
	var reports []models.ScheduledReport
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND next_scheduled IS NOT NULL AND next_scheduled <= ?", true, now).
		Order("next_scheduled ASC").
		Find(&reports).Error
	return reports, err
}

func (r *ScheduledReportRepository) CreateReportDelivery(ctx context.Context, delivery *models.ReportDelivery) error {
	return r.db.WithContext(ctx).Create(delivery).Error
}

func (r *ScheduledReportRepository) ListReportDeliveries(ctx context.Context, reportID uint, limit int) ([]models.ReportDelivery, error) {
	var deliveries []models.ReportDelivery
	query := r.db.WithContext(ctx).
		Where("scheduled_report_id = ?", reportID).
		Order("sent_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&deliveries).Error
	return deliveries, err
}
