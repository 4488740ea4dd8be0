package repository

import (
	"context"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"gorm.io/gorm"
)

const notificationBatchSize = 100

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateNotifications inserts the list and fills in generated ids.
func (r *notificationRepository) CreateNotifications(ctx context.Context, list []models.Notification) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(list, notificationBatchSize).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var list []models.Notification
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&list).Error
	return list, err
}
