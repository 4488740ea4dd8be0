package repository

import (
	"context"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/messaging"
	"gorm.io/gorm"
)

var _ messaging.Store = (*MessageRepository)(nil)

// MessageRepository stores threads, their participants and messages.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) ListThreads(ctx context.Context, userID string, limit int) ([]models.MessageThread, error) {
	var threads []models.MessageThread
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Joins("JOIN thread_participants tp ON tp.thread_id = message_threads.id AND tp.user_id = ?", userID).
		Order("COALESCE(message_threads.last_message_at, message_threads.created_at) DESC").
		Limit(limit).
		Find(&threads).Error
	return threads, err
}

func (r *MessageRepository) GetThread(ctx context.Context, id string) (*models.MessageThread, error) {
	var thread models.MessageThread
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListMessages returns the latest limit messages, oldest first.
func (r *MessageRepository) ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CreateThread inserts the thread, its participants and the optional first
// message in one transaction.
func (r *MessageRepository) CreateThread(ctx context.Context, thread *models.MessageThread, first *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		if first == nil {
			return nil
		}
		first.ThreadID = thread.ID
		return tx.Create(first).Error
	})
}

func (r *MessageRepository) AddMessage(ctx context.Context, thread *models.MessageThread, msg *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.MessageThread{}).
			Where("id = ?", thread.ID).
			Updates(map[string]interface{}{
				"last_message":    thread.LastMessage,
				"last_message_at": thread.LastMessageAt,
				"last_message_by": thread.LastMessageBy,
			}).Error
	})
}

func (r *MessageRepository) MarkRead(ctx context.Context, threadID, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ThreadParticipant{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Update("last_read_at", at).Error
}

// CountMessages counts every message sent on the platform.
func (r *MessageRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count).Error
	return count, err
}
