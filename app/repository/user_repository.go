package repository

import (
	"context"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new member. A taken email surfaces as
// gorm.ErrDuplicatedKey when the connection translates errors.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByUID retrieves a user by identity-provider subject id
func (r *userRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByUIDs(ctx context.Context, uids []string) ([]models.User, error) {
	var users []models.User
	if len(uids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("uid IN ?", uids).Find(&users).Error
	return users, err
}

func (r *userRepository) ListByRole(ctx context.Context, role string, limit int) ([]models.User, error) {
	var users []models.User
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&users).Error
	return users, err
}

// ListActive returns active members, least recently seen first.
func (r *userRepository) ListActive(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	query := r.db.WithContext(ctx).
		Where("status = ?", models.STATUS_ACTIVE).
		Order("COALESCE(last_active_at, created_at) ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

type groupCount struct {
	Name  string
	Total int64
}

func (r *userRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.User{}), "role")
}

func (r *userRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("last_active_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *userRepository) CountByRegion(ctx context.Context) (map[string]int64, error) {
	return countGrouped(r.db.WithContext(ctx).Model(&models.User{}).Where("region <> ''"), "region")
}

func (r *userRepository) AverageSessions(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("AVG(session_count)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// countGrouped runs a COUNT(*) grouped by column on the prepared query.
func countGrouped(query *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupCount
	err := query.
		Select(column + " AS name, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Name] = row.Total
	}
	return out, nil
}
