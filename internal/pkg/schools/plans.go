package schools

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/billing"
)

type UserLookup interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
}

type StatusReader interface {
	GetStatus(ctx context.Context, email string) (*billing.Status, error)
}

// BillingPlans reads a teacher's educator tier from their subscription.
// Teachers without an entitling subscription fall back to the free tier.
type BillingPlans struct {
	users  UserLookup
	status StatusReader
}

var _ PlanResolver = (*BillingPlans)(nil)

func NewBillingPlans(users UserLookup, status StatusReader) *BillingPlans {
	return &BillingPlans{users: users, status: status}
}

func (p *BillingPlans) EducatorTier(ctx context.Context, teacherID string) (string, error) {
	user, err := p.users.GetByUID(ctx, teacherID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallbackTier, nil
	}
	if err != nil {
		return "", err
	}
	if user.Email == "" {
		return fallbackTier, nil
	}
	st, err := p.status.GetStatus(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if !st.Entitled() {
		return fallbackTier, nil
	}
	return st.Tier, nil
}
