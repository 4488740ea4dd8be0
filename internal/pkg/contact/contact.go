// Package contact stores public contact form submissions and emails the
// admin inbox and the sender about them.
package contact

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	defaultRole      = "Other"
)

var ErrMessageNotFound = errors.New("contact message not found")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store persists contact messages. GetByID returns gorm.ErrRecordNotFound
// for unknown ids.
type Store interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context, limit int) ([]models.ContactMessage, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.ContactMessage, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// Notifier sends the two contact emails.
type Notifier interface {
	NotifyAdmin(ctx context.Context, msg *models.ContactMessage) error
	Confirm(ctx context.Context, msg *models.ContactMessage) error
}

type Input struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Message      string `json:"message"`
}

type Service struct {
	store    Store
	notifier Notifier
	validate *validator.Validate
}

// NewService builds the service. A nil notifier stores messages without
// sending email.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier, validate: validator.New()}
}

// Submit stores the message and then sends both emails. Email failures are
// logged and never fail the submission.
func (s *Service) Submit(ctx context.Context, in Input) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Organization: strings.TrimSpace(in.Organization),
		Role:         strings.TrimSpace(in.Role),
		Message:      strings.TrimSpace(in.Message),
		Status:       models.CONTACT_STATUS_NEW,
	}
	if err := s.validate.Struct(msg); err != nil {
		return nil, validationError(err)
	}
	if err := s.store.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		// one failed email must not cancel the other
		var g errgroup.Group
		g.Go(func() error { return s.notifier.Confirm(ctx, msg) })
		g.Go(func() error { return s.notifier.NotifyAdmin(ctx, msg) })
		if err := g.Wait(); err != nil {
			log.Errorf("[Contact] emails for message %d failed: %v", msg.ID, err)
		}
	}
	return msg, nil
}

// List returns the newest messages first.
func (s *Service) List(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.List(ctx, limit)
}

// UnreadCount counts messages still in status new.
func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	return s.store.CountByStatus(ctx, models.CONTACT_STATUS_NEW)
}

// MarkStatus moves a message to read or replied.
func (s *Service) MarkStatus(ctx context.Context, id uint, status string) (*models.ContactMessage, error) {
	switch status {
	case models.CONTACT_STATUS_NEW, models.CONTACT_STATUS_READ, models.CONTACT_STATUS_REPLIED:
	default:
		return nil, &ValidationError{Message: "status must be one of new, read, replied"}
	}
	msg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	msg.Status = status
	return msg, nil
}

// RoleOrDefault is the role shown in the admin notification.
func RoleOrDefault(msg *models.ContactMessage) string {
	if msg.Role == "" {
		return defaultRole
	}
	return msg.Role
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return &ValidationError{Message: "Missing required fields: name, email, message"}
		case "email":
			return &ValidationError{Message: "Invalid email address"}
		}
		return &ValidationError{Message: verrs[0].Field() + " is too long"}
	}
	return &ValidationError{Message: err.Error()}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMessageNotFound
	}
	return err
}
