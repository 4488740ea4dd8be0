package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"gorm.io/gorm"
)

const (
	PreviewLength  = 100
	MaxBodyLength  = 5000
	MaxSubject     = 200
	DefaultHistory = 200
)

var ErrThreadNotFound = errors.New("thread not found")

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Store persists threads and messages.
type Store interface {
	ListThreads(ctx context.Context, userID string, limit int) ([]models.MessageThread, error)
	GetThread(ctx context.Context, id string) (*models.MessageThread, error)
	ListMessages(ctx context.Context, threadID string, limit int) ([]models.Message, error)
	CreateThread(ctx context.Context, thread *models.MessageThread, first *models.Message) error
	AddMessage(ctx context.Context, thread *models.MessageThread, msg *models.Message) error
	MarkRead(ctx context.Context, threadID, userID string, at time.Time) error
}

// ThreadView is a thread with its messages, oldest first.
type ThreadView struct {
	Thread   models.MessageThread `json:"thread"`
	Messages []models.Message     `json:"messages"`
}

type CreateInput struct {
	Subject        string   `json:"subject"`
	ParticipantIDs []string `json:"participantIds"`
	Body           string   `json:"message"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Threads lists the threads userID takes part in, most recent first.
func (s *Service) Threads(ctx context.Context, userID string, limit int) ([]models.MessageThread, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListThreads(ctx, userID, limit)
}

// Thread returns a thread with messages and marks it read for userID.
// Threads the user is not part of are reported as not found.
func (s *Service) Thread(ctx context.Context, id, userID string) (*ThreadView, error) {
	thread, err := s.lookup(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, thread.ID, DefaultHistory)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if err := s.store.MarkRead(ctx, thread.ID, userID, s.now()); err != nil {
		return nil, fmt.Errorf("mark thread read: %w", err)
	}
	return &ThreadView{Thread: *thread, Messages: msgs}, nil
}

// Create opens a thread between createdBy and the given participants with
// an optional first message.
func (s *Service) Create(ctx context.Context, createdBy string, in CreateInput) (*models.MessageThread, error) {
	createdBy = strings.TrimSpace(createdBy)
	if createdBy == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}
	participants := dedupe(append([]string{createdBy}, in.ParticipantIDs...))
	if len(participants) < 2 {
		return nil, &ValidationError{Message: "A thread needs at least one other participant"}
	}
	subject := strings.TrimSpace(in.Subject)
	if utf8.RuneCountInString(subject) > MaxSubject {
		return nil, &ValidationError{Message: fmt.Sprintf("Subject must be at most %d characters", MaxSubject)}
	}

	thread := &models.MessageThread{
		Subject:        subject,
		CreatedBy:      createdBy,
		ParticipantIDs: participants,
	}
	for _, id := range participants {
		thread.Participants = append(thread.Participants, models.ThreadParticipant{UserID: id})
	}

	var first *models.Message
	if body := strings.TrimSpace(in.Body); body != "" {
		msg, err := s.newMessage(createdBy, body)
		if err != nil {
			return nil, err
		}
		first = msg
		s.touch(thread, msg)
	}

	if err := s.store.CreateThread(ctx, thread, first); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return thread, nil
}

// Post appends a message and refreshes the thread preview.
func (s *Service) Post(ctx context.Context, threadID, senderID, body string) (*models.Message, error) {
	thread, err := s.lookup(ctx, threadID, senderID)
	if err != nil {
		return nil, err
	}
	msg, err := s.newMessage(senderID, strings.TrimSpace(body))
	if err != nil {
		return nil, err
	}
	msg.ThreadID = thread.ID
	s.touch(thread, msg)

	if err := s.store.AddMessage(ctx, thread, msg); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	return msg, nil
}

func (s *Service) lookup(ctx context.Context, id, userID string) (*models.MessageThread, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Message: "userId is required"}
	}
	thread, err := s.store.GetThread(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(userID) {
		return nil, ErrThreadNotFound
	}
	return thread, nil
}

func (s *Service) newMessage(senderID, body string) (*models.Message, error) {
	if body == "" {
		return nil, &ValidationError{Message: "Message body is required"}
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return nil, &ValidationError{Message: fmt.Sprintf("Message must be at most %d characters", MaxBodyLength)}
	}
	return &models.Message{SenderID: senderID, Body: body, CreatedAt: s.now()}, nil
}

func (s *Service) touch(thread *models.MessageThread, msg *models.Message) {
	at := msg.CreatedAt
	thread.LastMessage = Preview(msg.Body)
	thread.LastMessageAt = &at
	thread.LastMessageBy = msg.SenderID
}

// Preview shortens body to the stored preview length.
func Preview(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(body) <= PreviewLength {
		return body
	}
	runes := []rune(body)
	return string(runes[:PreviewLength])
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
