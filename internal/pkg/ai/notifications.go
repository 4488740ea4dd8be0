package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
	"golang.org/x/sync/errgroup"
)

// NotificationStore persists generated notifications.
type NotificationStore interface {
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
}

// Content is a notification title and body.
type Content struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var highPriorityTypes = map[string]bool{
	"mentor_response":      true,
	"event_cancelled":      true,
	"event_changed":        true,
	"urgent_message":       true,
	"application_approved": true,
	"safety_alert":         true,
}

var lowPriorityTypes = map[string]bool{
	"new_sponsor":          true,
	"newsletter":           true,
	"general_announcement": true,
	"community_update":     true,
}

var roleHighPriority = map[string]map[string]bool{
	models.ROLE_MENTOR: {"new_mentee_request": true, "session_reminder": true},
	models.ROLE_ADMIN:  {"new_application": true, "system_alert": true},
}

// Priority ranks a notification by type, context and the recipient's role.
func (s *Service) Priority(notificationType string, data map[string]interface{}, role string) string {
	if highPriorityTypes[notificationType] {
		return models.NotificationPriorityHigh
	}
	if lowPriorityTypes[notificationType] {
		return models.NotificationPriorityLow
	}
	if days, ok := number(data["daysInactive"]); ok && days > 30 {
		return models.NotificationPriorityHigh
	}
	if deadline, ok := parseDeadline(data["deadline"]); ok && deadline.Before(s.now().Add(7*24*time.Hour)) {
		return models.NotificationPriorityHigh
	}
	if roleHighPriority[role][notificationType] {
		return models.NotificationPriorityHigh
	}
	return models.NotificationPriorityMedium
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func parseDeadline(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

const notificationPrompt = `You are a helpful assistant for an aviation/STEM education platform.

User Profile:
%s

Notification Type: %s
Context:
%s

Generate a friendly, personalized notification for this user.

Return a JSON object with this exact structure:
{
  "title": "<brief, engaging title (max 50 chars)>",
  "message": "<personalized message (max 150 chars)>"
}

Make it relevant, encouraging, and action-oriented. Use a warm, supportive tone.`

// Personalize writes the notification text for user, falling back to fixed
// templates.
func (s *Service) Personalize(ctx context.Context, user models.User, notificationType string, data map[string]interface{}) Content {
	if s.completer != nil {
		profile, err := safeJSON(map[string]interface{}{
			"role":        user.Role,
			"displayName": user.DisplayName,
			"interests":   interests(user),
		})
		var details string
		if err == nil {
			details, err = safeJSON(data)
		}
		if err == nil {
			var out Content
			err = s.completeJSON(ctx, "notification", fmt.Sprintf(notificationPrompt, profile, notificationType, details), 0.7, 200, &out)
			if err == nil && out.Title != "" && out.Message != "" {
				s.record("notification", SourceAI)
				return out
			}
		}
	}
	s.record("notification", SourceFallback)
	return FallbackContent(user, notificationType, data)
}

func interests(u models.User) []string {
	var out []string
	for _, v := range []string{u.Program, u.Expertise} {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FallbackContent returns the fixed template for a notification type.
func FallbackContent(user models.User, notificationType string, data map[string]interface{}) Content {
	switch notificationType {
	case "mentor_match":
		return Content{"New Mentor Match!", fmt.Sprintf("Hi %s! We found a great mentor match for you. Check out their profile.", user.FirstName())}
	case "event_reminder":
		return Content{"Event Reminder", fmt.Sprintf("Don't forget: %s is coming up soon!", text(data["eventName"], "your event"))}
	case "resource_recommendation":
		return Content{"New Resource for You", fmt.Sprintf("Based on your interests, you might enjoy this new %s.", text(data["resourceType"], "resource"))}
	case "inactive_user":
		return Content{"We Miss You!", "It's been a while since your last visit. Come see what's new in the community!"}
	case "milestone_achieved":
		return Content{"Congratulations!", fmt.Sprintf("You've reached a new milestone: %s", text(data["achievement"], "keep it up"))}
	}
	return Content{"Update from Hidden Treasures Network", "You have a new notification. Check your dashboard for details."}
}

func text(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// SmartNotifications builds one notification per user and persists them.
func (s *Service) SmartNotifications(ctx context.Context, store NotificationStore, users []models.User, notificationType string, data map[string]interface{}) ([]models.Notification, error) {
	out := make([]models.Notification, len(users))
	action := text(data["actionUrl"], "")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchConcurrency)
	for i := range users {
		i := i
		g.Go(func() error {
			u := users[i]
			content := s.Personalize(gctx, u, notificationType, data)
			out[i] = models.Notification{
				UserID:    u.UID,
				Title:     content.Title,
				Message:   content.Message,
				Type:      notificationType,
				Category:  notificationType,
				Priority:  s.Priority(notificationType, data, u.Role),
				ActionURL: action,
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, s.persist(ctx, store, out)
}

// ReEngagement builds a re-engagement notice for an inactive user.
func (s *Service) ReEngagement(ctx context.Context, store NotificationStore, user models.User, inactiveDays int, recent map[string]interface{}) (*models.Notification, error) {
	data := map[string]interface{}{"inactiveDays": inactiveDays}
	for k, v := range recent {
		data[k] = v
	}
	content := s.Personalize(ctx, user, "inactive_user", data)

	priority := models.NotificationPriorityMedium
	if inactiveDays > 30 {
		priority = models.NotificationPriorityHigh
	}
	list := []models.Notification{{
		UserID:    user.UID,
		Title:     content.Title,
		Message:   content.Message,
		Type:      "inactive_user",
		Category:  "re_engagement",
		Priority:  priority,
		ActionURL: "/dashboard",
	}}
	if err := s.persist(ctx, store, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// OrganizationSupport alerts admins that an organization needs help.
func (s *Service) OrganizationSupport(ctx context.Context, store NotificationStore, org models.Organization, issue string) (*models.Notification, error) {
	list := []models.Notification{{
		UserID:    models.ROLE_ADMIN,
		Title:     "Organization May Need Support",
		Message:   fmt.Sprintf("%s may need assistance: %s", org.Name, issue),
		Type:      "organization_support",
		Category:  "organization_support",
		Priority:  models.NotificationPriorityHigh,
		ActionURL: fmt.Sprintf("/dashboard/admin/organizations/%d", org.ID),
	}}
	if err := s.persist(ctx, store, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Service) persist(ctx context.Context, store NotificationStore, list []models.Notification) error {
	if store == nil || len(list) == 0 {
		return nil
	}
	if err := store.CreateNotifications(ctx, list); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}
	log.Infof("[AI] stored %d notifications", len(list))
	return nil
}
