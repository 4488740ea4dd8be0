package billing

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// WebhookResult is returned to the provider after a delivery was handled.
type WebhookResult struct {
	EventID   string `json:"-"`
	EventType string `json:"-"`
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// SubscriptionMetadata travels with the checkout session and the resulting
// subscription so webhooks can recover the subject without a local join.
type SubscriptionMetadata struct {
	UserID      string
	UserRole    string
	Tier        string
	CareerTrack string
	UserEmail   string
}

const (
	metaUserID      = "userId"
	metaUserRole    = "userRole"
	metaTier        = "tier"
	metaCareerTrack = "careerTrack"
	metaUserEmail   = "userEmail"
)

// Map renders the metadata in provider form. careerTrack is always present.
func (m SubscriptionMetadata) Map() map[string]string {
	out := map[string]string{
		metaUserID:      m.UserID,
		metaUserRole:    m.UserRole,
		metaTier:        m.Tier,
		metaCareerTrack: m.CareerTrack,
	}
	if m.UserEmail != "" {
		out[metaUserEmail] = m.UserEmail
	}
	return out
}

func metadataFromMap(in map[string]string) SubscriptionMetadata {
	return SubscriptionMetadata{
		UserID:      in[metaUserID],
		UserRole:    in[metaUserRole],
		Tier:        in[metaTier],
		CareerTrack: in[metaCareerTrack],
		UserEmail:   in[metaUserEmail],
	}
}
