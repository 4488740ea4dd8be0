package entitlements

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

// ErrTierNotFound is returned when a tier id is not part of the role's table.
var ErrTierNotFound = errors.New("tier not found")

// ErrUnknownRole is returned for roles without a tier table.
var ErrUnknownRole = errors.New("unknown role")

// Role selects one of the tier tables.
type Role string

const (
	RoleStudent  Role = "student"
	RoleMentor   Role = "mentor"
	RoleEducator Role = "educator"
)

// CareerTrack relabels student tiers without changing price or features.
type CareerTrack string

const (
	TrackAviation         CareerTrack = "aviation"
	TrackSTEM             CareerTrack = "stem"
	TrackEntrepreneurship CareerTrack = "entrepreneurship"
)

// Tier is an immutable bundle of price and features for a role.
type Tier struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	TrackNames   map[CareerTrack]string `json:"trackName,omitempty"`
	Price        int64                  `json:"price"`
	Features     []string               `json:"features"`
	Capacity     string                 `json:"capacity"`
	RevenueShare int                    `json:"revenueShare,omitempty"`
	// PriceEnvKey names the env variable holding a pre-provisioned yearly price.
	PriceEnvKey string `json:"-"`
}

// Free reports whether the tier never goes through checkout.
func (t Tier) Free() bool {
	return t.Price == 0
}

// StudentLimit parses an educator capacity. ok is false for unlimited or
// non-numeric capacities such as mentor ratios.
func (t Tier) StudentLimit() (limit int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(t.Capacity))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NormalizeRole maps user roles onto tier tables. Teachers and
// organizations buy educator tiers.
func NormalizeRole(role string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case models.ROLE_STUDENT:
		return RoleStudent, nil
	case models.ROLE_MENTOR:
		return RoleMentor, nil
	case models.ROLE_EDUCATOR, models.ROLE_TEACHER, models.ROLE_ORGANIZATION:
		return RoleEducator, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// Tiers returns the ordered tier table for role, lowest first.
func Tiers(role Role) []Tier {
	switch role {
	case RoleStudent:
		return clone(studentTiers)
	case RoleMentor:
		return clone(mentorTiers)
	case RoleEducator:
		return clone(educatorTiers)
	}
	return nil
}

// Resolve looks up tierID in the table for role.
func Resolve(role Role, tierID string) (Tier, error) {
	for _, t := range table(role) {
		if t.ID == tierID {
			return cloneTier(t), nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q for role %q", ErrTierNotFound, tierID, role)
}

// IsFree reports whether tierID has no price for role. Unknown tiers are
// treated as free.
func IsFree(role Role, tierID string) bool {
	t, err := Resolve(role, tierID)
	if err != nil {
		return true
	}
	return t.Free()
}

// UpgradePath lists the tier ids above current, in order.
func UpgradePath(role Role, current string) []string {
	tiers := table(role)
	for i, t := range tiers {
		if t.ID != current {
			continue
		}
		path := make([]string, 0, len(tiers)-i-1)
		for _, up := range tiers[i+1:] {
			path = append(path, up.ID)
		}
		return path
	}
	return []string{}
}

// DisplayName returns the track-specific name of a student tier, falling
// back to the generic name and then the id.
func DisplayName(role Role, tierID string, track CareerTrack) string {
	t, err := Resolve(role, tierID)
	if err != nil {
		return tierID
	}
	if name, ok := t.TrackNames[track]; ok && name != "" {
		return name
	}
	return t.Name
}

// FormatPrice renders a yearly price in cents.
func FormatPrice(cents int64) string {
	if cents == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.0f/year", float64(cents)/100)
}

// ValidTrack reports whether track is one of the known career tracks.
func ValidTrack(track string) bool {
	switch CareerTrack(track) {
	case TrackAviation, TrackSTEM, TrackEntrepreneurship:
		return true
	}
	return false
}

func table(role Role) []Tier {
	switch role {
	case RoleStudent:
		return studentTiers
	case RoleMentor:
		return mentorTiers
	case RoleEducator:
		return educatorTiers
	}
	return nil
}

func clone(tiers []Tier) []Tier {
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		out[i] = cloneTier(t)
	}
	return out
}

func cloneTier(t Tier) Tier {
	t.Features = append([]string(nil), t.Features...)
	if t.TrackNames != nil {
		names := make(map[CareerTrack]string, len(t.TrackNames))
		for k, v := range t.TrackNames {
			names[k] = v
		}
		t.TrackNames = names
	}
	return t
}
