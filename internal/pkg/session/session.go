// Package session keeps member logins in a server-side fiber session. The
// browser only holds the session_id cookie.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
)

// CookieName is the cookie the session id travels in.
const CookieName = "session_id"

const keyUserUID = "user_uid"

type Config struct {
	// Storage holds session data; nil keeps sessions in process memory.
	Storage    fiber.Storage
	Expiration time.Duration
	Secure     bool
}

func LoadConfig() Config {
	return Config{
		Expiration: time.Duration(env.GetInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		Secure:     !env.IsDev(),
	}
}

// Manager reads and writes the login on the caller's session.
type Manager struct {
	store *session.Store
}

func New(cfg Config) *Manager {
	if cfg.Expiration <= 0 {
		cfg.Expiration = 24 * time.Hour
	}
	return &Manager{store: session.New(session.Config{
		Storage:        cfg.Storage,
		Expiration:     cfg.Expiration,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Secure,
		CookieSameSite: "Lax",
	})}
}

// Login binds uid to a freshly issued session id.
func (m *Manager) Login(c *fiber.Ctx, uid string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("session: regenerate: %w", err)
	}
	sess.Set(keyUserUID, uid)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Logout destroys the caller's session. Callers without one are a no-op.
func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if sess.Fresh() {
		return nil
	}
	return sess.Destroy()
}

// UserUID returns the uid of the logged-in caller, or "".
func (m *Manager) UserUID(c *fiber.Ctx) string {
	if strings.TrimSpace(c.Cookies(CookieName)) == "" {
		return ""
	}
	sess, err := m.store.Get(c)
	if err != nil {
		return ""
	}
	uid, _ := sess.Get(keyUserUID).(string)
	return uid
}
