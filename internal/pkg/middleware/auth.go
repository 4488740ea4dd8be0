package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// SessionReader resolves the logged-in member of a request.
type SessionReader interface {
	UserUID(c *fiber.Ctx) string
}

type IdentityConfig struct {
	// Sessions is consulted first; nil skips cookie logins.
	Sessions SessionReader
	// ProxySecret verifies the upstream proxy's X-User-ID assertion. An
	// empty secret ignores the header entirely.
	ProxySecret string
}

// ProxySecret returns the shared secret proxy identity headers are signed with.
func ProxySecret() string {
	return strings.TrimSpace(env.GetEnv("AUTH_PROXY_SECRET", ""))
}

// SignUserID returns the X-User-Signature value for uid.
func SignUserID(secret, uid string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(uid))
	return hex.EncodeToString(mac.Sum(nil))
}

// Identity records the caller's user id from the session cookie or from a
// signed proxy header. Anything else leaves the request anonymous.
func Identity(cfg IdentityConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := ""
		if cfg.Sessions != nil {
			uid = cfg.Sessions.UserUID(c)
		}
		if uid == "" {
			uid = proxyIdentity(c, cfg.ProxySecret)
		}
		if uid != "" {
			uc := usercontext.GetUserContext(c)
			uc.UserID = uid
			usercontext.Set(c, uc)
		}
		return c.Next()
	}
}

func proxyIdentity(c *fiber.Ctx, secret string) string {
	id := strings.TrimSpace(c.Get(usercontext.HeaderUserID))
	if id == "" || secret == "" {
		return ""
	}
	sig, err := hex.DecodeString(strings.TrimSpace(c.Get(usercontext.HeaderUserSignature)))
	if err != nil || len(sig) == 0 {
		log.Warnf("[Auth] unsigned identity header from %s", c.IP())
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		log.Warnf("[Auth] bad identity signature from %s", c.IP())
		return ""
	}
	return id
}

// RequireUser rejects anonymous callers with JSON 401.
func RequireUser(c *fiber.Ctx) error {
	if usercontext.GetUserID(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing user identity"})
	}
	return c.Next()
}
