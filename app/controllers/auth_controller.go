package controllers

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/session"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// MemberStore is the slice of the user repository the auth routes need.
type MemberStore interface {
	MemberLookup
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthController struct {
	members  MemberStore
	sessions *session.Manager
}

func NewAuthController(members MemberStore, sessions *session.Manager) *AuthController {
	return &AuthController{members: members, sessions: sessions}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a member account and logs it in.
// POST /api/auth/register
func (ac *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Role == models.ROLE_ADMIN {
		return errorJSON(c, fiber.StatusForbidden, "Admin accounts cannot be self-registered")
	}
	if utf8.RuneCountInString(req.Password) < models.MinPasswordLength {
		return errorJSON(c, fiber.StatusBadRequest, "Password must be at least 8 characters")
	}
	if len(req.Password) > maxPasswordBytes {
		return errorJSON(c, fiber.StatusBadRequest, "Password must be at most 72 bytes")
	}

	user, err := models.NewMember(req.Email, req.DisplayName, req.Role, req.Password)
	if err != nil {
		return upstreamError(c, "Auth", err, "Failed to register")
	}
	if err := user.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, validationMessage(err))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := ac.members.GetByEmail(ctx, user.Email); err == nil {
		return errorJSON(c, fiber.StatusConflict, "An account with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return upstreamError(c, "Auth", err, "Failed to register")
	}
	if err := ac.members.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorJSON(c, fiber.StatusConflict, "An account with this email already exists")
		}
		return upstreamError(c, "Auth", err, "Failed to register")
	}

	if err := ac.sessions.Login(c, user.UID); err != nil {
		return upstreamError(c, "Auth", err, "Failed to start session")
	}
	log.Infof("[Auth] registered %s as %s", user.UID, user.Role)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// HandleLogin checks email and password and starts a session.
// POST /api/auth/login
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields: email, password")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.members.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid email or password")
	case err != nil:
		return upstreamError(c, "Auth", err, "Failed to login")
	}
	if !user.CheckPassword(req.Password) {
		log.Warnf("[Auth] failed login for %s from %s", user.UID, c.IP())
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive() {
		return errorJSON(c, fiber.StatusForbidden, "Account is not active")
	}

	if err := ac.sessions.Login(c, user.UID); err != nil {
		return upstreamError(c, "Auth", err, "Failed to start session")
	}
	return c.JSON(fiber.Map{"user": user})
}

// HandleLogout ends the caller's session.
// POST /api/auth/logout
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := ac.sessions.Logout(c); err != nil {
		return upstreamError(c, "Auth", err, "Failed to logout")
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleMe returns the caller's profile.
// GET /api/auth/me
func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := ac.members.GetByUID(ctx, usercontext.GetUserID(c))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorJSON(c, fiber.StatusNotFound, "User not found")
	case err != nil:
		return upstreamError(c, "Auth", err, "Failed to load profile")
	}
	return c.JSON(fiber.Map{"user": user})
}

// validationMessage names the first failing field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "Invalid " + verrs[0].Field()
	}
	return "Invalid request"
}
