package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Equal(t, "", GetUserID(c))
		assert.False(t, IsAdmin(c))

		Set(c, UserContext{UserID: "uid-1", IsAdmin: true})
		assert.Equal(t, "uid-1", GetUserID(c))
		assert.True(t, IsAdmin(c))
		assert.Equal(t, "uid-1", c.Locals(KeyUserID))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
