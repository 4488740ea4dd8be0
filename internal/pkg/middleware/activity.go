package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// ActivityRecorder is implemented by counter.Counter.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, uid string) error
}

// TrackActivity records identified callers after the handler ran. Recorder
// failures are logged and never affect the response.
func TrackActivity(recorder ActivityRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		uid := usercontext.GetUserID(c)
		if uid == "" || usercontext.IsAdmin(c) {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if rerr := recorder.RecordActivity(ctx, uid); rerr != nil {
			log.Warnf("[Activity] recording %s failed: %v", uid, rerr)
		}
		return err
	}
}
