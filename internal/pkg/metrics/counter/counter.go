// Package counter buffers member activity in redis and flushes it to the
// users table in batches. Sessions feed the engagement figures used by the
// at-risk and network insight features.
package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	sessionsKey   = "activity:counters:sessions"
	lastActiveKey = "activity:counters:last_active"
	sessionPrefix = "activity:session:"

	// SessionWindow is the idle time after which a request opens a new session.
	SessionWindow = 30 * time.Minute
)

// Counter records activity per user UID.
type Counter struct {
	client *redis.Client
	db     *gorm.DB
	now    func() time.Time
}

func New(client *redis.Client, db *gorm.DB) *Counter {
	return &Counter{client: client, db: db, now: time.Now}
}

// RecordActivity marks uid active now and counts a new session when the
// previous one has expired.
func (c *Counter) RecordActivity(ctx context.Context, uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil
	}
	now := c.now()

	opened, err := c.client.SetNX(ctx, sessionPrefix+uid, now.Unix(), SessionWindow).Result()
	if err != nil {
		return err
	}
	if !opened {
		// Sliding window: keep the session alive while requests arrive.
		c.client.Expire(ctx, sessionPrefix+uid, SessionWindow)
	}

	pipe := c.client.TxPipeline()
	if opened {
		pipe.HIncrBy(ctx, sessionsKey, uid, 1)
	}
	pipe.HSet(ctx, lastActiveKey, uid, now.Unix())
	_, err = pipe.Exec(ctx)
	return err
}

// Flush drains both hashes and applies them to the users table. It returns
// the number of users updated.
func (c *Counter) Flush(ctx context.Context) (int, error) {
	sessions, err := c.drain(ctx, sessionsKey)
	if err != nil {
		return 0, err
	}
	lastActive, err := c.drain(ctx, lastActiveKey)
	if err != nil {
		return 0, err
	}

	batch := buildBatch(sessions, lastActive)
	if len(batch) == 0 {
		return 0, nil
	}
	query, args := updateStatement(batch)
	if err := c.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
		return 0, fmt.Errorf("flush activity: %w", err)
	}
	log.Infof("[Activity] flushed activity for %d users", len(batch))
	return len(batch), nil
}

// drain atomically moves a hash to a temporary key and reads it, so
// increments arriving during the flush land in a fresh hash.
func (c *Counter) drain(ctx context.Context, key string) (map[string]string, error) {
	tmpKey := fmt.Sprintf("%s:tmp:%d", key, c.now().UnixNano())
	if err := c.client.Rename(ctx, key, tmpKey).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil, nil
		}
		return nil, err
	}
	defer c.client.Del(ctx, tmpKey)

	return c.client.HGetAll(ctx, tmpKey).Result()
}

type userActivity struct {
	uid        string
	sessions   int64
	lastActive time.Time
}

func buildBatch(sessions, lastActive map[string]string) []userActivity {
	byUID := map[string]*userActivity{}
	get := func(uid string) *userActivity {
		a, ok := byUID[uid]
		if !ok {
			a = &userActivity{uid: uid}
			byUID[uid] = a
		}
		return a
	}
	for uid, v := range sessions {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			get(uid).sessions = n
		}
	}
	for uid, v := range lastActive {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil && ts > 0 {
			get(uid).lastActive = time.Unix(ts, 0).UTC()
		}
	}

	out := make([]userActivity, 0, len(byUID))
	for _, a := range byUID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].uid < out[j].uid })
	return out
}

// updateStatement builds one UPDATE with CASE branches per user. Users
// without a recorded timestamp keep their last_active_at.
func updateStatement(batch []userActivity) (string, []interface{}) {
	var b strings.Builder
	args := make([]interface{}, 0, len(batch)*5)

	b.WriteString("UPDATE users SET session_count = session_count + CASE uid")
	for _, a := range batch {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, a.uid, a.sessions)
	}
	b.WriteString(" ELSE 0 END")

	stamped := 0
	for _, a := range batch {
		if a.lastActive.IsZero() {
			continue
		}
		if stamped == 0 {
			b.WriteString(", last_active_at = CASE uid")
		}
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, a.uid, a.lastActive)
		stamped++
	}
	if stamped > 0 {
		b.WriteString(" ELSE last_active_at END")
	}
	b.WriteString(" WHERE uid IN (")
	for i, a := range batch {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, a.uid)
	}
	b.WriteString(")")
	return b.String(), args
}
