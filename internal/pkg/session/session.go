package session

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
)

// Keys stored in a login session
const (
	KeyAuthenticated = "authenticated"
	KeyUsername      = "username"
	KeyRole          = "role"
)

// NewSessionStore creates the cookie session store. With a cache client the
// sessions live in Redis database 1 (the cache uses database 0), otherwise in
// process memory.
func NewSessionStore(cacheClient *goredis.Client) *session.Store {
	cfg := session.Config{
		CookieHTTPOnly: true,
		// CookieSecure:   true, // Enable in production with HTTPS
		Expiration: time.Hour * 1,
		KeyLookup:  "cookie:session_id",
	}

	if cacheClient != nil {
		cfg.Storage = NewRedisStorage(cacheClient)
	}

	return session.New(cfg)
}

// NewRedisStorage builds a fiber storage on the same server as the cache client
func NewRedisStorage(cacheClient *goredis.Client) fiber.Storage {
	host := "localhost"
	port := 6379
	addr := cacheClient.Options().Addr
	if h, p, err := net.SplitHostPort(addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: cacheClient.Options().Password,
		Database: 1, // Separate database for sessions
		Reset:    false,
	})
}

// Login marks the session as authenticated for the given user
func Login(store *session.Store, c *fiber.Ctx, login, role string) error {
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	// new id on privilege change
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}

	sess.Set(KeyAuthenticated, true)
	sess.Set(KeyUsername, login)
	sess.Set(KeyRole, role)
	return sess.Save()
}

// Logout destroys the session
func Logout(store *session.Store, c *fiber.Ctx) error {
	sess, err := store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// Identity returns login and role of an authenticated session
func Identity(store *session.Store, c *fiber.Ctx) (login, role string, ok bool) {
	if store == nil {
		return "", "", false
	}
	sess, err := store.Get(c)
	if err != nil {
		return "", "", false
	}
	if auth, _ := sess.Get(KeyAuthenticated).(bool); !auth {
		return "", "", false
	}
	login, _ = sess.Get(KeyUsername).(string)
	role, _ = sess.Get(KeyRole).(string)
	return login, role, login != ""
}
