package common

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fammee/finance/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"
)

// HeaderIdempotencyKey names the request header clients set to make a POST safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplayed marks a response served from the store.
const HeaderIdempotentReplayed = "Idempotent-Replayed"

type storedResponse struct {
	status      int
	body        []byte
	contentType string
	expires     time.Time
}

// IdempotencyStore remembers successful responses by key for a while.
type IdempotencyStore struct {
	responses sync.Map
	inflight  singleflight.Group
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates a store whose entries live for ttl.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, now: time.Now}
}

func (s *IdempotencyStore) load(key string) (*storedResponse, bool) {
	v, ok := s.responses.Load(key)
	if !ok {
		return nil, false
	}
	resp := v.(*storedResponse)
	if s.now().After(resp.expires) {
		s.responses.Delete(key)
		return nil, false
	}
	return resp, true
}

// Idempotency runs a request carrying an Idempotency-Key at most once per
// caller and key. Concurrent duplicates wait for the first and share its
// response; later duplicates get the stored response. Failed requests are not
// stored, so a client can retry them.
func Idempotency(store *IdempotencyStore, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderIdempotencyKey)
		if raw == "" {
			return c.Next()
		}
		key := c.Method() + " " + c.Path() + " " + raw
		if actor, ok := middleware.ActorFrom(c); ok {
			key = actor.UserID.String() + " " + key
		}
		log := logger.With("idempotency_key", raw, "path", c.Path())

		if resp, ok := store.load(key); ok {
			log.Info("Replaying stored response")
			return replay(c, resp)
		}

		executed := false
		v, err, _ := store.inflight.Do(key, func() (any, error) {
			if resp, ok := store.load(key); ok {
				return resp, nil
			}
			executed = true
			if err := c.Next(); err != nil {
				return nil, err
			}
			res := c.Response()
			resp := &storedResponse{
				status:      res.StatusCode(),
				body:        append([]byte(nil), res.Body()...),
				contentType: string(res.Header.ContentType()),
				expires:     store.now().Add(store.ttl),
			}
			if resp.status < fiber.StatusMultipleChoices {
				store.responses.Store(key, resp)
			}
			return resp, nil
		})
		if err != nil {
			return err
		}
		if executed {
			return nil
		}
		log.Info("Sharing response of a concurrent duplicate")
		return replay(c, v.(*storedResponse))
	}
}

func replay(c *fiber.Ctx, resp *storedResponse) error {
	c.Set(HeaderIdempotentReplayed, "true")
	c.Set(fiber.HeaderContentType, resp.contentType)
	return c.Status(resp.status).Send(resp.body)
}
