package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neko-jpg/schoolfestival-bot/internal/model"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xredis"
	"github.com/puzpuzpuz/xsync"
)

var ErrPendingNotFound = errors.New("pending build not found")

// pendingRetention keeps a pending build past its deadline so the expiry
// notice can still take it.
const pendingRetention = 30 * time.Second

// PendingBuild is a previewed build waiting for the invoker to confirm it.
type PendingBuild struct {
	InvokerID string           `json:"invoker_id"`
	AppID     string           `json:"app_id"`
	Token     string           `json:"token"`
	Plan      *model.BuildPlan `json:"plan"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// PendingStore keeps pending builds until they are confirmed, cancelled or
// expired. Take removes the build, a pending build is taken at most once.
// Stores do not check ExpiresAt, they only drop builds some time after it.
type PendingStore interface {
	Put(ctx context.Context, token string, pending *PendingBuild) error
	Get(ctx context.Context, token string) (*PendingBuild, error)
	Take(ctx context.Context, token string) (*PendingBuild, error)
}

type redisPendingStore struct {
	redisClient xredis.Client
}

func NewRedisPendingStore(redisClient xredis.Client) *redisPendingStore {
	return &redisPendingStore{redisClient: redisClient}
}

func pendingKey(token string) string {
	return fmt.Sprintf("pending_build:%s", token)
}

func (s *redisPendingStore) Put(ctx context.Context, token string, pending *PendingBuild) error {
	return s.redisClient.SetObj(ctx, pendingKey(token), pending, time.Until(pending.ExpiresAt)+pendingRetention)
}

func (s *redisPendingStore) Get(ctx context.Context, token string) (*PendingBuild, error) {
	pending := PendingBuild{}
	if err := s.redisClient.GetObj(ctx, pendingKey(token), &pending); err != nil {
		if errors.Is(err, xredis.ErrNil) {
			return nil, ErrPendingNotFound
		}

		return nil, err
	}

	return &pending, nil
}

func (s *redisPendingStore) Take(ctx context.Context, token string) (*PendingBuild, error) {
	pending := PendingBuild{}
	if err := s.redisClient.GetDelObj(ctx, pendingKey(token), &pending); err != nil {
		if errors.Is(err, xredis.ErrNil) {
			return nil, ErrPendingNotFound
		}

		return nil, err
	}

	return &pending, nil
}

type memoryPendingStore struct {
	pendings *xsync.MapOf[string, *PendingBuild]
}

func NewMemoryPendingStore() *memoryPendingStore {
	return &memoryPendingStore{pendings: xsync.NewMapOf[*PendingBuild]()}
}

func retained(pending *PendingBuild, now time.Time) bool {
	return pending.ExpiresAt.Add(pendingRetention).After(now)
}

func (s *memoryPendingStore) Put(ctx context.Context, token string, pending *PendingBuild) error {
	now := time.Now()
	s.pendings.Range(func(key string, value *PendingBuild) bool {
		if !retained(value, now) {
			s.pendings.Delete(key)
		}
		return true
	})

	s.pendings.Store(token, pending)
	return nil
}

func (s *memoryPendingStore) Get(ctx context.Context, token string) (*PendingBuild, error) {
	pending, ok := s.pendings.Load(token)
	if !ok || !retained(pending, time.Now()) {
		return nil, ErrPendingNotFound
	}

	return pending, nil
}

func (s *memoryPendingStore) Take(ctx context.Context, token string) (*PendingBuild, error) {
	pending, ok := s.pendings.LoadAndDelete(token)
	if !ok || !retained(pending, time.Now()) {
		return nil, ErrPendingNotFound
	}

	return pending, nil
}
