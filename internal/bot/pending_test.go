package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neko-jpg/schoolfestival-bot/mocks"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xredis"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func Test_memoryPendingStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPendingStore()

	pending := &PendingBuild{InvokerID: "1", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Put(ctx, "a", pending))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Same(t, pending, got)

	got, err = store.Take(ctx, "a")
	require.NoError(t, err)
	require.Same(t, pending, got)

	_, err = store.Take(ctx, "a")
	require.ErrorIs(t, err, ErrPendingNotFound)
	_, err = store.Get(ctx, "a")
	require.ErrorIs(t, err, ErrPendingNotFound)
}

func Test_memoryPendingStore_Retention(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPendingStore()

	// Past the deadline but still retained.
	require.NoError(t, store.Put(ctx, "late", &PendingBuild{ExpiresAt: time.Now().Add(-time.Second)}))
	_, err := store.Get(ctx, "late")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "gone", &PendingBuild{ExpiresAt: time.Now().Add(-time.Hour)}))
	_, err = store.Take(ctx, "gone")
	require.ErrorIs(t, err, ErrPendingNotFound)

	// Putting a build drops the ones past their retention.
	require.NoError(t, store.Put(ctx, "old", &PendingBuild{ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, store.Put(ctx, "new", &PendingBuild{ExpiresAt: time.Now().Add(time.Minute)}))
	_, ok := store.pendings.Load("old")
	require.False(t, ok)
}

func Test_redisPendingStore(t *testing.T) {
	ctx := context.Background()
	redisClient := &mocks.RedisClient{}
	store := NewRedisPendingStore(redisClient)

	pending := &PendingBuild{InvokerID: "1", ExpiresAt: time.Now().Add(time.Minute)}
	redisClient.On("SetObj", ctx, "pending_build:a", pending, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > time.Minute && ttl <= time.Minute+pendingRetention
	})).Return(nil)
	require.NoError(t, store.Put(ctx, "a", pending))

	redisClient.On("GetObj", ctx, "pending_build:a", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(2).(*PendingBuild).InvokerID = "1"
	})
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", got.InvokerID)

	redisClient.On("GetDelObj", ctx, "pending_build:a", mock.Anything).Return(xredis.ErrNil)
	_, err = store.Take(ctx, "a")
	require.ErrorIs(t, err, ErrPendingNotFound)

	redisClient.On("GetDelObj", ctx, "pending_build:b", mock.Anything).Return(errors.New("connection refused"))
	_, err = store.Take(ctx, "b")
	require.EqualError(t, err, "connection refused")

	redisClient.AssertExpectations(t)
}
