package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/elysium/pkg/store"
)

type post struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, s store.Store[post]) {
	t.Helper()
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := s.Create(ctx, post{Title: "first", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	second, err := s.Create(ctx, post{Title: "second"})
	require.NoError(t, err)
	third, err := s.Create(ctx, post{Title: "third"})
	require.NoError(t, err)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, ids(list))

	updated, err := s.Update(ctx, second.ID, post{Title: "second, edited"})
	require.NoError(t, err)
	assert.Equal(t, "second, edited", updated.Data.Title)
	assert.Equal(t, second.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(second.UpdatedAt))

	got, err = s.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "second, edited", got.Data.Title)

	require.NoError(t, s.Delete(ctx, first.ID))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, third.ID}, ids(list))

	missing := uuid.NewString()
	_, err = s.Get(ctx, missing)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Update(ctx, missing, post{})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, missing), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, first.ID), store.ErrNotFound)
}

func ids(items []store.Item[post]) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestMemory(t *testing.T) {
	t.Parallel()
	exercise(t, store.NewMemory[post]())
}

func TestMemory_Concurrent(t *testing.T) {
	t.Parallel()

	s := store.NewMemory[post]()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := s.Create(ctx, post{Title: "x"})
			assert.NoError(t, err)
			_, err = s.Get(ctx, item.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("file database", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "app.db")
		db, err := store.OpenSQLite(ctx, "sqlite://"+path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		s, err := store.NewSQLite[post](ctx, db, "posts")
		require.NoError(t, err)
		require.NoError(t, s.Ping(ctx))
		exercise(t, s)

		// Reopening keeps the data.
		again, err := store.NewSQLite[post](ctx, db, "posts")
		require.NoError(t, err)
		list, err := again.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("memory database", func(t *testing.T) {
		t.Parallel()
		db, err := store.OpenSQLite(ctx, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		s, err := store.NewSQLite[post](ctx, db, "posts")
		require.NoError(t, err)
		exercise(t, s)
	})

	t.Run("invalid collection name", func(t *testing.T) {
		t.Parallel()
		db, err := store.OpenSQLite(ctx, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		for _, name := range []string{"", "posts; DROP TABLE x", `a"b`, "1posts", strings.Repeat("a", 64)} {
			_, err := store.NewSQLite[post](ctx, db, name)
			assert.ErrorIs(t, err, store.ErrInvalidName, name)
		}
	})

	t.Run("empty dsn", func(t *testing.T) {
		t.Parallel()
		_, err := store.OpenSQLite(ctx, "")
		assert.ErrorIs(t, err, store.ErrInvalidURL)
	})
}

func TestRedis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	client, err := store.ConnectRedis(ctx, store.RedisConfig{URL: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "els_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	t.Cleanup(func() {
		_ = client.Del(ctx, prefix+":posts", prefix+":posts:order", prefix+":posts:seq").Err()
	})

	s, err := store.NewRedis[post](client, prefix, "posts")
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	exercise(t, s)
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := store.ConnectRedis(context.Background(), store.RedisConfig{URL: "not a url"})
	assert.ErrorIs(t, err, store.ErrInvalidURL)

	_, err = store.ConnectRedis(context.Background(), store.RedisConfig{})
	assert.ErrorIs(t, err, store.ErrInvalidURL)
}

// countingStore counts Get calls that reach the backend.
type countingStore struct {
	store.Store[post]
	mu   sync.Mutex
	gets int
}

func (c *countingStore) Get(ctx context.Context, id string) (store.Item[post], error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Store.Get(ctx, id)
}

func TestCached(t *testing.T) {
	t.Parallel()

	t.Run("shared behaviour", func(t *testing.T) {
		t.Parallel()
		s, err := store.NewCached[post](store.NewMemory[post](), 2)
		require.NoError(t, err)
		exercise(t, s)
	})

	t.Run("reads hit the cache", func(t *testing.T) {
		t.Parallel()
		backend := &countingStore{Store: store.NewMemory[post]()}
		s, err := store.NewCached[post](backend, 2)
		require.NoError(t, err)
		ctx := context.Background()

		a, err := s.Create(ctx, post{Title: "a"})
		require.NoError(t, err)
		b, err := s.Create(ctx, post{Title: "b"})
		require.NoError(t, err)

		_, err = s.Get(ctx, a.ID)
		require.NoError(t, err)
		_, err = s.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Zero(t, backend.gets, "created items are cached")

		c, err := s.Create(ctx, post{Title: "c"})
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())

		// a was least recently used and got evicted.
		_, err = s.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, backend.gets)

		require.NoError(t, s.Delete(ctx, c.ID))
		_, err = s.Get(ctx, c.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("capacity must be positive", func(t *testing.T) {
		t.Parallel()
		_, err := store.NewCached[post](store.NewMemory[post](), 0)
		assert.ErrorIs(t, err, store.ErrCapacityNotValid)
	})
}

func TestPing(t *testing.T) {
	t.Parallel()

	assert.NoError(t, store.Ping(store.NewMemory[post]())(context.Background()))

	failing := pingerFunc(func(context.Context) error { return errors.New("down") })
	assert.Error(t, store.Ping(failing)(context.Background()))
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
