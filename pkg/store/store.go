package store

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Item is a stored value with its identity and timestamps.
type Item[T any] struct {
	ID        string    `json:"id"`
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is a collection of T keyed by generated IDs. List returns items in
// creation order. Get, Update and Delete return ErrNotFound for unknown IDs.
type Store[T any] interface {
	Get(ctx context.Context, id string) (Item[T], error)
	List(ctx context.Context) ([]Item[T], error)
	Create(ctx context.Context, data T) (Item[T], error)
	Update(ctx context.Context, id string, data T) (Item[T], error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s when it supports it and succeeds otherwise. Suitable as a
// readiness check.
func Ping(s any) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if p, ok := s.(Pinger); ok {
			return p.Ping(ctx)
		}
		return nil
	}
}

var collectionName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

func validName(name string) error {
	if !collectionName.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
