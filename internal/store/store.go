package store

import (
	"context"
	"errors"
	"time"

	"github.com/minerops/launchspec/internal/spec"
)

// ErrNotFound is returned when the named spec is not in the registry.
var ErrNotFound = errors.New("spec not found")

// Record is the head state of one named spec in the registry.
type Record struct {
	Name      string    `json:"name"`
	Spec      spec.Spec `json:"spec"`
	Revision  string    `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Revision is one immutable version of a spec. Every Put appends one.
type Revision struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Spec      spec.Spec `json:"spec"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists launch specs by unique name with append-only revisions.
type Store interface {
	EnsureSchema(ctx context.Context) error
	Put(ctx context.Context, s spec.Spec) (Revision, error)
	Get(ctx context.Context, name string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, name string) error
	Revisions(ctx context.Context, name string) ([]Revision, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
