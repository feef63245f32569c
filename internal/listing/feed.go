package listing

import (
	"context"

	"github.com/barkshad/Real-estate/internal/models"
)

// Snapshot is one feed event: the complete current set of listings in a
// scope, newest first. Err is set when the feed could not read the
// collection; Properties is then empty.
type Snapshot struct {
	Scope      Scope
	Properties []models.Property
	Err        error
}

// Feed is the push-based source of listing snapshots
type Feed interface {
	Subscribe(ctx context.Context, scope Scope) (Subscription, error)
}

// Subscription is a cancelable stream of snapshots. Close is idempotent;
// once it returns no further snapshot is delivered.
type Subscription interface {
	Updates() <-chan Snapshot
	Done() <-chan struct{}
	Close()
}
