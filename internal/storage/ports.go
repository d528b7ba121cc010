package storage

import (
	"context"
	"errors"

	"dues/internal/core"
)

// MembersKey is the single key under which the whole collection is stored.
const MembersKey = "members"

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Snapshotter persists the member collection as one full snapshot.
// Save replaces whatever was stored before; the last write wins.
type Snapshotter interface {
	Load(ctx context.Context) ([]core.Member, error)
	Save(ctx context.Context, members []core.Member) error
}
