package store

import (
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/poll"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a compare-and-set kept failing because of concurrent writers.
var ErrConflict = errors.New("too many concurrent modifications")

// Store is the persistence layer of the plugin.
type Store interface {
	Poll() PollStore
	Creator() CreatorStore
	System() SystemStore
	Close() error
}

// PollStore stores polls keyed by their ID.
type PollStore interface {
	// NextID allocates a new poll ID. IDs are sequential and start at 0.
	NextID() (int64, error)
	// Count returns the number of allocated IDs.
	Count() (int64, error)
	Get(id int64) (*poll.Poll, error)
	// Insert fails if a poll with the same ID exists.
	Insert(poll *poll.Poll) error
	// Update replaces prev with poll. It fails if the stored poll doesn't equal prev.
	Update(prev *poll.Poll, poll *poll.Poll) error
	Delete(id int64) error
}

// CreatorStore stores the IDs of the polls a user created.
type CreatorStore interface {
	Add(creator string, pollID int64) error
	// List returns the poll IDs in creation order. The result is never nil.
	List(creator string) ([]int64, error)
}

// SystemStore stores plugin wide information.
type SystemStore interface {
	GetVersion() (string, error)
	SaveVersion(version string) error
	// GetOwner returns an empty string if no owner was stored yet.
	GetOwner() (string, error)
	// EnsureOwner stores candidate as the owner if none is set and returns the effective owner.
	EnsureOwner(candidate string) (string, error)
}
