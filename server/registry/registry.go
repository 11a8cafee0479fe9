// Package registry keeps track of all movie polls and guards every change with
// ownership and timing checks.
package registry

import (
	"sync"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/store"
	"github.com/matterpoll/movievote/server/utils"
)

// Options control who may see poll results and when.
type Options struct {
	// AllowEarlyWinner exposes the current leader of polls that have not ended yet.
	AllowEarlyWinner bool
	// SealTallies hides per movie vote counts until a poll has ended.
	SealTallies bool
}

// Registry is the single entry point for creating and running polls. All operations are
// serialized. User facing rejections are returned as *utils.ErrorMessage and never change
// any state, store failures are returned as error.
type Registry struct {
	mu    sync.Mutex
	store store.Store
	owner string
	now   func() int64
	opts  Options
}

// ErrNoOwner is returned by New if neither a stored nor a configured poll owner exists.
var ErrNoOwner = errors.New("no poll owner configured")

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the clock used for deadlines. now returns milliseconds since epoch.
func WithClock(now func() int64) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithOptions sets the initial result visibility options.
func WithOptions(o Options) Option {
	return func(r *Registry) {
		r.opts = o
	}
}

// New returns a registry using s. The first owner ever stored wins, later calls with a
// different owner get the stored one.
func New(s store.Store, owner string, opts ...Option) (*Registry, error) {
	effective, err := s.System().EnsureOwner(owner)
	if err != nil {
		return nil, errors.Wrap(err, "failed to ensure poll owner")
	}
	if effective == "" {
		return nil, ErrNoOwner
	}

	r := &Registry{
		store: s,
		owner: effective,
		now:   model.GetMillis,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Owner returns the user ID allowed to start and end polls.
func (r *Registry) Owner() string {
	return r.owner
}

// IsOwner reports whether userID is the poll owner.
func (r *Registry) IsOwner(userID string) bool {
	return userID != "" && userID == r.owner
}

// Configure replaces the result visibility options.
func (r *Registry) Configure(o Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = o
}

// Options returns the current result visibility options.
func (r *Registry) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

func (r *Registry) get(pollID int64) (*poll.Poll, *utils.ErrorMessage, error) {
	p, err := r.store.Poll().Get(pollID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poll.NotFound(pollID), nil
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to get poll %d", pollID)
	}
	return p, nil, nil
}

// update runs apply on a copy of the stored poll and saves the result if apply accepts it.
func (r *Registry) update(pollID int64, apply func(p *poll.Poll) *utils.ErrorMessage) (*utils.ErrorMessage, error) {
	p, errMsg, err := r.get(pollID)
	if errMsg != nil || err != nil {
		return errMsg, err
	}

	next := p.Copy()
	if errMsg = apply(next); errMsg != nil {
		return errMsg, nil
	}
	if err = r.store.Poll().Update(p, next); err != nil {
		return nil, errors.Wrapf(err, "failed to save poll %d", pollID)
	}
	return nil, nil
}

// CreatePoll stores a new poll with the given movies and returns its ID.
func (r *Registry) CreatePoll(creator, channelID string, candidates []string) (int64, *utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, errMsg := poll.NewPoll(0, r.now(), creator, candidates)
	if errMsg != nil {
		return 0, errMsg, nil
	}

	id, err := r.store.Poll().NextID()
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to allocate poll id")
	}
	p.ID = id
	p.ChannelID = channelID

	if err = r.store.Poll().Insert(p); err != nil {
		return 0, nil, errors.Wrap(err, "failed to save poll")
	}
	if err = r.store.Creator().Add(creator, id); err != nil {
		if dErr := r.store.Poll().Delete(id); dErr != nil {
			return 0, nil, errors.Wrapf(err, "failed to index poll, rollback failed: %v", dErr)
		}
		return 0, nil, errors.Wrap(err, "failed to index poll")
	}
	return id, nil, nil
}

// StartPoll opens a poll for voting for durationMinutes. Only the owner may start polls.
func (r *Registry) StartPoll(caller string, pollID int64, durationMinutes int) (*utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(pollID, func(p *poll.Poll) *utils.ErrorMessage {
		if !r.IsOwner(caller) {
			return poll.ErrUnauthorized
		}
		return p.Start(durationMinutes, r.now())
	})
}

// Vote records a vote of caller for candidate. Votes are accepted until the poll is ended,
// even after its deadline passed.
func (r *Registry) Vote(caller string, pollID int64, candidate string) (*utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(pollID, func(p *poll.Poll) *utils.ErrorMessage {
		return p.Vote(caller, candidate)
	})
}

// EndPoll closes a poll whose deadline has passed. Only the owner may end polls.
func (r *Registry) EndPoll(caller string, pollID int64) (*utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(pollID, func(p *poll.Poll) *utils.ErrorMessage {
		if !r.IsOwner(caller) {
			return poll.ErrUnauthorized
		}
		return p.End(r.now())
	})
}

// AttachPost records the post a poll is rendered in. Only the creator and the owner may do this.
func (r *Registry) AttachPost(caller string, pollID int64, postID string) (*utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.update(pollID, func(p *poll.Poll) *utils.ErrorMessage {
		if caller != p.Creator && !r.IsOwner(caller) {
			return poll.ErrUnauthorized
		}
		p.PostID = postID
		return nil
	})
}

// Winner returns the movie with the most votes. On a tie the movie listed first wins.
func (r *Registry) Winner(pollID int64) (string, *utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, errMsg, err := r.get(pollID)
	if errMsg != nil || err != nil {
		return "", errMsg, err
	}
	if p.State != poll.StateEnded && !r.opts.AllowEarlyWinner {
		return "", poll.ErrPollNotEnded.WithData(map[string]interface{}{"PollID": pollID}), nil
	}
	return p.Winner(), nil, nil
}

// VotesFor returns the number of votes candidate received in a poll.
func (r *Registry) VotesFor(pollID int64, candidate string) (int, *utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, errMsg, err := r.get(pollID)
	if errMsg != nil || err != nil {
		return 0, errMsg, err
	}
	votes, errMsg := p.VotesFor(candidate)
	if errMsg != nil {
		return 0, errMsg, nil
	}
	if r.opts.SealTallies && p.State != poll.StateEnded {
		return 0, poll.ErrPollNotEnded.WithData(map[string]interface{}{"PollID": pollID}), nil
	}
	return votes, nil, nil
}

// PollsByCreator returns the IDs of all polls creator created, oldest first.
func (r *Registry) PollsByCreator(creator string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.store.Creator().List(creator)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list polls")
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// Get returns a copy of a poll.
func (r *Registry) Get(pollID int64) (*poll.Poll, *utils.ErrorMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.get(pollID)
}

// Ongoing returns all polls that are open for voting.
func (r *Registry) Ongoing() ([]*poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.store.Poll().Count()
	if err != nil {
		return nil, errors.Wrap(err, "failed to count polls")
	}

	polls := []*poll.Poll{}
	for id := int64(0); id < count; id++ {
		p, err := r.store.Poll().Get(id)
		if errors.Is(err, store.ErrNotFound) {
			// IDs of rolled back polls are never reused.
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get poll %d", id)
		}
		if p.State == poll.StateOngoing {
			polls = append(polls, p)
		}
	}
	return polls, nil
}
