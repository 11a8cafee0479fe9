package kvstore

import (
	"strconv"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/store"
)

// PollStore allows to access polls in the KV Store.
type PollStore struct {
	api plugin.API
}

const (
	pollPrefix = "poll_"
	counterKey = "poll_counter"
)

func pollKey(id int64) string {
	return pollPrefix + strconv.FormatInt(id, 10)
}

// NextID increments the poll counter and returns its previous value.
func (s *PollStore) NextID() (int64, error) {
	for i := 0; i < maxCASRetries; i++ {
		b, appErr := s.api.KVGet(counterKey)
		if appErr != nil {
			return 0, errors.Wrap(appErr, "failed to get poll counter")
		}
		current, err := decodeCounter(b)
		if err != nil {
			return 0, err
		}

		opt := model.PluginKVSetOptions{
			Atomic:   true,
			OldValue: b,
		}
		ok, appErr := s.api.KVSetWithOptions(counterKey, []byte(strconv.FormatInt(current+1, 10)), opt)
		if appErr != nil {
			return 0, errors.Wrap(appErr, "failed to increment poll counter")
		}
		if ok {
			return current, nil
		}
	}
	return 0, errors.Wrap(store.ErrConflict, "failed to increment poll counter")
}

// Count returns the number of allocated poll IDs.
func (s *PollStore) Count() (int64, error) {
	b, appErr := s.api.KVGet(counterKey)
	if appErr != nil {
		return 0, errors.Wrap(appErr, "failed to get poll counter")
	}
	return decodeCounter(b)
}

func decodeCounter(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "failed to decode poll counter")
	}
	return n, nil
}

// Get returns the poll for a given id. Returns store.ErrNotFound if the poll doesn't exist.
func (s *PollStore) Get(id int64) (*poll.Poll, error) {
	b, appErr := s.api.KVGet(pollKey(id))
	if appErr != nil {
		return nil, errors.Wrap(appErr, "failed to get poll")
	}
	if b == nil {
		return nil, store.ErrNotFound
	}
	p := poll.DecodePollFromByte(b)
	if p == nil {
		return nil, errors.New("failed to decode poll")
	}
	return p, nil
}

// Insert stores a new poll. It fails if a poll with the same ID already exists.
func (s *PollStore) Insert(p *poll.Poll) error {
	opt := model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: nil,
	}
	ok, appErr := s.api.KVSetWithOptions(pollKey(p.ID), p.EncodeToByte(), opt)
	if appErr != nil {
		return errors.Wrap(appErr, "failed to insert poll")
	}
	if !ok {
		return errors.Errorf("poll %d already exists", p.ID)
	}
	return nil
}

// Update replaces prev with p. It fails if the stored poll was modified since prev was read.
func (s *PollStore) Update(prev *poll.Poll, p *poll.Poll) error {
	opt := model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: prev.EncodeToByte(),
	}
	ok, appErr := s.api.KVSetWithOptions(pollKey(p.ID), p.EncodeToByte(), opt)
	if appErr != nil {
		return errors.Wrap(appErr, "failed to update poll")
	}
	if !ok {
		return errors.Wrapf(store.ErrConflict, "poll %d was modified concurrently", p.ID)
	}
	return nil
}

// Delete removes a poll from the store.
func (s *PollStore) Delete(id int64) error {
	if appErr := s.api.KVDelete(pollKey(id)); appErr != nil {
		return errors.Wrap(appErr, "failed to delete poll")
	}
	return nil
}
