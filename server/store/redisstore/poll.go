package redisstore

import (
	"bytes"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/store"
)

// PollStore allows to access polls in Redis.
type PollStore struct {
	client *redis.Client
	keys   keys
}

// NextID increments the poll counter and returns its previous value.
func (s *PollStore) NextID() (int64, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	n, err := s.client.Incr(ctx, s.keys.counter()).Result()
	if err != nil {
		return 0, errors.Wrap(err, "failed to increment poll counter")
	}
	return n - 1, nil
}

// Count returns the number of allocated poll IDs.
func (s *PollStore) Count() (int64, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	n, err := s.client.Get(ctx, s.keys.counter()).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to get poll counter")
	}
	return n, nil
}

// Get returns the poll for a given id. Returns store.ErrNotFound if the poll doesn't exist.
func (s *PollStore) Get(id int64) (*poll.Poll, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	b, err := s.client.Get(ctx, s.keys.poll(id)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get poll")
	}
	p := poll.DecodePollFromByte(b)
	if p == nil {
		return nil, errors.New("failed to decode poll")
	}
	return p, nil
}

// Insert stores a new poll. It fails if a poll with the same ID already exists.
func (s *PollStore) Insert(p *poll.Poll) error {
	ctx, cancel := withTimeout()
	defer cancel()

	ok, err := s.client.SetNX(ctx, s.keys.poll(p.ID), p.EncodeToByte(), 0).Result()
	if err != nil {
		return errors.Wrap(err, "failed to insert poll")
	}
	if !ok {
		return errors.Errorf("poll %d already exists", p.ID)
	}
	return nil
}

// Update replaces prev with p inside a WATCH transaction.
func (s *PollStore) Update(prev *poll.Poll, p *poll.Poll) error {
	ctx, cancel := withTimeout()
	defer cancel()

	key := s.keys.poll(p.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}
		if !bytes.Equal(current, prev.EncodeToByte()) {
			return store.ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, p.EncodeToByte(), 0)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case err == store.ErrConflict, err == redis.TxFailedErr:
		return errors.Wrapf(store.ErrConflict, "poll %d was modified concurrently", p.ID)
	default:
		return errors.Wrap(err, "failed to update poll")
	}
}

// Delete removes a poll from the store.
func (s *PollStore) Delete(id int64) error {
	ctx, cancel := withTimeout()
	defer cancel()

	if err := s.client.Del(ctx, s.keys.poll(id)).Err(); err != nil {
		return errors.Wrap(err, "failed to delete poll")
	}
	return nil
}
