package redisstore

import (
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// CreatorStore keeps one redis list of poll IDs per creator.
type CreatorStore struct {
	client *redis.Client
	keys   keys
}

// Add appends pollID to the list of polls created by creator.
func (s *CreatorStore) Add(creator string, pollID int64) error {
	ctx, cancel := withTimeout()
	defer cancel()

	if err := s.client.RPush(ctx, s.keys.creator(creator), pollID).Err(); err != nil {
		return errors.Wrap(err, "failed to save creator index")
	}
	return nil
}

// List returns the IDs of all polls created by creator in creation order.
func (s *CreatorStore) List(creator string) ([]int64, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	values, err := s.client.LRange(ctx, s.keys.creator(creator), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get creator index")
	}

	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode poll id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
