package redisstore

import (
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// SystemStore allows to access system informations in Redis.
type SystemStore struct {
	client *redis.Client
	keys   keys
}

// GetVersion returns the db schema version.
func (s *SystemStore) GetVersion() (string, error) {
	return s.get(s.keys.version())
}

// SaveVersion sets the db schema version.
func (s *SystemStore) SaveVersion(version string) error {
	ctx, cancel := withTimeout()
	defer cancel()

	if err := s.client.Set(ctx, s.keys.version(), version, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to save schema version")
	}
	return nil
}

// GetOwner returns the user ID of the poll owner.
func (s *SystemStore) GetOwner() (string, error) {
	return s.get(s.keys.owner())
}

// EnsureOwner stores candidate as owner unless an owner is already set.
func (s *SystemStore) EnsureOwner(candidate string) (string, error) {
	if candidate == "" {
		return s.GetOwner()
	}

	ctx, cancel := withTimeout()
	defer cancel()

	ok, err := s.client.SetNX(ctx, s.keys.owner(), candidate, 0).Result()
	if err != nil {
		return "", errors.Wrap(err, "failed to save owner")
	}
	if ok {
		return candidate, nil
	}
	return s.GetOwner()
}

func (s *SystemStore) get(key string) (string, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to get %s", key)
	}
	return v, nil
}
