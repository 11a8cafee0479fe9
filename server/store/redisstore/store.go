// Package redisstore implements store.Store on top of Redis, for deployments that keep
// poll data outside of the Mattermost database.
package redisstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/store"
)

// DefaultPrefix is prepended to every key written by the store.
const DefaultPrefix = "movievote:"

const opTimeout = 5 * time.Second

// Store is a store.Store backed by Redis.
type Store struct {
	client       *redis.Client
	pollStore    PollStore
	creatorStore CreatorStore
	systemStore  SystemStore
}

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis URL")
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "could not connect to redis")
	}
	return client, nil
}

// NewStore returns a store using client. All keys start with prefix.
// The schema version is set to pluginVersion if none is stored yet.
func NewStore(client *redis.Client, prefix, pluginVersion string) (store.Store, error) {
	k := keys{prefix: prefix}
	s := &Store{
		client:       client,
		pollStore:    PollStore{client: client, keys: k},
		creatorStore: CreatorStore{client: client, keys: k},
		systemStore:  SystemStore{client: client, keys: k},
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.SetNX(ctx, k.version(), pluginVersion, 0).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to set schema version")
	}
	return s, nil
}

func (s *Store) Poll() store.PollStore       { return &s.pollStore }
func (s *Store) Creator() store.CreatorStore { return &s.creatorStore }
func (s *Store) System() store.SystemStore   { return &s.systemStore }

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}
