package kvstore

import (
	"github.com/mattermost/mattermost-server/v6/plugin"

	"github.com/matterpoll/movievote/server/store"
)

// maxCASRetries bounds compare-and-set loops against concurrent writers.
const maxCASRetries = 10

// Store is a store.Store backed by the Mattermost plugin KV store.
type Store struct {
	api          plugin.API
	pollStore    PollStore
	creatorStore CreatorStore
	systemStore  SystemStore
}

// NewStore returns a KV store and brings the schema up to pluginVersion.
func NewStore(api plugin.API, pluginVersion string) (store.Store, error) {
	s := Store{
		api:          api,
		pollStore:    PollStore{api: api},
		creatorStore: CreatorStore{api: api},
		systemStore:  SystemStore{api: api},
	}
	if err := s.UpdateDatabase(pluginVersion); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Store) Poll() store.PollStore       { return &s.pollStore }
func (s *Store) Creator() store.CreatorStore { return &s.creatorStore }
func (s *Store) System() store.SystemStore   { return &s.systemStore }

// Close is a no-op, the KV store lives as long as the server.
func (s *Store) Close() error { return nil }
