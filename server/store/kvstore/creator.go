package kvstore

import (
	"encoding/json"

	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/store"
)

// CreatorStore allows to access the creator index in the KV Store.
type CreatorStore struct {
	api plugin.API
}

const creatorPrefix = "creator_"

// Add appends pollID to the list of polls created by creator.
func (s *CreatorStore) Add(creator string, pollID int64) error {
	for i := 0; i < maxCASRetries; i++ {
		b, ids, err := s.get(creator)
		if err != nil {
			return err
		}

		newValue, err := json.Marshal(append(ids, pollID))
		if err != nil {
			return errors.Wrap(err, "failed to encode creator index")
		}
		opt := model.PluginKVSetOptions{
			Atomic:   true,
			OldValue: b,
		}
		ok, appErr := s.api.KVSetWithOptions(creatorPrefix+creator, newValue, opt)
		if appErr != nil {
			return errors.Wrap(appErr, "failed to save creator index")
		}
		if ok {
			return nil
		}
	}
	return errors.Wrap(store.ErrConflict, "failed to save creator index")
}

// List returns the IDs of all polls created by creator in creation order.
func (s *CreatorStore) List(creator string) ([]int64, error) {
	_, ids, err := s.get(creator)
	return ids, err
}

func (s *CreatorStore) get(creator string) ([]byte, []int64, error) {
	b, appErr := s.api.KVGet(creatorPrefix + creator)
	if appErr != nil {
		return nil, nil, errors.Wrap(appErr, "failed to get creator index")
	}
	ids := []int64{}
	if len(b) == 0 {
		return b, ids, nil
	}
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, nil, errors.Wrap(err, "failed to decode creator index")
	}
	return b, ids, nil
}
