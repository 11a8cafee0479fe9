package kvstore

import (
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/mattermost/mattermost-server/v6/plugin"
	"github.com/pkg/errors"
)

// SystemStore allows to access system informations in the KV Store.
type SystemStore struct {
	api plugin.API
}

const (
	versionKey = "version"
	ownerKey   = "owner"
)

// GetVersion returns the db schema version.
func (s *SystemStore) GetVersion() (string, error) {
	b, err := s.api.KVGet(versionKey)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SaveVersion sets the db schema version.
func (s *SystemStore) SaveVersion(version string) error {
	err := s.api.KVSet(versionKey, []byte(version))
	if err != nil {
		return err
	}
	return nil
}

// GetOwner returns the user ID of the poll owner.
func (s *SystemStore) GetOwner() (string, error) {
	b, appErr := s.api.KVGet(ownerKey)
	if appErr != nil {
		return "", errors.Wrap(appErr, "failed to get owner")
	}
	return string(b), nil
}

// EnsureOwner stores candidate as owner unless an owner is already set.
func (s *SystemStore) EnsureOwner(candidate string) (string, error) {
	if candidate == "" {
		return s.GetOwner()
	}

	opt := model.PluginKVSetOptions{
		Atomic:   true,
		OldValue: nil,
	}
	ok, appErr := s.api.KVSetWithOptions(ownerKey, []byte(candidate), opt)
	if appErr != nil {
		return "", errors.Wrap(appErr, "failed to save owner")
	}
	if ok {
		return candidate, nil
	}
	return s.GetOwner()
}
