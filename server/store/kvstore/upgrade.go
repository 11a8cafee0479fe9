package kvstore

import (
	"fmt"

	"github.com/blang/semver/v4"
	"github.com/pkg/errors"
)

// UpdateDatabase upgrades the database schema from a given version to the newest version.
func (s *Store) UpdateDatabase(pluginVersion string) error {
	v, err := s.System().GetVersion()
	if err != nil {
		return err
	}

	newestSchema, err := semver.Parse(pluginVersion)
	if err != nil {
		return errors.Wrap(err, "failed to parse plugin version")
	}
	// Don't store patch versions
	newestSchema.Patch = 0

	// If no version is set, set to to the newest version
	if v == "" {
		s.api.LogWarn(fmt.Sprintf("This looks to be a fresh install. Setting database schema version to %v.", newestSchema.String()))
		return s.System().SaveVersion(newestSchema.String())
	}

	currentSchema, err := semver.Parse(v)
	if err != nil {
		return errors.Wrap(err, "failed to parse database schema version")
	}
	if currentSchema.GT(newestSchema) {
		s.api.LogWarn(fmt.Sprintf("The database schema version %v is newer than this plugin. Downgrades are not supported.", currentSchema.String()))
		return nil
	}
	if s.shouldPerformUpgrade(currentSchema, newestSchema) {
		// No schema changes so far, only the version stamp moves forward.
		if err := s.System().SaveVersion(newestSchema.String()); err != nil {
			return err
		}
		s.api.LogWarn("Update complete")
	}

	return nil
}

func (s *Store) shouldPerformUpgrade(currentSchemaVersion, expectedSchemaVersion semver.Version) bool {
	if currentSchemaVersion.LT(expectedSchemaVersion) {
		s.api.LogWarn(fmt.Sprintf("The database schema version of %v appears to be out of date.", currentSchemaVersion.String()))
		s.api.LogWarn(fmt.Sprintf("Attempting to upgrade the database schema version to %v.", expectedSchemaVersion.String()))
		return true
	}
	return false
}
