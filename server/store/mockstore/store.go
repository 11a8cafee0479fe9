package mockstore

import (
	"github.com/stretchr/testify/mock"

	"github.com/matterpoll/movievote/server/store"
)

// Store is a mock store
type Store struct {
	PollStore    PollStore
	CreatorStore CreatorStore
	SystemStore  SystemStore
}

// Poll returns the Poll Store
func (s *Store) Poll() store.PollStore { return &s.PollStore }

// Creator returns the Creator Store
func (s *Store) Creator() store.CreatorStore { return &s.CreatorStore }

// System returns the System Store
func (s *Store) System() store.SystemStore { return &s.SystemStore }

// Close does nothing
func (s *Store) Close() error { return nil }

// AssertExpectations makes sure the expectations of all stores are meet
func (s *Store) AssertExpectations(t mock.TestingT) {
	s.PollStore.AssertExpectations(t)
	s.CreatorStore.AssertExpectations(t)
	s.SystemStore.AssertExpectations(t)
}
