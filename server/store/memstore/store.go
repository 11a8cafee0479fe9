// Package memstore implements store.Store with in-memory maps. Nothing is persisted.
package memstore

import (
	"bytes"
	"sync"

	"github.com/pkg/errors"

	"github.com/matterpoll/movievote/server/poll"
	"github.com/matterpoll/movievote/server/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu       sync.Mutex
	counter  int64
	polls    map[int64][]byte
	creators map[string][]int64
	version  string
	owner    string
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		polls:    map[int64][]byte{},
		creators: map[string][]int64{},
	}
}

func (s *Store) Poll() store.PollStore       { return (*pollStore)(s) }
func (s *Store) Creator() store.CreatorStore { return (*creatorStore)(s) }
func (s *Store) System() store.SystemStore   { return (*systemStore)(s) }
func (s *Store) Close() error                { return nil }

type pollStore Store

func (s *pollStore) NextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.counter
	s.counter++
	return id, nil
}

func (s *pollStore) Count() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counter, nil
}

func (s *pollStore) Get(id int64) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.polls[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Polls are kept encoded so callers can never alias stored state.
	p := poll.DecodePollFromByte(b)
	if p == nil {
		return nil, errors.New("failed to decode poll")
	}
	return p, nil
}

func (s *pollStore) Insert(p *poll.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[p.ID]; ok {
		return errors.Errorf("poll %d already exists", p.ID)
	}
	s.polls[p.ID] = p.EncodeToByte()
	return nil
}

func (s *pollStore) Update(prev *poll.Poll, p *poll.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !bytes.Equal(s.polls[p.ID], prev.EncodeToByte()) {
		return errors.Wrapf(store.ErrConflict, "poll %d was modified concurrently", p.ID)
	}
	s.polls[p.ID] = p.EncodeToByte()
	return nil
}

func (s *pollStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.polls, id)
	return nil
}

type creatorStore Store

func (s *creatorStore) Add(creator string, pollID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creators[creator] = append(s.creators[creator], pollID)
	return nil
}

func (s *creatorStore) List(creator string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, len(s.creators[creator]))
	copy(ids, s.creators[creator])
	return ids, nil
}

type systemStore Store

func (s *systemStore) GetVersion() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version, nil
}

func (s *systemStore) SaveVersion(version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version = version
	return nil
}

func (s *systemStore) GetOwner() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.owner, nil
}

func (s *systemStore) EnsureOwner(candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner == "" {
		s.owner = candidate
	}
	return s.owner, nil
}
