package mockstore

import (
	"github.com/stretchr/testify/mock"

	"github.com/matterpoll/movievote/server/poll"
)

// PollStore is a mock type for the PollStore type
type PollStore struct {
	mock.Mock
}

// NextID provides a mock function
func (_m *PollStore) NextID() (int64, error) {
	ret := _m.Called()
	return ret.Get(0).(int64), ret.Error(1)
}

// Count provides a mock function
func (_m *PollStore) Count() (int64, error) {
	ret := _m.Called()
	return ret.Get(0).(int64), ret.Error(1)
}

// Get provides a mock function with given fields: id
func (_m *PollStore) Get(id int64) (*poll.Poll, error) {
	ret := _m.Called(id)

	var r0 *poll.Poll
	if rf, ok := ret.Get(0).(func(int64) *poll.Poll); ok {
		r0 = rf(id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*poll.Poll)
	}

	return r0, ret.Error(1)
}

// Insert provides a mock function with given fields: p
func (_m *PollStore) Insert(p *poll.Poll) error {
	ret := _m.Called(p)
	return ret.Error(0)
}

// Update provides a mock function with given fields: prev, p
func (_m *PollStore) Update(prev *poll.Poll, p *poll.Poll) error {
	ret := _m.Called(prev, p)
	return ret.Error(0)
}

// Delete provides a mock function with given fields: id
func (_m *PollStore) Delete(id int64) error {
	ret := _m.Called(id)
	return ret.Error(0)
}
