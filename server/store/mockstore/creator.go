package mockstore

import (
	"github.com/stretchr/testify/mock"
)

// CreatorStore is a mock type for the CreatorStore type
type CreatorStore struct {
	mock.Mock
}

// Add provides a mock function with given fields: creator, pollID
func (_m *CreatorStore) Add(creator string, pollID int64) error {
	ret := _m.Called(creator, pollID)
	return ret.Error(0)
}

// List provides a mock function with given fields: creator
func (_m *CreatorStore) List(creator string) ([]int64, error) {
	ret := _m.Called(creator)

	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}
	return r0, ret.Error(1)
}
