package mockstore

import (
	"github.com/stretchr/testify/mock"
)

// SystemStore is a mock type for the SystemStore type
type SystemStore struct {
	mock.Mock
}

// GetVersion provides a mock function
func (_m *SystemStore) GetVersion() (string, error) {
	ret := _m.Called()
	return ret.String(0), ret.Error(1)
}

// SaveVersion provides a mock function with given fields: version
func (_m *SystemStore) SaveVersion(version string) error {
	ret := _m.Called(version)
	return ret.Error(0)
}

// GetOwner provides a mock function
func (_m *SystemStore) GetOwner() (string, error) {
	ret := _m.Called()
	return ret.String(0), ret.Error(1)
}

// EnsureOwner provides a mock function with given fields: candidate
func (_m *SystemStore) EnsureOwner(candidate string) (string, error) {
	ret := _m.Called(candidate)
	return ret.String(0), ret.Error(1)
}
