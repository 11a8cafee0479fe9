package testutils

import (
	"github.com/stretchr/testify/mock"
)

// GetMockArgumentsWithType returns num arguments matching any value of the given type.
func GetMockArgumentsWithType(typeString string, num int) []interface{} {
	ret := make([]interface{}, num)
	for i := 0; i < len(ret); i++ {
		ret[i] = mock.AnythingOfType(typeString)
	}
	return ret
}

// GetMockArgumentsWithAnything returns num arguments matching any value.
func GetMockArgumentsWithAnything(num int) []interface{} {
	ret := make([]interface{}, num)
	for i := 0; i < len(ret); i++ {
		ret[i] = mock.Anything
	}
	return ret
}
