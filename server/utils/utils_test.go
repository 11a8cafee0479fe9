package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matterpoll/movievote/server/utils"
)

func TestParseInput(t *testing.T) {
	for name, test := range map[string]struct {
		Input          string
		Trigger        string
		ExpectedAction string
		ExpectedArgs   []string
	}{
		"Create with quoted candidates": {
			Input:          `/movievote create "Movie 1" "Movie 2"`,
			Trigger:        "movievote",
			ExpectedAction: "create",
			ExpectedArgs:   []string{"Movie 1", "Movie 2"},
		},
		"Unquoted arguments": {
			Input:          `/movievote start 3 10`,
			Trigger:        "movievote",
			ExpectedAction: "start",
			ExpectedArgs:   []string{"3", "10"},
		},
		"Action is case insensitive": {
			Input:          `/movievote VOTE 3 "Alien"`,
			Trigger:        "movievote",
			ExpectedAction: "vote",
			ExpectedArgs:   []string{"3", "Alien"},
		},
		"With quotationmark in argument": {
			Input:          `/movievote vote 1 "The \"Thing\""`,
			Trigger:        "movievote",
			ExpectedAction: "vote",
			ExpectedArgs:   []string{"1", `The "Thing"`},
		},
		"Trim whitespace": {
			Input:          `/movievote   end   7  `,
			Trigger:        "movievote",
			ExpectedAction: "end",
			ExpectedArgs:   []string{"7"},
		},
		"Replace curlyquotes": {
			Input:          `/movievote create “Movie A” “Movie B”`,
			Trigger:        "movievote",
			ExpectedAction: "create",
			ExpectedArgs:   []string{"Movie A", "Movie B"},
		},
		"Empty quoted argument is kept": {
			Input:          `/movievote create "Movie A" ""`,
			Trigger:        "movievote",
			ExpectedAction: "create",
			ExpectedArgs:   []string{"Movie A", ""},
		},
		"No action": {
			Input:          `/movievote  `,
			Trigger:        "movievote",
			ExpectedAction: "",
			ExpectedArgs:   []string{},
		},
		"Other trigger": {
			Input:          `/movies list`,
			Trigger:        "movies",
			ExpectedAction: "list",
			ExpectedArgs:   []string{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			action, args := utils.ParseInput(test.Input, test.Trigger)

			assert.Equal(test.ExpectedAction, action)
			if len(test.ExpectedArgs) == 0 {
				assert.Empty(args)
			} else {
				assert.Equal(test.ExpectedArgs, args)
			}
		})
	}
}
