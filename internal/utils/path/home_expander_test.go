package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/coremigration/internal/utils/path"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeProvider := func() (string, error) { return "/home/dev", nil }
	environment := map[string]string{"WORKSPACE": "/srv/workspace"}
	lookup := func(name string) (string, bool) {
		value, found := environment[name]
		return value, found
	}

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "absolute", input: "/opt/project", expected: "/opt/project"},
		{name: "tilde_only", input: "~", expected: "/home/dev"},
		{name: "tilde_slash", input: "~/projects/app", expected: filepath.Join("/home/dev", "projects/app")},
		{name: "other_user", input: "~alice/app", expected: "~alice/app"},
		{name: "environment_reference", input: "${WORKSPACE}/app", expected: "/srv/workspace/app"},
		{name: "bare_environment_reference", input: "$WORKSPACE/app", expected: "/srv/workspace/app"},
		{name: "unknown_variable", input: "$MISSING/app", expected: "${MISSING}/app"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			expander := pathutils.NewHomeExpanderWithProvider(homeProvider, lookup)
			require.Equal(testInstance, testCase.expected, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderWithoutHomeDirectory(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	}, nil)
	require.Equal(testInstance, "~/app", expander.Expand("~/app"))

	var nilExpander *pathutils.HomeExpander
	require.Equal(testInstance, "~/app", nilExpander.Expand("~/app"))
}
