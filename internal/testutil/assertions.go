package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that every substring appears in the run's log output.
func AssertLogged(t *testing.T, result *HarnessResult, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		require.True(t,
			strings.Contains(result.LogOutput, s),
			"expected log output to contain %q, got:\n%s", s, result.LogOutput,
		)
	}
}
