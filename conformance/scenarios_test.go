package conformance

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarksBlueFoot/jiminy/pkg/scenario"
)

func scenarioFiles(t *testing.T) []string {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files
}

func TestConformance_Scenarios(t *testing.T) {
	for _, fileName := range scenarioFiles(t) {
		fileName := fileName
		t.Run(strings.TrimSuffix(filepath.Base(fileName), ".yaml"), func(t *testing.T) {
			t.Parallel()

			s, err := scenario.LoadFile(fileName)
			require.NoError(t, err)

			report, err := scenario.Run(s)
			require.NoError(t, err)
			for _, failure := range report.Failures() {
				t.Errorf("%s: %s", s.Name, failure)
			}
			assert.True(t, report.Passed())
			assert.Len(t, report.Txs, len(s.Transactions))
		})
	}
}

// Two runs over identical fixtures must reach the same account state.
func TestConformance_Scenarios_Deterministic(t *testing.T) {
	for _, fileName := range scenarioFiles(t) {
		s, err := scenario.LoadFile(fileName)
		require.NoError(t, err)

		first, err := scenario.Run(s)
		require.NoError(t, err)
		second, err := scenario.Run(s)
		require.NoError(t, err)
		assert.Equal(t, first.StateHash, second.StateHash, fileName)
		assert.Len(t, first.StateHash, 32, fileName)
	}
}
