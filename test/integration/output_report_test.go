package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/swr-montecarlo/internal/config"
	"github.com/rpgo/swr-montecarlo/internal/output"
)

func TestOutputGeneration(t *testing.T) {
	_, result := runConfig(t, "../testdata/example_config.yaml")

	for _, format := range []string{"console", "text", "json", "csv"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.RenderReport(&buf, result, format))
			assert.NotEmpty(t, buf.String())
		})
	}

	dir := t.TempDir()
	paths, err := output.GenerateReport(result, "all", dir)
	require.NoError(t, err)
	assert.Len(t, paths, 6)
	for _, p := range paths {
		assert.True(t, strings.HasPrefix(p, dir))
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
}

func TestSaveConfiguration_WritesLoadableFile(t *testing.T) {
	parser := config.NewInputParser()
	out := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, parser.SaveConfiguration(parser.CreateExampleConfiguration(), out))

	loaded, err := parser.LoadFromFile(out)
	require.NoError(t, err)
	require.NotNil(t, loaded.Preset)
	assert.Equal(t, 2, *loaded.Preset)
	assert.Equal(t, uint64(42), loaded.Simulation.Seed)
}
