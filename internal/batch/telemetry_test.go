package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSizeProber_SumsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weights.bin"), make([]byte, 100), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "tokenizer.json"), make([]byte, 50), 0644))

	size, ok := NewDirSizeProber().Probe(dir)
	assert.True(t, ok)
	assert.Equal(t, uint64(150), size)
}

func TestDirSizeProber_MissingDirectory(t *testing.T) {
	size, ok := NewDirSizeProber().Probe(filepath.Join(t.TempDir(), "nope"))
	assert.False(t, ok)
	assert.Zero(t, size)
}

func TestDirSizeProber_EmptyPath(t *testing.T) {
	_, ok := NewDirSizeProber().Probe("")
	assert.False(t, ok)
}

func TestRSSSampler_ReturnsNonZero(t *testing.T) {
	sampler := NewRSSSampler()
	assert.NotZero(t, sampler.Sample())
}
