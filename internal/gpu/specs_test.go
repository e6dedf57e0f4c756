package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_SortedByCost(t *testing.T) {
	c := Default()
	all := c.All()
	require.NotEmpty(t, all)

	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].CostPerHour, all[i].CostPerHour)
	}
}

func TestByID(t *testing.T) {
	c := Default()

	s, ok := c.ByID("NVIDIA GeForce RTX 4090")
	require.True(t, ok)
	assert.Equal(t, "RTX 4090", s.DisplayName)
	assert.Equal(t, 24, s.VRAMGB)

	_, ok = c.ByID("NVIDIA Imaginary GPU")
	assert.False(t, ok)
}

func TestCost_SecureMultiplier(t *testing.T) {
	c := Default()

	for _, s := range c.All() {
		community := c.Cost(s.ID, true)
		secure := c.Cost(s.ID, false)
		assert.InDelta(t, community*SecureMultiplier, secure, 1e-9, "secure rate for %s", s.ID)
	}
}

func TestCost_UnknownGPUIsUnpriced(t *testing.T) {
	c := Default()
	assert.Zero(t, c.Cost("does-not-exist", true))
	assert.Zero(t, c.Cost("does-not-exist", false))
}

func TestByHourlyCost(t *testing.T) {
	c := Default()

	s, ok := c.ByHourlyCost(0.34)
	require.True(t, ok)
	assert.Equal(t, "NVIDIA GeForce RTX 4090", s.ID)

	_, ok = c.ByHourlyCost(123.45)
	assert.False(t, ok)
}

func TestByTier(t *testing.T) {
	c := Default()

	consumer := c.ByTier("consumer")
	require.NotEmpty(t, consumer)
	for _, s := range consumer {
		assert.Equal(t, "consumer", s.Tier)
	}

	assert.Empty(t, c.ByTier("quantum"))
}

func TestFormat(t *testing.T) {
	c := Default()
	assert.Equal(t, "RTX 4090 (24GB VRAM, $0.34/hr)", c.Format("NVIDIA GeForce RTX 4090"))
	assert.Equal(t, "Unknown GPU: xyz", c.Format("xyz"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gpus.yaml")
	content := `gpus:
  - id: "Test GPU"
    display_name: "Test"
    vram_gb: 16
    tier: consumer
    cost_per_hour: 0.50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0.50, c.Cost("Test GPU", true))
	assert.Equal(t, 1.00, c.Cost("Test GPU", false))
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gpus: []\n"), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
