package envutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Name     string        `env:"ENVUTIL_TEST_NAME,required,notEmpty"`
	Interval time.Duration `env:"ENVUTIL_TEST_INTERVAL" envDefault:"2s"`
}

func TestLoadDotenvSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ENVUTIL_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("ENVUTIL_TEST_DOTENV") })

	n, err := LoadDotenv(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "from-file", os.Getenv("ENVUTIL_TEST_DOTENV"))
}

func TestParseReportsMissingRequired(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_NAME", "")
	_, err := Parse[sampleConfig]()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENVUTIL_TEST_NAME")
}

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_NAME", "installdesk")
	cfg, err := Parse[sampleConfig]()
	require.NoError(t, err)
	assert.Equal(t, "installdesk", cfg.Name)
	assert.Equal(t, 2*time.Second, cfg.Interval)
}

func TestInt(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "12")
	assert.Equal(t, 12, Int("ENVUTIL_TEST_INT", 3))
	t.Setenv("ENVUTIL_TEST_INT", "x")
	assert.Equal(t, 3, Int("ENVUTIL_TEST_INT", 3))
}
