package zkconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultHasUsableScanSettings(t *testing.T) {
	cfg := Default()
	require.Equal(t, "info", cfg.LogLevel)
	require.NotEmpty(t, cfg.Scan.ZKTecoPorts)
	require.NotEmpty(t, cfg.Scan.OtherPorts)
	require.Equal(t, 300*time.Millisecond, cfg.Scan.ProbeTimeout)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zkattend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
scan:
  subnets: ["10.20.30"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, []string{"10.20.30"}, cfg.Scan.Subnets)
	require.Equal(t, []int{4370, 4360, 5005, 5010, 89}, cfg.Scan.ZKTecoPorts)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
