package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: sqlite
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "valgrind", cfg.Runner.ValgrindPath)
	assert.False(t, cfg.Runner.AllowASLR)
	assert.Equal(t, 5.0, cfg.Regression.DefaultSoftLimitPct)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplerRatio)
	assert.Equal(t, "vgbench-runner", cfg.Telemetry.ServiceName)
}

func TestLoad_CustomValues(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
runner:
  valgrind_path: /usr/local/bin/valgrind
  allow_aslr: true
  target_dir: /tmp/vgbench
regression:
  default_soft_limit_pct: 10.0
  fail_fast: true
database:
  type: postgres
  host: db.example.com
  port: 5432
  database: vgbench
  user: admin
  password: secret
storage:
  type: local
  local_path: /tmp/storage
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "/usr/local/bin/valgrind", cfg.Runner.ValgrindPath)
	assert.True(t, cfg.Runner.AllowASLR)
	assert.Equal(t, 10.0, cfg.Regression.DefaultSoftLimitPct)
	assert.True(t, cfg.Regression.FailFast)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "vgbench", cfg.Database.Database)
}

func TestLoad_InvalidDatabaseType(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: oracle
storage:
  type: local
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	_, err = Load(configFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestLoad_COSWithCredentials(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
database:
  type: sqlite
storage:
  type: cos
  bucket: test-bucket
  region: ap-guangzhou
  secret_id: test-id
  secret_key: test-key
`
	err := os.WriteFile(configFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configFile)
	require.NoError(t, err)
	assert.Equal(t, "cos", cfg.Storage.Type)
	assert.Equal(t, "test-bucket", cfg.Storage.Bucket)
}

func TestValidate_InvalidStorageType(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Type: "sqlite"},
		Storage:  StorageConfig{Type: "s3"},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestValidate_NegativeSoftLimit(t *testing.T) {
	cfg := &Config{
		Database:   DatabaseConfig{Type: "sqlite"},
		Storage:    StorageConfig{Type: "local"},
		Regression: RegressionConfig{DefaultSoftLimitPct: -1},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "soft limit")
}

func TestValidate_SamplerRatioOutOfRange(t *testing.T) {
	cfg := &Config{
		Database:  DatabaseConfig{Type: "sqlite"},
		Storage:   StorageConfig{Type: "local"},
		Telemetry: TelemetryConfig{SamplerRatio: 1.5},
	}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sampler ratio")
}

func TestEnsureTargetDir(t *testing.T) {
	dir := t.TempDir()
	targetDir := filepath.Join(dir, "runner", "target")

	cfg := &Config{Runner: RunnerConfig{TargetDir: targetDir}}

	err := cfg.EnsureTargetDir()
	require.NoError(t, err)

	_, err = os.Stat(targetDir)
	assert.NoError(t, err)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestLoadFromReader(t *testing.T) {
	content := []byte(`
database:
  type: mysql
  host: mysql.local
storage:
  type: local
`)
	cfg, err := LoadFromReader("yaml", content)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "mysql.local", cfg.Database.Host)
}
