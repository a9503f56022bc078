package dhat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/metric"
)

const sampleDhat = `{
  "pid": 42,
  "cmd": "/path/to/bench_alloc",
  "totalBytes": 1024,
  "totalBlocks": 16,
  "atTGmax": {"bytes": 512, "blocks": 8},
  "atTEnd": {"bytes": 0, "blocks": 0},
  "maxBytes": 512,
  "maxBlocks": 8
}`

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dhat.bench_alloc.out")
	require.NoError(t, os.WriteFile(path, []byte(sampleDhat), 0644))

	out, err := Parse(path)
	require.NoError(t, err)

	bytes, ok := out.Metrics.Get(metric.DhatTotalBytes)
	require.True(t, ok)
	assert.Equal(t, uint64(1024), bytes.Int)
	assert.Equal(t, 42, out.Header.Pid)
}

func TestParse_MissingMandatoryField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dhat.bad.out")
	require.NoError(t, os.WriteFile(path, []byte(`{"pid": 1}`), 0644))

	_, err := Parse(path)
	assert.Error(t, err)
}
