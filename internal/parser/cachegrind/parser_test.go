package cachegrind

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/metric"
)

const sampleCachegrind = `creator: cachegrind-3.19.0
pid: 555
cmd: /path/to/bench_fib
events: Ir Dr Dw I1mr D1mr D1mw ILmr DLmr DLmw

summary: 100 20 10 5 2 1 0 0 0
`

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cachegrind.bench_fib.out")
	require.NoError(t, os.WriteFile(path, []byte(sampleCachegrind), 0644))

	out, err := Parse(path)
	require.NoError(t, err)

	ir, ok := out.Metrics.Get(metric.Ir)
	require.True(t, ok)
	assert.Equal(t, uint64(100), ir.Int)
	assert.Equal(t, 555, out.Header.Pid)

	_, hasDerived := out.Metrics.Get(metric.EstimatedCycles)
	assert.True(t, hasDerived)
}

func TestParse_MissingEventsLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cachegrind.bad.out")
	require.NoError(t, os.WriteFile(path, []byte("pid: 1\n\nsummary: 1\n"), 0644))

	_, err := Parse(path)
	assert.Error(t, err)
}
