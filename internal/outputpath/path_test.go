package outputpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

func TestFilename_OmitsUniqueComponents(t *testing.T) {
	p := &ToolOutputPath{Tool: metric.ToolCallgrind, Stem: "bench_fib", Kind: KindOut}
	assert.Equal(t, "callgrind.bench_fib.out", p.Filename(0, 0, 0))
}

func TestFilename_IncludesPidAndThread(t *testing.T) {
	pid := uint32(7)
	tid := uint32(2)
	p := &ToolOutputPath{
		Tool: metric.ToolCallgrind, Stem: "bench_fib", Kind: KindOut,
		Modifiers: Modifiers{Pid: &pid, Tid: &tid},
	}
	assert.Equal(t, "callgrind.bench_fib.7.t2.out", p.Filename(1, 1, 0))
}

func TestFilename_BaselineSuffix(t *testing.T) {
	name, err := model.ParseBaselineName("release")
	require.NoError(t, err)
	p := &ToolOutputPath{Tool: metric.ToolCallgrind, Stem: "bench_fib", Kind: KindBase, BaselineName: name}
	assert.Equal(t, "callgrind.bench_fib.out.base@release", p.Filename(0, 0, 0))
}

func TestNew_RejectsInvalidBaselineName(t *testing.T) {
	_, err := New(t.TempDir(), metric.ToolCallgrind, "bench_fib", KindBase, "bad/name")
	assert.Error(t, err)
}

func TestLogPath_SubstitutesExtension(t *testing.T) {
	assert.Equal(t, "callgrind.bench_fib.log", LogPath("callgrind.bench_fib.out"))
	assert.Equal(t, "callgrind.bench_fib.log.old", LogPath("callgrind.bench_fib.out.old"))
}

func TestSanitize_ZeroByteFilesDropped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cachegrind.bench.out"), nil, 0644))

	written, err := Sanitize(dir, metric.ToolCachegrind, "bench", nil)
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestSanitize_SkipsAlreadyRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cachegrind.bench.out.old"), []byte("x"), 0644))

	written, err := Sanitize(dir, metric.ToolCachegrind, "bench", nil)
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestRotateBaseline_Old(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "cachegrind.bench.out")
	require.NoError(t, os.WriteFile(outFile, []byte("data"), 0644))

	require.NoError(t, RotateBaseline(dir, metric.ToolCachegrind, "bench", model.NewOldBaseline()))

	_, err := os.Stat(outFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(outFile + ".old")
	assert.NoError(t, err)
}

func TestRotateBaseline_Named_LeavesCurrentFilesInPlace(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "cachegrind.bench.out")
	require.NoError(t, os.WriteFile(outFile, []byte("data"), 0644))

	name, err := model.ParseBaselineName("release")
	require.NoError(t, err)
	require.NoError(t, RotateBaseline(dir, metric.ToolCachegrind, "bench", model.NewNamedBaseline(name)))

	_, err = os.Stat(outFile)
	assert.NoError(t, err)
}

func TestDecimalWidth(t *testing.T) {
	assert.Equal(t, 0, decimalWidth(0))
	assert.Equal(t, 0, decimalWidth(1))
	assert.Equal(t, 1, decimalWidth(3))
	assert.Equal(t, 2, decimalWidth(11))
}
