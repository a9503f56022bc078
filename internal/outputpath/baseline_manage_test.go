package outputpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0644))
}

func TestListBaselineNames(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "callgrind.bench_fib.out.base@release")
	writeArtifact(t, dir, "callgrind.bench_fib.log.base@release")
	writeArtifact(t, dir, "cachegrind.bench_fib.out.base@v2")
	writeArtifact(t, dir, "callgrind.bench_fib.out")

	names, err := ListBaselineNames(dir, "bench_fib")
	require.NoError(t, err)
	assert.Equal(t, []string{"release", "v2"}, names)
}

func TestPromoteBaseline(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "callgrind.bench_fib.out")
	writeArtifact(t, dir, "callgrind.bench_fib.log")
	writeArtifact(t, dir, "callgrind.bench_fib.out.base@release")

	require.NoError(t, PromoteBaseline(dir, "bench_fib", "release"))

	assert.NoFileExists(t, filepath.Join(dir, "callgrind.bench_fib.out"))
	assert.FileExists(t, filepath.Join(dir, "callgrind.bench_fib.out.base@release"))
	assert.FileExists(t, filepath.Join(dir, "callgrind.bench_fib.log.base@release"))
}

func TestPromoteBaseline_RejectsInvalidName(t *testing.T) {
	dir := t.TempDir()
	err := PromoteBaseline(dir, "bench_fib", "bad/name")
	assert.Error(t, err)
}

func TestRemoveBaseline(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "callgrind.bench_fib.out.base@release")
	writeArtifact(t, dir, "callgrind.bench_fib.log.base@release")

	require.NoError(t, RemoveBaseline(dir, "bench_fib", "release"))

	assert.NoFileExists(t, filepath.Join(dir, "callgrind.bench_fib.out.base@release"))
	assert.NoFileExists(t, filepath.Join(dir, "callgrind.bench_fib.log.base@release"))
}

func TestRemoveBaseline_NotFound(t *testing.T) {
	dir := t.TempDir()
	err := RemoveBaseline(dir, "bench_fib", "missing")
	assert.Error(t, err)
}
