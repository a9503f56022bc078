package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/compression"
)

func newCompressingTestStorage(t *testing.T) *CompressingStorage {
	t.Helper()
	inner, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	cs, err := NewCompressingStorage(inner, compression.LevelDefault)
	require.NoError(t, err)
	return cs
}

func TestCompressingStorage_UploadDownloadRoundTrip(t *testing.T) {
	cs := newCompressingTestStorage(t)
	ctx := context.Background()

	payload := bytes.Repeat([]byte("ch=1 cycles=100\n"), 64)
	require.NoError(t, cs.Upload(ctx, "mymod/bench/run-1/out.log", bytes.NewReader(payload)))

	exists, err := cs.Exists(ctx, "mymod/bench/run-1/out.log")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := cs.Download(ctx, "mymod/bench/run-1/out.log")
	require.NoError(t, err)
	defer rc.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, buf.Bytes())
}

func TestCompressingStorage_StoresSmallerThanPlaintext(t *testing.T) {
	inner, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	cs, err := NewCompressingStorage(inner, compression.LevelDefault)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("a"), 4096)
	require.NoError(t, cs.Upload(context.Background(), "key", bytes.NewReader(payload)))

	compressedPath := inner.GetURL("key" + zstdKeySuffix)
	info, err := os.Stat(compressedPath)
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(payload)))
}

func TestCompressingStorage_UploadFileAndDownloadFile(t *testing.T) {
	cs := newCompressingTestStorage(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "src.log")
	require.NoError(t, os.WriteFile(src, []byte("cachegrind output"), 0644))

	require.NoError(t, cs.UploadFile(ctx, "key/src.log", src))

	dst := filepath.Join(t.TempDir(), "dst.log")
	require.NoError(t, cs.DownloadFile(ctx, "key/src.log", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "cachegrind output", string(data))
}

func TestCompressingStorage_Delete(t *testing.T) {
	cs := newCompressingTestStorage(t)
	ctx := context.Background()

	require.NoError(t, cs.Upload(ctx, "key", bytes.NewReader([]byte("data"))))
	require.NoError(t, cs.Delete(ctx, "key"))

	exists, err := cs.Exists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCompressingStorage_GetURL(t *testing.T) {
	cs := newCompressingTestStorage(t)
	assert.Contains(t, cs.GetURL("key"), "key"+zstdKeySuffix)
}
