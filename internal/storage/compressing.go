package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vgbench/runner/pkg/compression"
)

// zstdKeySuffix marks objects written through CompressingStorage so a
// later Download knows to decompress the payload before returning it.
const zstdKeySuffix = ".zst"

// CompressingStorage wraps a Storage backend and compresses uploaded
// artifacts with zstd, trading upload CPU for archived object size.
type CompressingStorage struct {
	inner      Storage
	compressor compression.Compressor
}

// NewCompressingStorage wraps inner with zstd compression at the given
// level. A nil inner is invalid.
func NewCompressingStorage(inner Storage, level compression.Level) (*CompressingStorage, error) {
	comp, err := compression.New(compression.TypeZstd, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	return &CompressingStorage{inner: inner, compressor: comp}, nil
}

func (s *CompressingStorage) compressedKey(key string) string {
	return key + zstdKeySuffix
}

// Upload compresses reader's contents and uploads them under key+".zst".
func (s *CompressingStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read upload data: %w", err)
	}

	compressed, err := s.compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress upload data: %w", err)
	}

	return s.inner.Upload(ctx, s.compressedKey(key), bytes.NewReader(compressed))
}

// UploadFile compresses the local file's contents and uploads them
// under key+".zst".
func (s *CompressingStorage) UploadFile(ctx context.Context, key string, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read local file: %w", err)
	}

	compressed, err := s.compressor.Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress upload data: %w", err)
	}

	return s.inner.Upload(ctx, s.compressedKey(key), bytes.NewReader(compressed))
}

// Download downloads and decompresses the object stored at key+".zst".
func (s *CompressingStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.inner.Download(ctx, s.compressedKey(key))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed object: %w", err)
	}

	decompressed, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress object: %w", err)
	}

	return io.NopCloser(bytes.NewReader(decompressed)), nil
}

// DownloadFile downloads and decompresses the object stored at key+".zst"
// into localPath.
func (s *CompressingStorage) DownloadFile(ctx context.Context, key string, localPath string) error {
	rc, err := s.Download(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, rc); err != nil {
		return fmt.Errorf("failed to write decompressed data: %w", err)
	}

	return nil
}

// Delete deletes the compressed object at key+".zst".
func (s *CompressingStorage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.compressedKey(key))
}

// Exists checks whether the compressed object at key+".zst" exists.
func (s *CompressingStorage) Exists(ctx context.Context, key string) (bool, error) {
	return s.inner.Exists(ctx, s.compressedKey(key))
}

// GetURL returns the inner backend's URL for the compressed object.
func (s *CompressingStorage) GetURL(key string) string {
	return s.inner.GetURL(s.compressedKey(key))
}
