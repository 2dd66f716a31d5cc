package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"eventhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	StorageService
	err error
}

func (f failingStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	return "", f.err
}

func (f failingStorage) Delete(ctx context.Context, key string) error {
	return f.err
}

func (f failingStorage) GetURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (f failingStorage) Exists(ctx context.Context, key string) (bool, error) {
	return false, f.err
}

func TestFallbackStorageService(t *testing.T) {
	dir := t.TempDir()
	store := NewFallbackStorageService(dir, "/media/")
	ctx := context.Background()

	url, err := store.Upload(ctx, "qrcodes/qr_A.png", strings.NewReader("png"), "image/png", 3)
	require.NoError(t, err)
	assert.Equal(t, "/media/qrcodes/qr_A.png", url)

	exists, err := store.Exists(ctx, "qrcodes/qr_A.png")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(filepath.Join(dir, "qrcodes", "qr_A.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(ctx, "qrcodes/qr_A.png"))
	require.NoError(t, store.Delete(ctx, "qrcodes/qr_A.png"), "deleting a missing file is not an error")

	exists, err = store.Exists(ctx, "qrcodes/qr_A.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFallbackStorageService_RejectsEscapingKeys(t *testing.T) {
	store := NewFallbackStorageService(t.TempDir(), "/media")

	_, err := store.Upload(context.Background(), "../outside.png", strings.NewReader("x"), "image/png", 1)
	assert.Error(t, err)
}

func TestFallbackStorageService_SizeMismatch(t *testing.T) {
	store := NewFallbackStorageService(t.TempDir(), "/media")
	ctx := context.Background()

	_, err := store.Upload(ctx, "a.png", strings.NewReader("abc"), "image/png", 10)
	assert.Error(t, err)

	_, err = store.Upload(ctx, "b.png", strings.NewReader("abc"), "image/png", -1)
	assert.NoError(t, err)
}

func TestStorageServiceWithFallback(t *testing.T) {
	local := NewFallbackStorageService(t.TempDir(), "/media")
	store := NewStorageServiceWithFallback(failingStorage{err: errors.New("r2 down")}, local)
	ctx := context.Background()

	url, err := store.Upload(ctx, "qr.png", bytes.NewReader([]byte("data")), "image/png", 4)
	require.NoError(t, err)
	assert.Equal(t, "/media/qr.png", url)

	exists, err := store.Exists(ctx, "qr.png")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "https://cdn.example.com/qr.png", store.GetURL("qr.png"))

	// a plain reader cannot be replayed to the fallback
	_, err = store.Upload(ctx, "qr2.png", io.LimitReader(strings.NewReader("data"), 4), "image/png", 4)
	assert.Error(t, err)
}

func TestR2URLs(t *testing.T) {
	cfg := config.R2Config{AccountID: "acct", BucketName: "tickets"}
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", r2Endpoint(cfg))
	assert.Equal(t, "https://pub-acct.r2.dev/qrcodes/qr_A.png", r2PublicURL(cfg, "/qrcodes/qr_A.png"))

	cfg.Endpoint = "http://localhost:9000"
	cfg.PublicURL = "https://cdn.eventhub.tn/"
	assert.Equal(t, "http://localhost:9000", r2Endpoint(cfg))
	assert.Equal(t, "https://cdn.eventhub.tn/qrcodes/qr_A.png", r2PublicURL(cfg, "qrcodes/qr_A.png"))
}

func TestNewStorageService_LocalWithoutR2(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{BasePath: t.TempDir(), BaseURL: "/media"}}

	store := NewStorageService(context.Background(), cfg)
	_, ok := store.(*FallbackStorageService)
	assert.True(t, ok)
}

func TestNewR2Service_RequiresCredentials(t *testing.T) {
	_, err := NewR2Service(context.Background(), config.R2Config{AccountID: "acct"})
	assert.Error(t, err)
}
