package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"subcanvas/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestUpload_LocalDiskWhenNoRemoteConfigured(t *testing.T) {
	dir := t.TempDir()
	service := storage.New(storage.Config{LocalDir: dir})

	url, err := service.Upload(context.Background(), []byte("image-bytes"), "profiles/abc.png", "image/png")
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/profiles/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "profiles", "abc.png"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
}

func TestUpload_CreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	service := storage.New(storage.Config{LocalDir: dir})

	url, err := service.Upload(context.Background(), []byte("x"), "profiles/deep/nested/file.jpg", "")
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/profiles/deep/nested/file.jpg", url)

	_, err = os.Stat(filepath.Join(dir, "profiles", "deep", "nested", "file.jpg"))
	assert.NoError(t, err)
}

func TestDelete_IsAdvisory(t *testing.T) {
	dir := t.TempDir()
	service := storage.New(storage.Config{LocalDir: dir})

	_, err := service.Upload(context.Background(), []byte("bye"), "profiles/gone.png", "image/png")
	assert.NoError(t, err)

	err = service.Delete(context.Background(), "profiles/gone.png")
	assert.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "profiles", "gone.png"))
	assert.True(t, os.IsNotExist(statErr))

	// Deleting a missing key never errors
	assert.NoError(t, service.Delete(context.Background(), "profiles/never-existed.png"))
	assert.NoError(t, service.Delete(context.Background(), ""))
}
