package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dogpark/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)

	obj, err := s.Put(context.Background(), "posts/7/rex.jpg", []byte("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "posts/7/rex.jpg", obj.Key)
	assert.Equal(t, "/media/posts/7/rex.jpg", obj.URL)

	data, err := os.ReadFile(filepath.Join(dir, "posts", "7", "rex.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)
	m := NewMemoryStore("/media")

	for _, key := range []string{"", "/etc/passwd", "../outside.jpg", "posts/../../x", `posts\x.jpg`} {
		_, err := s.Put(context.Background(), key, []byte("x"), "image/jpeg")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		_, err = m.Put(context.Background(), key, []byte("x"), "image/jpeg")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore("https://cdn.example.com")
	obj, err := m.Put(context.Background(), "profile-images/1-100.jpg", []byte("img"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/profile-images/1-100.jpg", obj.URL)

	data, ct, ok := m.Get("profile-images/1-100.jpg")
	require.True(t, ok)
	assert.Equal(t, "img", string(data))
	assert.Equal(t, "image/jpeg", ct)
	assert.Len(t, m.Keys(), 1)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore("/media").Put(ctx, "a.jpg", nil, "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	s, err := New(&config.Config{StorageDriver: "memory", StoragePublicURL: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(&config.Config{StorageDriver: "local", StorageDir: t.TempDir(), StoragePublicURL: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	_, err = New(&config.Config{StorageDriver: "s3"})
	assert.Error(t, err)
}
