package services

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreAndResolve(t *testing.T) {
	svc := NewFileService(t.TempDir())

	url, err := svc.Store(1, "note.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "/files/1/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt", url)

	// Same content, same address: idempotent.
	again, err := svc.Store(1, "other-name.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, url, again)

	path, err := svc.Resolve(1, "2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestFileStoreRejectsEmpty(t *testing.T) {
	svc := NewFileService(t.TempDir())
	_, err := svc.Store(1, "empty.txt", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFileResolveConfinedToWorkspace(t *testing.T) {
	base := t.TempDir()
	svc := NewFileService(base)

	_, err := svc.Store(2, "secret.txt", []byte("other workspace"))
	require.NoError(t, err)

	_, err = svc.Resolve(1, "../2/2aa/e6c/35c94fcfb415dbe95f408b9ce91ee846ed.txt")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Resolve(1, "does/not/exist.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
