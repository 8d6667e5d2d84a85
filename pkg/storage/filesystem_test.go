package storage

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRead(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel := ContentPath(7, "Syllabus.PDF")
	assert.True(t, strings.HasPrefix(rel, "course_7/"))
	assert.True(t, strings.HasSuffix(rel, ".pdf"))

	n, err := store.SaveStream(rel, bytes.NewBufferString("hello"), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	body, err := store.ReadAll(rel)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(rel))
	_, err = store.Open(rel)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLocalStorageEnforcesLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel := ContentPath(1, "notes.txt")
	_, err = store.SaveStream(rel, bytes.NewBufferString("0123456789"), 4)
	require.True(t, errors.Is(err, ErrFileTooLarge))

	_, openErr := store.Open(rel)
	assert.ErrorIs(t, openErr, fs.ErrNotExist)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("../outside.txt", bytes.NewBufferString("x"), 0)
	require.Error(t, err)
	_, err = store.Open("/etc/passwd")
	require.Error(t, err)
}
