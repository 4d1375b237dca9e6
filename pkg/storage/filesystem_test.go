package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("complaints", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "complaints/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	f, err := store.Open(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(rel))
	_, err = store.Open(rel)
	assert.Error(t, err)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, rel := range []string{"../etc/passwd", "/etc/passwd", "a/../../b", ""} {
		_, err := store.Open(rel)
		assert.ErrorIs(t, err, ErrOutsideBase, rel)
	}
}

func TestUploadPolicyCheck(t *testing.T) {
	policy := UploadPolicy{MaxBytes: 1024, AllowedTypes: []string{"image/png"}}

	body, contentType, err := policy.Check(bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, _, err = policy.Check(strings.NewReader("plain text"), 10)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = policy.Check(bytes.NewReader(pngHeader), 4096)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestExtensionFollowsSniffedType(t *testing.T) {
	assert.Equal(t, ".png", ExtensionFor("image/png"))
	assert.Equal(t, ".jpg", ExtensionFor("IMAGE/JPEG"))
	assert.Equal(t, ".bin", ExtensionFor("text/html"))

	assert.Equal(t, "image/png", ContentTypeFor("2026/10/abc.png"))
	assert.Equal(t, "image/webp", ContentTypeFor("abc.WEBP"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("abc.html"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("abc"))
}
