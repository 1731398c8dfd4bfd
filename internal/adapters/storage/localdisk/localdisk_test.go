package localdisk_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paydesk/paydesk_backend/internal/adapters/storage/localdisk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *localdisk.Store {
	t.Helper()
	store, err := localdisk.New(t.TempDir(), "/files")
	require.NoError(t, err)
	return store
}

func TestStore_SaveExistsDelete(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(strings.NewReader("content"), "requisites/a.pdf"))
	assert.True(t, store.Exists("requisites/a.pdf"))
	assert.False(t, store.Exists("requisites/missing.pdf"))

	require.NoError(t, store.Delete("requisites/a.pdf"))
	assert.False(t, store.Exists("requisites/a.pdf"))

	// Deleting a missing blob is not an error.
	assert.NoError(t, store.Delete("requisites/a.pdf"))
}

func TestStore_Copy(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save(strings.NewReader("content"), "rule-requisites/src.pdf"))
	require.NoError(t, store.Copy("rule-requisites/src.pdf", "requisites/dst.pdf"))

	assert.True(t, store.Exists("rule-requisites/src.pdf"))
	assert.True(t, store.Exists("requisites/dst.pdf"))
}

func TestStore_URLRoundTrip(t *testing.T) {
	store := newStore(t)

	url := store.URL("requisites/a.pdf")
	assert.Equal(t, "/files/requisites/a.pdf", url)

	path, ok := store.PathFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "requisites/a.pdf", path)
}

func TestStore_PathFromURL(t *testing.T) {
	store := newStore(t)

	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"plain", "/files/requisites/a.pdf", "requisites/a.pdf", true},
		{"query string suffix", "/files/requisites/a.pdf?v=2", "requisites/a.pdf", true},
		{"fragment suffix", "/files/requisites/a.pdf#page=2", "requisites/a.pdf", true},
		{"outside base URL", "/static/requisites/a.pdf", "", false},
		{"bare base URL", "/files/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := store.PathFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_PathEscapeContained(t *testing.T) {
	dir := t.TempDir()
	store, err := localdisk.New(filepath.Join(dir, "root"), "/files")
	require.NoError(t, err)

	outside := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	// Traversal components are cleaned away; the write stays under the root.
	require.NoError(t, store.Save(strings.NewReader("x"), "../secret.txt"))
	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(data))
}
