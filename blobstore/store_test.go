package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]WritableStore {
	return map[string]WritableStore{
		"memory": NewMemoryStore(),
		"local":  NewLocalStore(t.TempDir()),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(ctx, "a/one.csv", []byte("hello world")))

			w, err := s.Create(ctx, "a/two.csv")
			require.NoError(t, err)
			_, err = io.WriteString(w, "streamed")
			require.NoError(t, err)
			require.NoError(t, w.Close())

			require.NoError(t, s.Put(ctx, "b.csv", nil))

			names, err := s.List(ctx, "a/")
			require.NoError(t, err)
			assert.Equal(t, []string{"a/one.csv", "a/two.csv"}, names)

			b, err := s.Open(ctx, "a/one.csv")
			require.NoError(t, err)
			assert.Equal(t, int64(11), b.Size())

			rc, err := b.ReadRange(ctx, 6, 100)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "world", string(got))

			rc, err = b.ReadRange(ctx, 50, 5)
			require.NoError(t, err)
			got, err = io.ReadAll(rc)
			require.NoError(t, err)
			assert.Empty(t, got)

			m, ok := b.(Mappable)
			require.True(t, ok)
			data, err := m.Bytes()
			require.NoError(t, err)
			assert.Equal(t, "hello world", string(data))
			require.NoError(t, b.Close())

			r, err := OpenReader(ctx, s, "a/two.csv")
			require.NoError(t, err)
			got, err = io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "streamed", string(got))
			require.NoError(t, r.Close())

			_, err = s.Open(ctx, "missing.csv")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStoreLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s := NewLocalStore(root)
	require.NoError(t, s.Put(context.Background(), "x.csv", []byte("1")))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.csv", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(root, "x.csv"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", data))
	data[0] = 'z'

	r, err := OpenReader(ctx, s, "k")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
