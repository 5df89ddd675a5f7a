package storage

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wubitab/pkg/codebook"
)

func openStore(t *testing.T) *CodebookStore {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func bookOf(version string, pairs ...[2]string) *codebook.Codebook {
	b := codebook.New(version)
	for _, p := range pairs {
		b.Add(p[0], p[1])
	}
	return b
}

func TestCodebookStore_ImportAndLookup(t *testing.T) {
	s := openStore(t)

	_, err := s.BuildID()
	assert.ErrorIs(t, err, ErrNoBuild)

	book := bookOf("86", [2]string{"a", "工"}, [2]string{"a", "戈"}, [2]string{"aaaa", "工"}, [2]string{"b", "子"})
	id, err := s.Import(book)
	require.NoError(t, err)
	assert.NotEqual(t, ksuid.Nil, id)

	got, err := s.BuildID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	version, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, "86", version)

	values, err := s.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"工", "戈"}, values)

	_, err = s.Lookup("zz")
	assert.ErrorIs(t, err, codebook.ErrNotFound)
}

func TestCodebookStore_ImportReplaces(t *testing.T) {
	s := openStore(t)

	first, err := s.Import(bookOf("86", [2]string{"a", "工"}, [2]string{"q", "我"}))
	require.NoError(t, err)
	second, err := s.Import(bookOf("98", [2]string{"a", "式"}))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = s.Lookup("q")
	assert.ErrorIs(t, err, codebook.ErrNotFound)
	values, err := s.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"式"}, values)
}

func TestCodebookStore_Complete(t *testing.T) {
	s := openStore(t)
	book := bookOf("86",
		[2]string{"a", "工"},
		[2]string{"aa", "式"},
		[2]string{"aaa", "工"},
		[2]string{"ab", "节"},
		[2]string{"b", "子"},
	)
	_, err := s.Import(book)
	require.NoError(t, err)

	entries, err := s.Complete("a", 0)
	require.NoError(t, err)
	want, err := book.Complete("a", 0)
	require.NoError(t, err)
	assert.Equal(t, want, entries)

	entries, err = s.Complete("a", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "aa", entries[1].Code)

	entries, err = s.Complete("", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	entries, err = s.Complete("c", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCodebookStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	id, err := s.Import(bookOf("06", [2]string{"g", "一"}))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.BuildID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	values, err := s.Lookup("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"一"}, values)
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, []byte("c0"), upperBound([]byte("c/")))
	assert.Equal(t, []byte("b"), upperBound([]byte{'a', 0xff}))
	assert.Nil(t, upperBound([]byte{0xff, 0xff}))
}
