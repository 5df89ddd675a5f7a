package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/wubitab/pkg/codebook"
)

// Key layout:
//
//	c/<code>      values joined by NUL
//	m/build       ksuid of the last import
//	m/version     scheme version of the last import
const (
	codePrefix = "c/"
	buildKey   = "m/build"
	versionKey = "m/version"

	valueSeparator = "\x00"
)

// ErrNoBuild is returned before the first import.
var ErrNoBuild = errors.New("no codebook imported")

// CodebookStore persists one merged codebook in pebble.
type CodebookStore struct {
	db *pebble.DB
}

// Open opens or creates the store in dir.
func Open(dir string) (*CodebookStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &CodebookStore{db: db}, nil
}

func codeKey(code string) []byte {
	return []byte(codePrefix + code)
}

// upperBound returns the smallest key greater than every key with prefix p.
func upperBound(p []byte) []byte {
	end := append([]byte(nil), p...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// Import replaces the stored codebook with book in a single batch and
// returns the id of the new build.
func (s *CodebookStore) Import(book *codebook.Codebook) (ksuid.KSUID, error) {
	id := ksuid.New()
	batch := s.db.NewBatch()
	defer batch.Close()

	start := []byte(codePrefix)
	if err := batch.DeleteRange(start, upperBound(start), nil); err != nil {
		return ksuid.Nil, err
	}
	for _, e := range book.Entries() {
		if err := batch.Set(codeKey(e.Code), []byte(strings.Join(e.Values, valueSeparator)), nil); err != nil {
			return ksuid.Nil, err
		}
	}
	if err := batch.Set([]byte(buildKey), id.Bytes(), nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Set([]byte(versionKey), []byte(book.Version), nil); err != nil {
		return ksuid.Nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return id, nil
}

// get copies the value of key; pebble only lends it until the closer runs.
func (s *CodebookStore) get(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), data...), nil
}

// Lookup returns the values of code in priority order.
func (s *CodebookStore) Lookup(code string) ([]string, error) {
	data, err := s.get(codeKey(code))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, codebook.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), valueSeparator), nil
}

// Complete returns up to limit entries whose code starts with prefix,
// ordered by code. A limit of zero or less means no limit.
func (s *CodebookStore) Complete(prefix string, limit int) ([]codebook.Entry, error) {
	lower := codeKey(prefix)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upperBound(lower),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []codebook.Entry
	for iter.First(); iter.Valid(); iter.Next() {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, codebook.Entry{
			Code:   strings.TrimPrefix(string(iter.Key()), codePrefix),
			Values: strings.Split(string(iter.Value()), valueSeparator),
		})
	}
	return out, iter.Error()
}

// BuildID returns the id of the last import.
func (s *CodebookStore) BuildID() (ksuid.KSUID, error) {
	data, err := s.get([]byte(buildKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return ksuid.Nil, ErrNoBuild
	}
	if err != nil {
		return ksuid.Nil, err
	}
	return ksuid.FromBytes(data)
}

// Version returns the scheme version of the last import.
func (s *CodebookStore) Version() (string, error) {
	data, err := s.get([]byte(versionKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", ErrNoBuild
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close closes the underlying database.
func (s *CodebookStore) Close() error {
	return s.db.Close()
}
