package di

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/wubitab/pkg/api"
	"github.com/ssargent/wubitab/pkg/storage"
)

func TestContainerDefaults(t *testing.T) {
	c := NewContainer()

	s, err := c.GetStoreOpener()(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.BuildID()
	assert.ErrorIs(t, err, storage.ErrNoBuild)
	assert.NotNil(t, c.GetServerStarter())
}

func TestContainerOverrides(t *testing.T) {
	c := NewContainer()
	errFake := errors.New("fake")

	c.SetStoreOpener(func(string) (*storage.CodebookStore, error) { return nil, errFake })
	c.SetServerStarter(func(context.Context, api.Lookup, api.ServerConfig) error { return errFake })

	_, err := c.GetStoreOpener()("ignored")
	assert.ErrorIs(t, err, errFake)
	assert.ErrorIs(t, c.GetServerStarter()(context.Background(), nil, api.ServerConfig{}), errFake)
}
