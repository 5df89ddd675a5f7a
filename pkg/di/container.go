// Package di provides dependency injection container
package di

import (
	"context"

	"github.com/ssargent/wubitab/pkg/api"
	"github.com/ssargent/wubitab/pkg/storage"
)

// StoreOpener opens the persistent codebook store in a directory.
type StoreOpener func(dir string) (*storage.CodebookStore, error)

// ServerStarter serves a lookup until the context is cancelled.
type ServerStarter func(ctx context.Context, lookup api.Lookup, config api.ServerConfig) error

// Container holds all the dependencies for the application
type Container struct {
	storeOpener   StoreOpener
	serverStarter ServerStarter
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		storeOpener:   storage.Open,
		serverStarter: api.StartServer,
	}
}

// GetStoreOpener returns the store opener
func (c *Container) GetStoreOpener() StoreOpener {
	return c.storeOpener
}

// GetServerStarter returns the server starter
func (c *Container) GetServerStarter() ServerStarter {
	return c.serverStarter
}

// SetStoreOpener allows overriding the store opener (for testing)
func (c *Container) SetStoreOpener(opener StoreOpener) {
	c.storeOpener = opener
}

// SetServerStarter allows overriding the server starter (for testing)
func (c *Container) SetServerStarter(starter ServerStarter) {
	c.serverStarter = starter
}
