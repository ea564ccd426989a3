package repository

import (
	"context"
	"fmt"
	"sync"
)

const (
	DriverFile  = "file"
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

// Opener builds the repositories for one store driver
type Opener func(ctx context.Context) (*Repositories, error)

// Factory manages repository instances and ensures they are opened once
type Factory struct {
	driver string
	open   Opener
	repos  *Repositories
	err    error
	once   sync.Once
}

// NewFactory creates a new repository factory for the given driver
func NewFactory(driver string, open Opener) *Factory {
	return &Factory{
		driver: driver,
		open:   open,
	}
}

// GetRepositories opens the store on first use and returns the same instance afterwards
func (f *Factory) GetRepositories(ctx context.Context) (*Repositories, error) {
	f.once.Do(func() {
		if f.open == nil {
			f.err = fmt.Errorf("unknown store driver %q", f.driver)
			return
		}
		f.repos, f.err = f.open(ctx)
	})
	return f.repos, f.err
}

// Driver returns the configured store driver name
func (f *Factory) Driver() string {
	return f.driver
}
