package database

import (
	"context"
	"strings"

	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

// StoreDriver returns the configured STORE_DRIVER, defaulting to file
func StoreDriver() string {
	return strings.ToLower(strings.TrimSpace(env.GetEnv("STORE_DRIVER", repository.DriverFile)))
}

// NewRepositoryFactory returns a factory that opens the store selected by
// STORE_DRIVER on first use.
func NewRepositoryFactory() *repository.Factory {
	driver := StoreDriver()
	return repository.NewFactory(driver, Opener(driver))
}

// Opener returns the function that opens the given store driver, or nil for
// an unknown driver.
func Opener(driver string) repository.Opener {
	switch driver {
	case repository.DriverFile:
		return func(ctx context.Context) (*repository.Repositories, error) {
			return repository.NewFileRepositories(env.GetEnv("DATA_DIR", "./data"))
		}
	case repository.DriverMongo:
		return func(ctx context.Context) (*repository.Repositories, error) {
			client, db, err := SetupMongo(ctx)
			if err != nil {
				return nil, err
			}
			return repository.NewMongoRepositories(client, db), nil
		}
	case repository.DriverMySQL:
		return func(ctx context.Context) (*repository.Repositories, error) {
			db, err := SetupDatabase(ctx)
			if err != nil {
				return nil, err
			}
			return repository.NewGormRepositories(db), nil
		}
	default:
		return nil
	}
}
