package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ManuelReschke/NewsDesk/app/repository"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

const serverSelectionTimeout = 15 * time.Second

// SetupMongo connects to MONGO_URI, retrying like SetupDatabase, and
// prepares the indexes the repositories rely on.
func SetupMongo(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	uri := env.GetEnv("MONGO_URI", "")
	if uri == "" {
		return nil, nil, errors.New("MONGO_URI is required for the mongo store")
	}
	dbName := env.GetEnv("MONGO_DB", "newsdesk")

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	var client *mongo.Client
	var err error
	for i := 0; i < maxRetries; i++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				break
			}
			_ = client.Disconnect(ctx)
		}

		log.Warnf("Failed to connect to MongoDB (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			if err := sleep(ctx, retryDelay); err != nil {
				return nil, nil, err
			}
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	db := client.Database(dbName)
	if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	log.Infof("Connected to MongoDB database %s", dbName)
	return client, db, nil
}
