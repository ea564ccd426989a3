package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/database"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
	"github.com/ManuelReschke/NewsDesk/internal/pkg/s3backup"
)

// Exports every collection of the configured store to S3, or restores
// snapshots from S3 into an empty store.
func main() {
	env.SetupEnvFile()

	command := "backup"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command != "backup" && command != "restore" {
		printUsage()
		os.Exit(1)
	}
	if command == "restore" && len(os.Args) < 3 {
		log.Println("Please pass at least one snapshot key")
		printUsage()
		os.Exit(1)
	}

	cfg, err := s3backup.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid S3 configuration: %v", err)
	}
	if !cfg.IsEnabled() {
		log.Fatal("S3 backup is disabled, set S3_BACKUP_ENABLED=true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	factory := database.NewRepositoryFactory()
	repos, err := factory.GetRepositories(ctx)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", factory.Driver(), err)
	}
	defer repos.Close(context.Background())

	client, err := s3backup.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	if command == "restore" {
		for _, key := range os.Args[2:] {
			n, err := s3backup.Restore(ctx, repos, client, key)
			if err != nil {
				log.Fatalf("Restore of %s failed after %d records: %v", key, n, err)
			}
			log.Printf("Restored %d records from s3://%s/%s", n, cfg.Bucket, key)
		}
		return
	}

	results, err := s3backup.BackupAll(ctx, repos, client, cfg, time.Now())
	for _, r := range results {
		log.Printf("Uploaded s3://%s/%s (%d bytes)", r.BucketName, r.ObjectKey, r.Size)
	}
	if err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	log.Printf("Backup of %s store finished", repos.Driver)
}

func printUsage() {
	fmt.Println("Usage: go run cmd/backup/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  backup            - upload a snapshot of every collection (default)")
	fmt.Println("  restore KEY...    - load snapshots into empty collections")
}
