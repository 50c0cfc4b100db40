package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/uwillc/netposture/internal/adapters/cve"
)

func main() {
	seedFile := flag.String("seed-file", "", "Path to a single JSON seed file")
	seedDir := flag.String("seed-dir", "", "Directory of JSON seed files")
	dbPath := flag.String("db-path", "./data/records.db", "Path to the vulnerability record database")
	flag.Parse()

	if *seedFile == "" && *seedDir == "" {
		log.Fatal("one of -seed-file or -seed-dir is required")
	}

	log.Println("=== Vulnerability Record Loader ===")
	log.Printf("Database: %s", *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	repo, err := cve.NewSQLiteRepository(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}
	defer repo.Close()

	loader := cve.NewSeedLoader(repo)
	ctx := context.Background()

	var loaded int
	if *seedFile != "" {
		loaded, err = loader.LoadFromFile(ctx, *seedFile)
	} else {
		loaded, err = loader.LoadFromDir(ctx, *seedDir)
	}
	if err != nil {
		log.Fatalf("Failed to load seed data: %v", err)
	}
	log.Printf("Loaded %d records", loaded)

	count, _ := repo.GetTotalCount(ctx)
	log.Printf("Database now contains %d records", count)
}
