// Command memview-export moves record sets in and out of the store:
// JSON export, JSON import (merge or replace), and Markdown directory
// import.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/scrypster/memview/internal/config"
	"github.com/scrypster/memview/internal/export"
	"github.com/scrypster/memview/internal/importer"
	"github.com/scrypster/memview/internal/storage/sqlite"
	"github.com/scrypster/memview/pkg/types"
)

var (
	exportPath   = flag.String("export", "", "Write the user's records to this JSON file and exit")
	importPath   = flag.String("import", "", "Load records from this JSON file and exit")
	markdownPath = flag.String("markdown", "", "Load records from Markdown files under this directory and exit")
	mode         = flag.String("mode", "merge", "Import mode: merge or replace")
	user         = flag.String("user", "", "User whose records to operate on (overrides config)")
	dbPath       = flag.String("db", "", "Path to database file (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	userID := cfg.User.UserID
	if *user != "" {
		userID = *user
	}

	dbPathFinal := cfg.Storage.DataPath + "/memview.db"
	if *dbPath != "" {
		dbPathFinal = *dbPath
	}

	store, err := sqlite.NewStore(dbPathFinal)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	switch {
	case *exportPath != "":
		if err := runExport(ctx, store, userID, *exportPath); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	case *importPath != "":
		if err := runImport(ctx, store, userID, *importPath, export.Mode(*mode)); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	case *markdownPath != "":
		if err := runMarkdownImport(ctx, store, userID, *markdownPath, export.Mode(*mode)); err != nil {
			log.Fatalf("Markdown import failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runExport(ctx context.Context, store *sqlite.Store, userID, path string) error {
	docs, err := store.List(ctx, userID)
	if err != nil {
		return err
	}

	records := make([]types.Memory, 0, len(docs))
	for _, doc := range docs {
		records = append(records, types.Normalize(doc))
	}

	data, err := export.Marshal(export.Export(records, time.Now()))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("Exported %d memories to %s\n", len(records), path)
	return nil
}

func runImport(ctx context.Context, store *sqlite.Store, userID, path string, mode export.Mode) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	doc, err := export.Parse(data)
	if err != nil {
		return err
	}

	count, err := export.Import(ctx, store, userID, doc, mode)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d memories from %s (mode: %s)\n", count, path, mode)
	return nil
}

func runMarkdownImport(ctx context.Context, store *sqlite.Store, userID, dir string, mode export.Mode) error {
	docs, err := importer.ParseDir(dir)
	if err != nil {
		return err
	}

	records := make([]types.Memory, 0, len(docs))
	for _, doc := range docs {
		records = append(records, types.Normalize(doc))
	}

	importDoc := export.Export(records, time.Now())
	count, err := export.Import(ctx, store, userID, importDoc, mode)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d memories from %s (mode: %s)\n", count, dir, mode)
	return nil
}
