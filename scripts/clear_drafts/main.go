// clear_drafts - Prune draft review sessions from the storage file.
// Abandoned scan sessions accumulate in holdings.json; this clears them
// while leaving approved holdings untouched.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/eddiefleurent/chain_scout/internal/config"
	"github.com/eddiefleurent/chain_scout/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	keep := flag.String("keep", "", "Session id to keep (everything else is deleted)")
	dryRun := flag.Bool("dry-run", false, "List sessions without deleting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.NewJSONStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	sessions := store.ListDraftSessions()
	fmt.Printf("Found %d draft sessions in %s\n", len(sessions), cfg.Storage.Path)
	for _, id := range sessions {
		rows, _ := store.GetDraftSession(id)
		marker := ""
		if id == *keep {
			marker = " (kept)"
		}
		fmt.Printf("  - %s: %d rows%s\n", id, len(rows), marker)
	}

	if *dryRun {
		fmt.Println("\nDry run, nothing deleted")
		return
	}

	deleted := 0
	for _, id := range sessions {
		if id == *keep {
			continue
		}
		if err := store.DeleteDraftSession(id); err != nil {
			log.Fatalf("Failed to delete session %s: %v", id, err)
		}
		deleted++
	}

	holdings := store.GetHoldings()
	fmt.Printf("\nDeleted %d sessions; %d holdings untouched\n", deleted, len(holdings))
}
