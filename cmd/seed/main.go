// Package main provides a tool to seed the database with a sample
// bookmark tree for development and manual testing.
//
// Usage:
//
//	DB_PATH=~/Markwise/data/db go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/store"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

type seedFolder struct {
	name      string
	bookmarks map[string]string // title -> url
}

var seedFolders = []seedFolder{
	{
		name: "Programming",
		bookmarks: map[string]string{
			"The Go Programming Language": "https://go.dev",
			"Go Packages":                 "https://pkg.go.dev",
			"Hacker News":                 "https://news.ycombinator.com",
		},
	},
	{
		name: "Cooking",
		bookmarks: map[string]string{
			"Serious Eats":     "https://www.seriouseats.com",
			"Sourdough primer": "https://www.theperfectloaf.com/beginner-sourdough-starter/",
		},
	},
	{
		name: "News",
		bookmarks: map[string]string{
			"BBC":      "https://www.bbc.com",
			"Ars Tech": "https://arstechnica.com",
		},
	},
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "Markwise", "data", "db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.EnsureContainers(ctx); err != nil {
		log.Fatalf("Failed to ensure containers: %v", err)
	}

	roots, err := s.GetTree(ctx)
	if err != nil {
		log.Fatalf("Failed to read tree: %v", err)
	}
	bar := tree.ContainerByType(roots, domain.ContainerBookmarksBar)
	if bar == nil {
		log.Fatal("Bookmarks bar container missing")
	}

	created := 0
	for _, f := range seedFolders {
		folder, err := s.Create(ctx, bar.ID, f.name, "")
		if err != nil {
			log.Fatalf("Failed to create folder %q: %v", f.name, err)
		}
		for title, url := range f.bookmarks {
			if _, err := s.Create(ctx, folder.ID, title, url); err != nil {
				log.Fatalf("Failed to create bookmark %q: %v", title, err)
			}
			created++
		}
	}

	// A couple of loose bookmarks and a duplicate so organize and
	// clean have something to chew on.
	other := tree.ContainerByType(roots, domain.ContainerOther)
	if other != nil {
		loose := map[string]string{
			"Go Blog":        "https://go.dev/blog",
			"Go (duplicate)": "https://go.dev",
			"Old broken":     "https://example.invalid/gone",
		}
		for title, url := range loose {
			if _, err := s.Create(ctx, other.ID, title, url); err != nil {
				log.Fatalf("Failed to create bookmark %q: %v", title, err)
			}
			created++
		}
	}

	fmt.Printf("Seeded %d folders and %d bookmarks\n", len(seedFolders), created)
}
