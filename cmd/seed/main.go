// Package main provides a tool to seed the database with demo reading data.
//
// It registers a demo user (or reuses it), files a handful of books under a
// few categories and logs reading sessions over the past two weeks so the
// stats and progress endpoints have something to show.
//
// Usage:
//
//	DATA_PATH=~/pagemark go run ./cmd/seed
//	DATA_PATH=~/pagemark go run ./cmd/seed --db-backend badger --email me@example.com
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/pagemark/pagemark-server/internal/auth"
	"github.com/pagemark/pagemark-server/internal/config"
	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
	"github.com/pagemark/pagemark-server/internal/metrics"
	"github.com/pagemark/pagemark-server/internal/search"
	"github.com/pagemark/pagemark-server/internal/service"
	"github.com/pagemark/pagemark-server/internal/store"
	"github.com/pagemark/pagemark-server/internal/store/badgerdb"
	"github.com/pagemark/pagemark-server/internal/store/sqlite"
	"github.com/pagemark/pagemark-server/internal/validation"
)

var (
	backend  = flag.String("db-backend", config.BackendSQLite, "Storage backend (sqlite, badger)")
	email    = flag.String("email", "demo@pagemark.local", "Demo account email")
	password = flag.String("password", "pagemark-demo", "Demo account password")
)

type seedBook struct {
	category string
	title    string
	author   string
	pages    int
}

var catalog = []seedBook{
	{"Fiction", "The Dispossessed", "Ursula K. Le Guin", 387},
	{"Fiction", "A Wizard of Earthsea", "Ursula K. Le Guin", 183},
	{"Fiction", "Piranesi", "Susanna Clarke", 272},
	{"Science", "The Selfish Gene", "Richard Dawkins", 360},
	{"Science", "Cosmos", "Carl Sagan", 396},
	{"History", "SPQR", "Mary Beard", 608},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/pagemark")
	}

	cfg := &config.Config{
		Data:     config.DataConfig{BasePath: dataPath},
		Database: config.DatabaseConfig{Backend: *backend},
	}

	fmt.Printf("Opening %s database at: %s\n", *backend, cfg.DatabasePath())

	logger := slog.New(slog.DiscardHandler)
	st, err := openStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.SearchPath(), Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	key, err := auth.LoadOrGenerateKey(filepath.Clean(dataPath))
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	v := validation.New()
	authSvc := service.NewAuthService(st, tokens, v, logger)
	categorySvc := service.NewCategoryService(st, v, logger)
	bookSvc := service.NewBookService(st, index, index, v, logger)
	sessionSvc := service.NewReadingSessionService(st, metrics.New(), logger)

	ctx := context.Background()

	userID, err := demoUser(ctx, authSvc)
	if err != nil {
		log.Fatalf("Failed to prepare demo user: %v", err)
	}
	fmt.Printf("Seeding data for user: %s (%s)\n", *email, userID)

	categories := make(map[string]string)
	existing, err := categorySvc.ListCategories(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	for _, c := range existing {
		categories[c.Name] = c.ID
	}
	for _, b := range catalog {
		if _, ok := categories[b.category]; ok {
			continue
		}
		c, err := categorySvc.CreateCategory(ctx, userID, service.CreateCategoryRequest{Name: b.category})
		if err != nil {
			log.Fatalf("Failed to create category %s: %v", b.category, err)
		}
		categories[b.category] = c.ID
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	now := time.Now()
	sessionsCreated := 0

	for _, b := range catalog {
		book, err := bookSvc.CreateBook(ctx, userID, service.CreateBookRequest{
			TotalPages: b.pages,
			CategoryID: categories[b.category],
			Title:      b.title,
			Author:     b.author,
		})
		if err != nil {
			log.Printf("Failed to create book %s: %v", b.title, err)
			continue
		}

		// Read somewhere between none and all of the book over two weeks.
		target := rng.IntN(b.pages + 1)
		for day := 13; day >= 0 && target > 0; day-- {
			if rng.Float32() > 0.6 {
				continue
			}
			pages := min(target, 5+rng.IntN(40))
			date := time.Date(now.Year(), now.Month(), now.Day()-day, 6+rng.IntN(16), rng.IntN(60), 0, 0, time.Local)

			_, err := sessionSvc.CreateSession(ctx, service.CreateSessionRequest{
				BookID:      book.ID,
				UserID:      userID,
				Minutes:     pages * (1 + rng.IntN(3)),
				PagesRead:   pages,
				SessionDate: date,
			})
			if err != nil {
				log.Printf("Failed to log session for %s: %v", b.title, err)
				break
			}
			target -= pages
			sessionsCreated++
		}

		final, err := bookSvc.GetBook(ctx, book.ID, userID)
		if err == nil {
			fmt.Printf("  %s: %d/%d pages (%d%%)\n", final.Title, final.PagesRead, final.TotalPages, final.Progress)
		}
	}

	fmt.Printf("\nCreated %d reading sessions across %d books\n", sessionsCreated, len(catalog))
	fmt.Println("Seeding complete!")
}

func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Database.Backend {
	case config.BackendBadger:
		return badgerdb.Open(cfg.DatabasePath(), logger)
	case config.BackendSQLite:
		return sqlite.Open(cfg.DatabasePath(), logger)
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
}

// demoUser registers the demo account, or logs into it if it already exists.
func demoUser(ctx context.Context, authSvc *service.AuthService) (string, error) {
	res, err := authSvc.Register(ctx, service.RegisterRequest{
		Email:       *email,
		Password:    *password,
		DisplayName: "Demo Reader",
	})
	if err == nil {
		return res.User.ID, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return "", err
	}

	res, err = authSvc.Login(ctx, service.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return "", err
	}
	return res.User.ID, nil
}
