package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/pagemark/pagemark-server/internal/config"
	"github.com/pagemark/pagemark-server/internal/logger"
	"github.com/pagemark/pagemark-server/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded repopulates the index when its document
// count disagrees with the store. A fresh index starts empty; a non-empty
// one that disagrees holds stale entries and is rebuilt first.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, err := indexHandle.DocumentCount()
	if err != nil {
		log.Warn("Failed to count search documents", "error", err)
		return
	}

	ctx := context.Background()
	books, err := storeHandle.ListAllBooks(ctx)
	if err != nil {
		log.Warn("Failed to list books for search reindex", "error", err)
		return
	}
	if docCount == uint64(len(books)) {
		return
	}

	if docCount > 0 {
		log.Info("Search index is out of step with the catalog, rebuilding",
			"documents", docCount,
			"book_count", len(books),
		)
		if err := indexHandle.Rebuild(); err != nil {
			log.Error("Search index rebuild failed", "error", err)
			return
		}
	}
	if len(books) == 0 {
		return
	}

	log.Info("Reindexing books", "book_count", len(books))

	go func() {
		if err := indexHandle.IndexBooks(books); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}
