package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/pagemark/pagemark-server/internal/api"
	"github.com/pagemark/pagemark-server/internal/config"
	"github.com/pagemark/pagemark-server/internal/logger"
	"github.com/pagemark/pagemark-server/internal/metrics"
	"github.com/pagemark/pagemark-server/internal/service"
)

// Version is reported in the OpenAPI document. Overridden at build time.
var Version = "1.0.0"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:           do.MustInvoke[*service.AuthService](i),
		Category:       do.MustInvoke[*service.CategoryService](i),
		Book:           do.MustInvoke[*service.BookService](i),
		ReadingSession: do.MustInvoke[*service.ReadingSessionService](i),
		Note:           do.MustInvoke[*service.NoteService](i),
		Stats:          do.MustInvoke[*service.StatsService](i),
		Search:         indexHandle.SearchIndex,
		Metrics:        do.MustInvoke[*metrics.Metrics](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		CORSOrigins:       cfg.Server.CORSOrigins,
		AuthRatePerMinute: cfg.RateLimit.AuthPerMinute,
		AuthRateBurst:     cfg.RateLimit.AuthBurst,
		Version:           Version,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
