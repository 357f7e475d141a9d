package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/markwiseapp/markwise-server/internal/api"
	"github.com/markwiseapp/markwise-server/internal/config"
	"github.com/markwiseapp/markwise-server/internal/logger"
	"github.com/markwiseapp/markwise-server/internal/search"
	"github.com/markwiseapp/markwise-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexer := do.MustInvoke[*search.Indexer](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := api.Services{
		Snapshot: do.MustInvoke[*service.SnapshotService](i),
		Organize: do.MustInvoke[*service.OrganizeService](i),
		Clean:    do.MustInvoke[*service.CleanService](i),
		Tag:      do.MustInvoke[*service.TagService](i),
		Import:   do.MustInvoke[*service.ImportService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, indexer, sseHandle.Manager, log.Logger)

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

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
