package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/deskbothq/deskbot/internal/config"
	"github.com/deskbothq/deskbot/internal/handler"
	"github.com/deskbothq/deskbot/internal/handler/actions"
	"github.com/deskbothq/deskbot/internal/handler/chat"
	"github.com/deskbothq/deskbot/internal/svc"
	"github.com/deskbothq/deskbot/internal/websocket"
)

// ServerOptions holds optional dependencies for the server
type ServerOptions struct {
	SvcCtx  *svc.ServiceContext // Pre-initialized service context
	Version string              // Reported by the health endpoint
	Quiet   bool                // Suppress startup messages for clean CLI output
}

// Run starts the bot server with the given configuration.
// It blocks until the context is cancelled or an error occurs.
func Run(ctx context.Context, c config.Config, opts ...ServerOptions) error {
	var o ServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return run(ctx, c, o)
}

func run(ctx context.Context, c config.Config, opts ServerOptions) error {
	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)

	if err := checkPortAvailable(addr); err != nil {
		return fmt.Errorf("port %d is already in use - only one deskbot instance allowed per computer", c.Port)
	}

	svcCtx := opts.SvcCtx
	if svcCtx == nil {
		version := opts.Version
		if version == "" {
			version = "dev"
		}
		var err error
		svcCtx, err = svc.NewServiceContext(c, version)
		if err != nil {
			return err
		}
		defer svcCtx.Close()
	}

	r := chi.NewRouter()

	if c.Log.Requests && !opts.Quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/health", handler.HealthCheckHandler(svcCtx))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/messages", chat.SendMessageHandler(svcCtx))
		r.Get("/messages", chat.GetHistoryHandler(svcCtx))
		r.Delete("/messages", chat.ClearHistoryHandler(svcCtx))

		r.Get("/status", handler.GetStatusHandler(svcCtx))

		r.Post("/automation", actions.ExecuteActionHandler(svcCtx))
		r.Get("/automation/actions", actions.ListActionsHandler(svcCtx))

		r.Get("/events", websocket.Handler(svcCtx))
	})

	// ReadTimeout/WriteTimeout are intentionally omitted: they set
	// deadlines on the underlying net.Conn which interfere with hijacked
	// WebSocket connections.
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     r,
		IdleTimeout: 120 * time.Second,
	}

	if !opts.Quiet {
		fmt.Printf("deskbot ready at http://%s\n", addr)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if !opts.Quiet {
		fmt.Println("\nShutting down server gracefully...")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// checkPortAvailable checks if the address is available for binding
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}
