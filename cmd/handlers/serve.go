package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wikiexplorer/internal/config"
	"wikiexplorer/internal/server"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port    int
		host    string
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long: `Start the wikiexplorer HTTP server.

The server provides:
  • GET /api/articles/next?kind=random|related&title=T
  • Related link titles and suggested topics for an article
  • Cache status, clear and warm-up endpoints
  • Saved article collections (unless --no-store)

Examples:
  # Start server on default port 8080
  wikiexplorer serve

  # Start on custom port without collections
  wikiexplorer serve --port 3000 --no-store`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, noStore)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Disable the collections endpoints")

	return cmd
}

func runServe(ctx context.Context, port int, host string, noStore bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, !noStore)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override server config from flags if provided
	serverCfg := config.GetServer()
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	deps := server.Deps{
		Cache:      a.cache,
		Summarizer: a.summarizer,
		Parser:     a.parser,
	}
	if a.store != nil {
		deps.Store = a.store
	}
	srv := server.New(deps, serverCfg)

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		a.log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		a.log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			config.Duration(serverCfg.ShutdownTimeout, 30*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		a.log.Info("Server stopped successfully")
	}

	return nil
}
