package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/phsym/console-slog"

	"github.com/graphkeep/graphkeep/internal/server"
	"github.com/graphkeep/graphkeep/internal/storage"
)

func main() {
	transport := flag.String("transport", "stdio", "Transport mode: stdio or http")
	port := flag.String("port", "8081", "HTTP port (only used with --transport http)")
	dataDir := flag.String("data-dir", "./data", "Directory for the bank registry and graph files")
	flag.Parse()

	// Logs go to stderr so stdout stays clean for the stdio transport.
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	// Environment override wins over the flag default
	dir := *dataDir
	if env := os.Getenv("GRAPHKEEP_DATA_DIR"); env != "" {
		dir = env
	}

	meta, err := storage.OpenMeta(dir)
	if err != nil {
		slog.Error("open meta store", "error", err)
		os.Exit(1)
	}
	defer meta.Close()

	srv := server.New(meta)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *transport {
	case "stdio":
		slog.Info("graphkeep server starting", "transport", "stdio", "data_dir", dir)
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "http":
		addr := ":" + *port
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		slog.Info("graphkeep server listening", "addr", addr, "data_dir", dir)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("unknown transport, use stdio or http", "transport", *transport)
		os.Exit(1)
	}
}
