// Package engine parses engine command flags and starts the MCP runtime.
package engine

import (
	"context"
	"flag"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fablestack/engine/internal/game/service"
	mcpserver "github.com/fablestack/engine/internal/mcp/service"
	entrypoint "github.com/fablestack/engine/internal/platform/cmd"
	"github.com/fablestack/engine/internal/storage/sqlite"
)

// Config holds engine command configuration.
type Config struct {
	DBPath           string        `env:"FABLESTACK_ENGINE_DB" envDefault:"engine.db"`
	NarrationTimeout time.Duration `env:"FABLESTACK_ENGINE_NARRATION_TIMEOUT" envDefault:"30s"`
	FrameBuffer      int           `env:"FABLESTACK_ENGINE_FRAME_BUFFER" envDefault:"32"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	fs.DurationVar(&cfg.NarrationTimeout, "narration-timeout", cfg.NarrationTimeout, "How long a turn waits for narration")
	fs.IntVar(&cfg.FrameBuffer, "frame-buffer", cfg.FrameBuffer, "Outbound frame buffer per turn")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens storage, builds the game service and serves MCP over stdio
// until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEngine, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close store: %v", err)
			}
		}()

		svc := service.New(store,
			service.WithNarrationTimeout(cfg.NarrationTimeout),
			service.WithFrameBuffer(cfg.FrameBuffer),
		)
		server, err := mcpserver.New(svc)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Serve(ctx)
		})
		return g.Wait()
	})
}
