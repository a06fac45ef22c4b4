package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/urfave/cli/v3"
)

func serveCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API with live events and the list watcher",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port (default from config)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("port") {
				cfg.App.HTTP.Port = int(cmd.Int("port"))
				if err := cfg.App.HTTP.Validate(); err != nil {
					return fmt.Errorf("invalid port: %w", err)
				}
			}

			opts := []internal.Option{
				internal.WithConfig(cfg),
				internal.WithVersion(version),
			}
			if err := internal.Run(ctx, opts...); err != nil {
				return fmt.Errorf("app run error: %w", err)
			}
			return nil
		},
	}
}

func mcpCommand(version string) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the reading list to MCP clients over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.svc.Reindex(ctx); err != nil {
				s.logger.Warn("initial index sync failed", slog.String("error", err.Error()))
			}
			return mcpserver.New(s.svc, version).ServeStdio()
		},
	}
}
