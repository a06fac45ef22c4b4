// Package commands implements the folio command-line interface.
package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/itemservice"
	"github.com/starford/folio/internal/models"
	pkgconfig "github.com/starford/folio/pkg/config"
	"github.com/urfave/cli/v3"
)

// New returns the root folio command.
func New(version string) *cli.Command {
	return &cli.Command{
		Name:    "folio",
		Usage:   "Reading list with a bounded inbox and an unbounded archive",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (optional)",
				Sources: cli.EnvVars(internal.EnvConfig),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory holding the lists, settings and index",
				Sources: cli.EnvVars(internal.EnvHome),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at the configured level instead of warnings only",
			},
		},
		Commands: []*cli.Command{
			addCommand(),
			listCommand(),
			showCommand(),
			editCommand(),
			deleteCommand(),
			archiveCommand(),
			markRefCommand(),
			setStatusCommand(),
			shortcutCommand("start", "Mark an item as doing", models.StatusDoing),
			shortcutCommand("finish", "Mark an item as done and archive it", models.StatusDone),
			shortcutCommand("reset", "Mark an item as todo", models.StatusTodo),
			searchCommand(),
			importCommand(),
			statsCommand(),
			reindexCommand(),
			configCommand(),
			serveCommand(version),
			mcpCommand(version),
		},
	}
}

// PrintError writes err the way the CLI reports failures, with remediation
// when the error carries some.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)

	var full *apperr.InboxFullError
	if errors.As(err, &full) {
		fmt.Fprintln(w, "\nOptions:")
		for _, r := range full.Remediation() {
			fmt.Fprintf(w, "  - %s\n", r)
		}
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		fmt.Fprintln(w, "Run 'folio list' to see item ids.")
	}
}

// loadConfig reads the config file and applies the global flag overrides.
// An explicit --config must exist; the default location is optional.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	if cmd.IsSet("config") {
		if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadOptional(internal.DefaultConfigPath(), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if dir := cmd.String("data-dir"); dir != "" {
		cfg.Data.Dir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// cliLogger logs JSON to stderr so stdout stays reserved for command output.
func cliLogger(cmd *cli.Command, cfg *internal.Config) *slog.Logger {
	level := cfg.App.LogLevel
	if !cmd.Bool("verbose") && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(stderr(cmd), &slog.HandlerOptions{Level: level}))
}

// session is an opened backend for the duration of one command.
type session struct {
	cfg     *internal.Config
	backend *internal.Backend
	svc     *itemservice.Service
	logger  *slog.Logger
}

func open(cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cliLogger(cmd, cfg)
	backend, err := internal.OpenBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, backend: backend, svc: backend.Service, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("close index", slog.String("error", err.Error()))
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func stdin(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

// requireArgs fails with a usage hint unless at least n positional
// arguments were given.
func requireArgs(cmd *cli.Command, n int, usage string) error {
	if cmd.NArg() < n {
		return apperr.Validation(fmt.Errorf("usage: folio %s %s", cmd.Name, usage))
	}
	return nil
}
