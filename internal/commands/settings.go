package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/starford/folio/internal/lists"
	"github.com/urfave/cli/v3"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and change the inbox settings",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print every setting",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := open(cmd)
					if err != nil {
						return err
					}
					defer s.Close()

					settings, err := s.svc.Settings(ctx)
					if err != nil {
						return err
					}
					return printSettings(stdout(cmd), settings)
				},
			},
			{
				Name:      "get",
				Usage:     "Print one setting",
				ArgsUsage: "<key>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := requireArgs(cmd, 1, "<key>"); err != nil {
						return err
					}
					s, err := open(cmd)
					if err != nil {
						return err
					}
					defer s.Close()

					settings, err := s.svc.Settings(ctx)
					if err != nil {
						return err
					}
					v, err := settings.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(stdout(cmd), v)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Change one setting",
				ArgsUsage: "<key> <value>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if err := requireArgs(cmd, 2, "<key> <value>"); err != nil {
						return err
					}
					s, err := open(cmd)
					if err != nil {
						return err
					}
					defer s.Close()

					key := cmd.Args().First()
					settings, err := s.svc.SetSetting(ctx, key, cmd.Args().Get(1))
					if err != nil {
						return err
					}
					v, _ := settings.Get(key)
					fmt.Fprintf(stdout(cmd), "%s = %s\n", key, v)
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "Restore the default settings",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := open(cmd)
					if err != nil {
						return err
					}
					defer s.Close()

					settings, err := s.svc.ResetSettings(ctx)
					if err != nil {
						return err
					}
					return printSettings(stdout(cmd), settings)
				},
			},
		},
	}
}

func printSettings(w io.Writer, s lists.Settings) error {
	for _, key := range lists.Keys {
		v, err := s.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s = %s\n", key, v)
	}
	return nil
}
