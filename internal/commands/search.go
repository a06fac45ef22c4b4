package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Full-text search over names, authors, notes and links",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Max results (default from config)"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<query>"); err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			limit := s.cfg.App.SearchLimit
			if cmd.IsSet("limit") {
				limit = int(cmd.Int("limit"))
			}
			results, err := s.svc.Search(ctx, strings.Join(cmd.Args().Slice(), " "), limit)
			if err != nil {
				return err
			}

			w := stdout(cmd)
			if cmd.Bool("json") {
				return writeJSON(w, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(w, "No matches.")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(w, "[%s] %s", r.List, r.Name)
				if r.Author != "" {
					fmt.Fprintf(w, " - %s", r.Author)
				}
				fmt.Fprintf(w, " (%s, %s)\n", r.Status, shortID(r.ID))
				if r.Snippet != "" {
					fmt.Fprintf(w, "    %s\n", r.Snippet)
				}
			}
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import items from a Markdown list",
		ArgsUsage: "<file.md>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the parsed entries without adding them"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<file.md>"); err != nil {
				return err
			}
			data, err := os.ReadFile(cmd.Args().First())
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			parsed, err := parser.Parse(data)
			if err != nil {
				return err
			}
			if len(parsed.Items) == 0 {
				return apperr.Validation(fmt.Errorf("no list entries found in %s", cmd.Args().First()))
			}

			w := stdout(cmd)
			if cmd.Bool("dry-run") {
				printEntries(w, parsed.Items)
				return nil
			}

			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.svc.Import(ctx, parsed.Items)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Imported %d items (%d to archive)\n", len(report.Added), report.Archived)
			for _, ev := range report.Evicted {
				fmt.Fprintf(w, "Archived to make room: %s\n", ev.Name)
			}
			for _, sk := range report.Skipped {
				fmt.Fprintf(w, "Skipped %s: %s\n", sk.Name, sk.Reason)
			}
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []models.NewItemParams) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tKIND\tNAME\tLINK")
	for _, e := range entries {
		kind := e.Kind
		if kind == "" {
			kind = string(models.KindNormal)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Type, kind, e.Name, e.Link)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d entries\n", len(entries))
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count items per list and status",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.svc.Stats(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(stdout(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LIST\tSTATUS\tCOUNT")
			for _, row := range stats {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", row.List, row.Status, row.Count)
			}
			return tw.Flush()
		},
	}
}

func reindexCommand() *cli.Command {
	return &cli.Command{
		Name:  "reindex",
		Usage: "Bring the search index up to date with the list files",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			changed, err := s.svc.Reindex(ctx)
			if err != nil {
				return err
			}
			if len(changed) == 0 {
				fmt.Fprintln(stdout(cmd), "Index is up to date.")
				return nil
			}
			names := make([]string, len(changed))
			for i, l := range changed {
				names[i] = string(l)
			}
			fmt.Fprintf(stdout(cmd), "Reindexed: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}
