package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/itemservice"
	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
	"github.com/urfave/cli/v3"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an item to the inbox, or to the archive with --reference",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Item type", Value: string(models.TypeBlogPost)},
			&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: "Author"},
			&cli.StringFlag{Name: "link", Aliases: []string{"l"}, Usage: "URL"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Free-form note"},
			&cli.BoolFlag{Name: "reference", Aliases: []string{"r"}, Usage: "Store as reference material in the archive"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<name>"); err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			kind := models.KindNormal
			if cmd.Bool("reference") {
				kind = models.KindReference
			}
			res, err := s.svc.Add(ctx, models.NewItemParams{
				Name:   strings.TrimSpace(strings.Join(cmd.Args().Slice(), " ")),
				Type:   cmd.String("type"),
				Author: cmd.String("author"),
				Link:   cmd.String("link"),
				Note:   cmd.String("note"),
				Kind:   string(kind),
			})
			if err != nil {
				return err
			}

			w := stdout(cmd)
			fmt.Fprintf(w, "Added to %s: %s (%s)\n", res.List, res.Item.Name, shortID(res.Item.ID))
			for _, ev := range res.Evicted {
				fmt.Fprintf(w, "Archived to make room: %s\n", ev.Name)
			}
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List items of the inbox and the archive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Only items with this status"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Only items of this type"},
			&cli.BoolFlag{Name: "inbox", Usage: "Only the inbox"},
			&cli.BoolFlag{Name: "archive", Usage: "Only the archive"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var f itemservice.Filter
			if v := cmd.String("status"); v != "" {
				st, err := models.ParseStatus(v)
				if err != nil {
					return err
				}
				f.Status = st
			}
			if v := cmd.String("type"); v != "" {
				t, err := models.ParseItemType(v)
				if err != nil {
					return err
				}
				f.Type = t
			}
			switch inbox, archive := cmd.Bool("inbox"), cmd.Bool("archive"); {
			case inbox && !archive:
				f.List = storage.Inbox
			case archive && !inbox:
				f.List = storage.Archive
			}

			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.svc.List(ctx, f)
			if err != nil {
				return err
			}
			w := stdout(cmd)
			if cmd.Bool("json") {
				return writeJSON(w, items)
			}
			settings, err := s.svc.Settings(ctx)
			if err != nil {
				return err
			}
			printLists(w, items, f.List, settings)
			return nil
		},
	}
}

func printLists(w io.Writer, items []itemservice.ItemView, only storage.List, settings lists.Settings) {
	var inbox, archive []itemservice.ItemView
	for _, it := range items {
		if it.List == storage.Inbox {
			inbox = append(inbox, it)
		} else {
			archive = append(archive, it)
		}
	}
	if only != storage.Archive {
		fmt.Fprintf(w, "Inbox (%d/%d)\n", len(inbox), settings.MaxItems)
		printTable(w, inbox)
	}
	if only == "" {
		fmt.Fprintln(w)
	}
	if only != storage.Inbox {
		fmt.Fprintf(w, "Archive (%d)\n", len(archive))
		printTable(w, archive)
	}
}

func printTable(w io.Writer, items []itemservice.ItemView) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tSTATUS\tTYPE\tNAME\tAUTHOR")
	for _, it := range items {
		status := string(it.Status)
		if it.IsReference() {
			status += " (ref)"
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", it.DisplayID, status, it.Type, it.Name, it.Author)
	}
	tw.Flush()
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show every field of an item",
		ArgsUsage: "<ref>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<ref>"); err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.svc.Get(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			w := stdout(cmd)
			if cmd.Bool("json") {
				return writeJSON(w, it)
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "#%d\t%s\n", it.DisplayID, it.Name)
			fmt.Fprintf(tw, "id\t%s\n", it.ID)
			fmt.Fprintf(tw, "list\t%s\n", it.List)
			fmt.Fprintf(tw, "status\t%s\n", it.Status)
			fmt.Fprintf(tw, "type\t%s\n", it.Type)
			fmt.Fprintf(tw, "kind\t%s\n", it.Kind)
			if it.Author != "" {
				fmt.Fprintf(tw, "author\t%s\n", it.Author)
			}
			if it.Link != "" {
				fmt.Fprintf(tw, "link\t%s\n", it.Link)
			}
			fmt.Fprintf(tw, "added\t%s\n", it.AddedAt.Format("2006-01-02 15:04"))
			if it.StartedAt != nil {
				fmt.Fprintf(tw, "started\t%s\n", it.StartedAt.Format("2006-01-02 15:04"))
			}
			if it.FinishedAt != nil {
				fmt.Fprintf(tw, "finished\t%s\n", it.FinishedAt.Format("2006-01-02 15:04"))
			}
			if it.Note != "" {
				fmt.Fprintf(tw, "note\t%s\n", it.Note)
			}
			return tw.Flush()
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change the fields of an item",
		ArgsUsage: "<ref>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "New name"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "New type"},
			&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: "New author"},
			&cli.StringFlag{Name: "link", Aliases: []string{"l"}, Usage: "New URL"},
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "New note"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<ref> [--name|--type|--author|--link|--note]"); err != nil {
				return err
			}
			var p itemservice.Patch
			fields := map[string]**string{
				"name":   &p.Name,
				"type":   &p.Type,
				"author": &p.Author,
				"link":   &p.Link,
				"note":   &p.Note,
			}
			for name, dst := range fields {
				if cmd.IsSet(name) {
					v := cmd.String(name)
					*dst = &v
				}
			}
			if p == (itemservice.Patch{}) {
				return apperr.Validation(fmt.Errorf("nothing to change, pass at least one field flag"))
			}

			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := s.svc.Edit(ctx, cmd.Args().First(), p, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout(cmd), "Updated #%d: %s\n", it.DisplayID, it.Name)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete an item from whichever list holds it",
		ArgsUsage: "<ref>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<ref>"); err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ref := cmd.Args().First()
			w := stdout(cmd)
			if !cmd.Bool("yes") {
				it, err := s.svc.Get(ctx, ref)
				if err != nil {
					return err
				}
				if !confirm(w, stdin(cmd), fmt.Sprintf("Delete %q from the %s?", it.Name, it.List)) {
					fmt.Fprintln(w, "Cancelled.")
					return nil
				}
				// Confirmed against this exact item; display ids may shift.
				ref = it.ID
			}

			it, err := s.svc.Delete(ctx, ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Deleted: %s\n", it.Name)
			return nil
		},
	}
}

func confirm(w io.Writer, r io.Reader, question string) bool {
	fmt.Fprintf(w, "%s [y/N] ", question)
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func archiveCommand() *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Move an inbox item to the archive without changing its status",
		ArgsUsage: "<ref>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<ref>"); err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.svc.Archive(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			if !res.Moved {
				fmt.Fprintf(stdout(cmd), "Already in the archive: %s\n", res.Item.Name)
				return nil
			}
			fmt.Fprintf(stdout(cmd), "Archived: %s\n", res.Item.Name)
			return nil
		},
	}
}

func markRefCommand() *cli.Command {
	return &cli.Command{
		Name:      "mark-ref",
		Usage:     "Toggle an item between normal and reference material",
		ArgsUsage: "<ref>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<ref>"); err != nil {
				return err
			}
			s, err := open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.svc.ToggleReference(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			w := stdout(cmd)
			if res.Item.IsReference() {
				fmt.Fprintf(w, "%s is now reference material", res.Item.Name)
				if res.Moved {
					fmt.Fprint(w, " (moved to archive)")
				}
				fmt.Fprintln(w)
				return nil
			}
			fmt.Fprintf(w, "%s is now a normal item\n", res.Item.Name)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
