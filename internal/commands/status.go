package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
	"github.com/urfave/cli/v3"
)

func setStatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-status",
		Usage:     "Change an item's status; done archives it, leaving done reinstates it",
		ArgsUsage: "<ref> <todo|doing|done>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2, "<ref> <todo|doing|done>"); err != nil {
				return err
			}
			status, err := models.ParseStatus(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			return runSetStatus(ctx, cmd, cmd.Args().First(), status)
		},
	}
}

// shortcutCommand builds start, finish and reset, which fix the target
// status.
func shortcutCommand(name, usage string, status models.Status) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<ref>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1, "<ref>"); err != nil {
				return err
			}
			return runSetStatus(ctx, cmd, cmd.Args().First(), status)
		},
	}
}

func runSetStatus(ctx context.Context, cmd *cli.Command, ref string, status models.Status) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.svc.SetStatus(ctx, ref, status)
	if err != nil {
		return err
	}
	printStatusChange(stdout(cmd), res)
	return nil
}

func printStatusChange(w io.Writer, res lists.StatusUpdateResult) {
	fmt.Fprintf(w, "%s: %s -> %s", res.Item.Name, res.Transition.OldStatus, res.Transition.NewStatus)
	switch {
	case !res.Transition.StatusChanged:
		fmt.Fprint(w, " (unchanged)")
	case len(res.MovedToArchive) > 0:
		fmt.Fprint(w, ", moved to archive")
	case res.MovedToInbox:
		fmt.Fprint(w, ", moved back to inbox")
	}
	fmt.Fprintln(w)
	for _, ev := range res.OverflowItems {
		fmt.Fprintf(w, "Archived to make room: %s\n", ev.Name)
	}
}
