package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wcs-project/wcs/pkg/color"
	"github.com/wcs-project/wcs/pkg/wc"
)

// absArg resolves a path argument against CWD so commands behave the same
// from any directory inside the working copy.
func absArg(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func absArgs(ps []string) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = absArg(p)
	}
	return out
}

var (
	addNoRecurse bool
	addForce     bool
	addNoIgnore  bool

	addCmd = &cobra.Command{
		Use:   "add <path>",
		Short: "Schedule a path for addition",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			w := requireWC()
			defer w.Close()

			opts := wc.AddOptions{NoRecurse: addNoRecurse, Force: addForce, NoIgnore: addNoIgnore}
			if err := w.Add(context.Background(), absArg(args[0]), opts); err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(map[string]any{"added": args[0]})
				return
			}
			fmt.Printf("A  %s\n", color.Path(args[0]))
		},
	}
)

var (
	copyRev string

	copyCmd = &cobra.Command{
		Use:     "copy <src> <dest>",
		Aliases: []string{"cp"},
		Short:   "Copy a path and schedule the copy for addition",
		Args:    cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			w := requireWC()
			defer w.Close()

			opts := wc.CopyOptions{Rev: copyRev}
			if err := w.Copy(context.Background(), absArg(args[0]), absArg(args[1]), opts); err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(map[string]any{"src": args[0], "dest": args[1], "revision": copyRev})
				return
			}
			fmt.Printf("A+ %s\n", color.Path(args[1]))
		},
	}
)

var (
	moveForce bool

	moveCmd = &cobra.Command{
		Use:     "move <src> <dest>",
		Aliases: []string{"mv", "rename"},
		Short:   "Move or rename a versioned path",
		Args:    cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			w := requireWC()
			defer w.Close()

			if err := w.Move(context.Background(), absArg(args[0]), absArg(args[1]), wc.MoveOptions{Force: moveForce}); err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(map[string]any{"src": args[0], "dest": args[1]})
				return
			}
			fmt.Printf("D  %s\n", color.Dim(args[0]))
			fmt.Printf("A+ %s\n", color.Path(args[1]))
		},
	}
)

var (
	deleteForce bool

	deleteCmd = &cobra.Command{
		Use:     "delete <path>...",
		Aliases: []string{"rm", "remove"},
		Short:   "Schedule paths for deletion",
		Long: `Schedule one or more paths for deletion, in the order given.
Application across a list is not atomic: paths scheduled before a
failure stay scheduled.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			w := requireWC()
			defer w.Close()

			err := w.Delete(context.Background(), wc.PathList(absArgs(args)...), wc.DeleteOptions{Force: deleteForce})
			if err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(map[string]any{"deleted": args})
				return
			}
			for _, p := range args {
				fmt.Printf("D  %s\n", color.Path(p))
			}
		},
	}
)

var (
	revertRecursive bool

	revertCmd = &cobra.Command{
		Use:   "revert <path>...",
		Short: "Restore paths to their last-known state",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			w := requireWC()
			defer w.Close()

			err := w.Revert(context.Background(), wc.PathList(absArgs(args)...), wc.RevertOptions{Recurse: revertRecursive})
			if err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(map[string]any{"reverted": args})
				return
			}
			for _, p := range args {
				fmt.Printf("R  %s\n", color.Path(p))
			}
		},
	}
)

var (
	resolveNoRecurse bool

	resolveCmd = &cobra.Command{
		Use:     "resolve <path>",
		Aliases: []string{"resolved"},
		Short:   "Mark a conflict as resolved",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			w := requireWC()
			defer w.Close()

			if err := w.Resolve(context.Background(), absArg(args[0]), wc.ResolveOptions{NoRecurse: resolveNoRecurse}); err != nil {
				fmtErr("%v", err)
				os.Exit(1)
			}
			if jsonOutput {
				outputJSON(map[string]any{"resolved": args[0]})
				return
			}
			fmt.Printf("Resolved conflicted state of %s\n", color.Path(args[0]))
		},
	}
)

func init() {
	addCmd.Flags().BoolVar(&addNoRecurse, "no-recurse", false, "do not descend into directory contents")
	addCmd.Flags().BoolVar(&addForce, "force", false, "add even if the path matches an ignore pattern")
	addCmd.Flags().BoolVar(&addNoIgnore, "no-ignore", false, "disable ignore filtering during recursion")

	copyCmd.Flags().StringVarP(&copyRev, "revision", "r", "", "source revision (number, {date}, HEAD, BASE, COMMITTED, PREV)")

	moveCmd.Flags().BoolVar(&moveForce, "force", false, "move despite local modifications")
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "delete modified or unversioned items")
	revertCmd.Flags().BoolVarP(&revertRecursive, "recursive", "R", false, "extend the revert to directory contents")
	resolveCmd.Flags().BoolVar(&resolveNoRecurse, "no-recurse", false, "do not resolve conflicts below a directory")

	rootCmd.AddCommand(addCmd, copyCmd, moveCmd, deleteCmd, revertCmd, resolveCmd)
}
