package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wcs-project/wcs/internal/repo"
	"github.com/wcs-project/wcs/pkg/color"
	"github.com/wcs-project/wcs/pkg/config"
)

var initEngine string

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new working copy",
	Long: `Initialize a working copy in the given directory (default: the
current directory). This creates the .wcs/ control area holding the
entries table, the pristine store, and the configuration file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		w, err := repo.Init(path)
		if err != nil {
			fmtErr("failed to initialize working copy: %v", err)
			os.Exit(1)
		}

		cfg := config.Default()
		if initEngine != "" {
			cfg.Engine = initEngine
		}
		if err := config.Save(w.Root, cfg); err != nil {
			fmtErr("failed to write configuration: %v", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(map[string]any{
				"root":           w.Root,
				"format_version": w.FormatVersion,
				"engine":         cfg.Engine,
			})
		} else {
			fmt.Printf("Initialized working copy in %s\n", color.Success(w.Root))
		}
	},
}

func init() {
	initCmd.Flags().StringVar(&initEngine, "engine", "", "engine selection (auto, native, git)")
	rootCmd.AddCommand(initCmd)
}
