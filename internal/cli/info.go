package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wcs-project/wcs/pkg/color"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show working-copy information",
	Run: func(cmd *cobra.Command, args []string) {
		w := requireWC()
		defer w.Close()

		info := w.Info()
		if jsonOutput {
			outputJSON(info)
			return
		}

		fmt.Printf("Working copy: %s\n", color.Path(info.Root))
		fmt.Printf("  Engine: %s\n", info.Engine)
		if info.User != "" {
			fmt.Printf("  User: %s\n", info.User)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
