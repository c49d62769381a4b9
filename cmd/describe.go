package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housedash/internal/utils"
)

var (
	descOutputPath string
	descJSON       bool
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Profile the dataset: retained and dropped columns, classification, feature lists",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.DataPath
		if len(args) == 1 {
			path = args[0]
		}
		cat, err := loadCatalog(path)
		if err != nil {
			return err
		}
		prof := cat.Profile()

		var out []byte
		if descJSON {
			if out, err = utils.PrettyJSON(prof); err != nil {
				return err
			}
		} else {
			out = []byte(prof.Markdown())
		}

		if descOutputPath != "" {
			if err := utils.SafeWriteFile(descOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", descOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the profile")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "emit JSON instead of Markdown")
}
