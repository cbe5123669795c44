package cmd

import (
	"github.com/spf13/cobra"

	"manhwaverse/pkg/engine/aggregate"
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the merged popular listing of all sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, counts, err := aggregate.NewService(appEngine).Popular(cmd.Context())
		if err != nil {
			return err
		}

		formatter.PrintHeader("Popular")
		formatter.PrintListing(items)
		for id, n := range counts {
			if n == 0 {
				formatter.PrintWarning("%s contributed no items", id)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(popularCmd)
}
