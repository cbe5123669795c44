package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/engine/aggregate"
)

var (
	searchSource string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for manga across all sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		var items []core.ListingItem
		if searchSource != "" {
			p, err := appEngine.GetProvider(searchSource)
			if err != nil {
				return err
			}
			results, err := p.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			items = results
		} else {
			merged, counts, err := aggregate.NewService(appEngine).SearchAll(cmd.Context(), query)
			if err != nil {
				return err
			}
			items = merged
			for id, n := range counts {
				if n == 0 {
					formatter.PrintWarning("%s returned no results", id)
				}
			}
		}

		if searchLimit > 0 && len(items) > searchLimit {
			items = items[:searchLimit]
		}

		formatter.PrintHeader(fmt.Sprintf("Results for %q", query))
		formatter.PrintListing(items)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSource, "source", "", "Restrict the search to one source ID")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results to print (0 = all)")
	rootCmd.AddCommand(searchCmd)
}
