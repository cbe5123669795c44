package cmd

import (
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the registered sources",
	Run: func(cmd *cobra.Command, args []string) {
		formatter.PrintProviderList(appEngine.AllProviders())
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
