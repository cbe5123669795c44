package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"manhwaverse/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP JSON API",
	Long:  "Start the HTTP API server and block until SIGINT or SIGTERM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if env := os.Getenv("MANHWAVERSE_ADDR"); env != "" && !cmd.Flags().Changed("addr") {
			addr = env
		}

		formatter.PrintInfo("Serving API on %s", addr)
		server := api.NewServer(appEngine, addr, Version)
		return server.Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address (env MANHWAVERSE_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
