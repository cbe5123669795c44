package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"manhwaverse/pkg/cli"
	"manhwaverse/pkg/engine"
	"manhwaverse/pkg/engine/logger"
	"manhwaverse/pkg/provider"
	"manhwaverse/pkg/provider/asura"
	"manhwaverse/pkg/provider/comick"
	"manhwaverse/pkg/provider/mangapark"
	"manhwaverse/pkg/provider/webtoons"
)

var (
	debugMode   bool
	verboseMode bool
	appEngine   *engine.Engine
	formatter   = cli.NewFormatter()
)

// Version is set at build time via -ldflags.
var Version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "manhwaverse",
	Short: "manhwaverse scrapes manga and manhwa sites into one API.",
	Long: "manhwaverse is a scraping engine with a CLI and an HTTP JSON API. " +
		"It normalizes listings, details, and chapter images from several " +
		"manga and manhwa sites into common record shapes.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if appEngine == nil {
			appEngine = engine.New()
			registerProviders(appEngine)
		}
		appEngine.SetDebugMode(debugMode)
		if verboseMode && !debugMode {
			if svc, ok := appEngine.Logger.(*logger.Service); ok {
				svc.SetConsoleOutput(true)
			}
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// When no command is specified, display help
		if err := cmd.Help(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// SetupEngine injects a pre-built engine, used by tests.
func SetupEngine(e *engine.Engine) {
	appEngine = e
}

// envConfig applies the environment-level fetch overrides to a source
// configuration.
func envConfig(config provider.Config) provider.Config {
	if v := os.Getenv("MANHWAVERSE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.Timeout = d
		}
	}
	if v := os.Getenv("MANHWAVERSE_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaxRetries = n
		}
	}
	return config
}

// registerProviders wires every source into the engine. Registration
// order is the aggregation order.
func registerProviders(e *engine.Engine) {
	if err := e.RegisterProvider(asura.NewWithConfig(e, envConfig(asura.DefaultConfig()))); err != nil {
		e.Logger.Error("Failed to register asura: %v", err)
	}
	if err := e.RegisterProvider(webtoons.NewWithConfig(e, envConfig(webtoons.DefaultConfig()))); err != nil {
		e.Logger.Error("Failed to register webtoons: %v", err)
	}
	if err := e.RegisterProvider(mangapark.NewWithConfig(e, envConfig(mangapark.DefaultConfig()))); err != nil {
		e.Logger.Error("Failed to register mangapark: %v", err)
	}
	if err := e.RegisterProvider(comick.NewWithConfig(e, envConfig(comick.DefaultConfig()))); err != nil {
		e.Logger.Error("Failed to register comick: %v", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		formatter.PrintError("Error: %s", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging mirrored to the console")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Mirror log output to the console")
}
