package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogotex/cocktails/internal/config"
	"github.com/gogotex/cocktails/pkg/logger"
)

// cfg is loaded once per invocation, before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "cocktails",
	Short:         "Query the cocktails recipe store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(os.Getenv("LOG_LEVEL"))
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(loaded.LogLevel)
		logger.Debugf("config loaded: backend=%s mongo=%v redis=%s native=%v lookup_window=%d",
			loaded.Store.Backend, loaded.MongoDB.URI != "", loaded.Redis.Addr(),
			loaded.Store.NativeAggregation, loaded.Store.LookupConcurrency)
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", "document store: memory, mongo or redis (overrides STORE_BACKEND)")
	flags.Int("lookup-concurrency", 0, "concurrent review lookups (overrides LOOKUP_CONCURRENCY)")
	flags.Bool("native", false, "run aggregations inside the store when possible (overrides NATIVE_AGGREGATION)")
	_ = viper.BindPFlag("STORE_BACKEND", flags.Lookup("backend"))
	_ = viper.BindPFlag("LOOKUP_CONCURRENCY", flags.Lookup("lookup-concurrency"))
	_ = viper.BindPFlag("NATIVE_AGGREGATION", flags.Lookup("native"))

	rootCmd.AddCommand(newDemoCmd(), newSeedCmd(), newReviewCmd(), newExportCmd(), newServeCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
