package main

import (
	"fmt"
	"os"

	"github.com/aretw0/capstan/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "capstan",
	Short: "Capstan runs deployment tasks with transactional rollback",
	Long: `Capstan executes the tasks of a YAML recipe. Tasks can run inside a transaction:
when a step fails, the rollback commands registered so far run in reverse order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "", "Recipe file or directory containing "+cli.DefaultRecipe)
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, important, warn, error (default from CAPSTAN_LOG_LEVEL)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("redis", "", "Redis URL for the distributed run lock (serve)")
	rootCmd.PersistentFlags().String("lock-key", "", "Key runs are serialized on (serve, default: recipe name)")
}

// globalOptions reads the persistent flags.
func globalOptions(cmd *cobra.Command) cli.Options {
	file, _ := cmd.Flags().GetString("file")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	redisURL, _ := cmd.Flags().GetString("redis")
	lockKey, _ := cmd.Flags().GetString("lock-key")
	return cli.Options{
		RecipePath: file,
		Debug:      debug,
		LogLevel:   level,
		RedisURL:   redisURL,
		LockKey:    lockKey,
	}
}
