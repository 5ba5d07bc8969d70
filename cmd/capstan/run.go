package main

import (
	"context"
	"os"

	"github.com/aretw0/capstan/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <task>...",
	Short: "Run one or more tasks",
	Long: `Runs the given tasks in order, as one run, stopping at the first failure.
Tasks are addressed by qualified name, e.g. "deploy" or "deploy:migrate".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graphOut, _ := cmd.Flags().GetString("graph")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.RunTasks(ctx, cli.RunOptions{
			Options:  globalOptions(cmd),
			Tasks:    args,
			GraphOut: graphOut,
			Quiet:    quiet,
		}, os.Stdout, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("graph", "", "Write a Mermaid graph of the run to this file")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print task outcomes")
}
