package main

import (
	"context"
	"os"

	"github.com/aretw0/capstan"
	"github.com/aretw0/capstan/internal/cli"
	"github.com/aretw0/capstan/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control API",
	Long: `Exposes the recipe over HTTP: GET /tasks lists tasks, POST /tasks/{task}/run runs one
and GET /metrics serves Prometheus metrics. Runs never overlap; with --redis the
exclusion also holds across servers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		tui.PrintBanner(os.Stdout, capstan.Version)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return cli.Serve(ctx, cli.ServeOptions{
			Options: globalOptions(cmd),
			Port:    port,
		}, os.Stdout, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
