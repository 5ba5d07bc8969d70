package main

import (
	"os"

	"github.com/aretw0/capstan/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the recipe for broken references and rollbacks that never run",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(globalOptions(cmd), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
