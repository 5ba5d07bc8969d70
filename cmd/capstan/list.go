package main

import (
	"os"

	"github.com/aretw0/capstan/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the tasks of the recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		// Piped output stays raw markdown.
		plain = plain || !term.IsTerminal(int(os.Stdout.Fd()))
		return cli.ListTasks(globalOptions(cmd), os.Stdout, plain)
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the task tree as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintGraph(globalOptions(cmd), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(graphCmd)

	listCmd.Flags().Bool("plain", false, "Print raw markdown instead of rendering it")
}
