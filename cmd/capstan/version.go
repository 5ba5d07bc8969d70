package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/capstan"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of capstan",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("capstan version %s\n", strings.TrimSpace(capstan.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
