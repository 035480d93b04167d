package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsondo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jsondo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jsondo version %s\n", strings.TrimSpace(jsondo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
