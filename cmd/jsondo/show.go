package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsondo/pkg/adapters/fs"
)

var (
	showYAML bool
)

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the document or the value at a path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		svc, err := openService()
		if err != nil {
			fatal("Failed to open storage", err)
		}

		v, ok, err := svc.Read(context.Background(), path)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("path not found: %s", path)
		}

		if showYAML {
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			if err := encoder.Encode(fs.YAMLValue(v)); err != nil {
				return err
			}
			return encoder.Close()
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Output in YAML format")
}
