package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/jsondo"
	"github.com/aretw0/jsondo/pkg/integration"
)

var (
	setupWriteConfig string
	setupYes         bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a storage entry interactively",
	Long: `Walk through the setup step: choose the storage file (or accept the
default), create it as an empty document if needed and print the entry.

With --write-config the chosen path is saved to a config file usable with --config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flow := integration.Flow{DefaultPath: viper.GetString(integration.ConfStoragePath)}

		input := map[string]string{}
		if !setupYes {
			var err error
			input, err = prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), flow.StepUser(nil).Form)
			if err != nil {
				return err
			}
		}

		res := flow.StepUser(input)
		entry := res.Entry
		if _, err := jsondo.Init(entry.StoragePath(), jsondo.WithLogger(slog.Default())); err != nil {
			fatal("Failed to create storage file", err)
		}

		if setupWriteConfig != "" {
			viper.Set(integration.ConfStoragePath, entry.StoragePath())
			if err := viper.WriteConfigAs(setupWriteConfig); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entry)
	},
}

// prompt asks for every field of form, one line each. An empty answer keeps the default.
func prompt(in io.Reader, out io.Writer, form *integration.Form) (map[string]string, error) {
	reader := bufio.NewReader(in)
	answers := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		fmt.Fprintf(out, "%s [%s]: ", f.Key, f.Default)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		answers[f.Key] = strings.TrimSpace(line)
	}
	return answers, nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().StringVar(&setupWriteConfig, "write-config", "", "Save the chosen path to this config file")
	setupCmd.Flags().BoolVarP(&setupYes, "yes", "y", false, "Accept defaults without prompting")
}
