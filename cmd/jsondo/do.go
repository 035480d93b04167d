package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/jsondo/pkg/core"
)

var (
	doValue  string
	doKeep   int
	doSortBy string
	doSortTo string
)

var doCmd = &cobra.Command{
	Use:   "do <init|delete|insert|sort> <path>",
	Short: "Apply one action to the document",
	Long: `Apply one action to the document at a dotted path.

  jsondo do init    rooms.kitchen
  jsondo do insert  rooms.kitchen.lights --value '{"on": true}'
  jsondo do sort    history --sort-by ts --sort-to desc
  jsondo do delete  history --keep 10

--value is parsed as JSON; anything that is not valid JSON is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := map[string]any{
			"todo":    args[0],
			"path":    args[1],
			"sort_to": doSortTo,
		}
		if cmd.Flags().Changed("value") {
			data["value"] = parseValue(doValue)
		}
		if cmd.Flags().Changed("keep") {
			data["keep"] = doKeep
		}
		if doSortBy != "" {
			data["sort_by"] = doSortBy
		}

		action, err := core.ParseAction(data)
		if err != nil {
			return err
		}

		svc, err := openService()
		if err != nil {
			fatal("Failed to open storage", err)
		}

		out, err := svc.Do(context.Background(), action)
		if err != nil {
			return err
		}

		status := color.New(color.FgGreen).Sprint(out)
		if out == core.NoOp {
			status = color.New(color.FgYellow).Sprint(out)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", status, action.Todo, action.Path)
		return nil
	},
}

// parseValue reads s as JSON, falling back to the raw string.
func parseValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return v
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().StringVar(&doValue, "value", "", "Value to insert (JSON)")
	doCmd.Flags().IntVar(&doKeep, "keep", 0, "Keep only the first N items of a list on delete")
	doCmd.Flags().StringVar(&doSortBy, "sort-by", "", "Field to sort objects by")
	doCmd.Flags().StringVar(&doSortTo, "sort-to", string(core.Asc), "Sort direction (asc, desc)")
}
