package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newArtifactsCmd(root *rootFlags, app *AppContext) *cobra.Command {
	flags := &artifactsFlags{}

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "list the artifacts declared across the project's deploy files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _ := app.CommandContext(cmd, "artifacts")

			strat, err := app.BuildStrategy()
			if err != nil {
				return fmt.Errorf("build strategy: %w", err)
			}

			type row struct {
				address string
				exists  bool
			}
			var rows []row
			for address, artifact := range strat.Artifacts() {
				exists, existsErr := artifact.Exists(ctx)
				if existsErr != nil {
					return fmt.Errorf("check existence of %s: %w", address.String(), existsErr)
				}
				if flags.existOnly && !exists {
					continue
				}
				rows = append(rows, row{address: address.String(), exists: exists})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].address < rows[j].address })

			for _, r := range rows {
				fmt.Printf("%-8s %s\n", existenceLabel(r.exists), r.address)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.existOnly, "exist", "e", false, "only list artifacts that currently exist")

	return cmd
}

func existenceLabel(exists bool) string {
	if exists {
		return "EXISTS"
	}
	return "ABSENT"
}
