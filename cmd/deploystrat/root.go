package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd wires the persistent flags every subcommand shares (config
// path, revision override, working directory) and composes the plan/
// apply/artifacts subcommands, mirroring the teacher's flat
// newRootCmd/newXCmd(flags) composition.
func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "deploystrat",
		Short:         "deploystrat plans and applies declarative deployment strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.LoadConfig(flags.configPath, flags.cwd)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "deploystrat.toml", "path to the project configuration file")
	cmd.PersistentFlags().StringVarP(&flags.revision, "revision", "r", "", "revision to plan or apply against (defaults to the project repository's HEAD)")
	cmd.PersistentFlags().StringVar(&flags.cwd, "cwd", "", "working directory the config path is resolved against")

	cmd.AddCommand(newPlanCmd(flags, app))
	cmd.AddCommand(newApplyCmd(flags, app))
	cmd.AddCommand(newArtifactsCmd(flags, app))

	return cmd
}
