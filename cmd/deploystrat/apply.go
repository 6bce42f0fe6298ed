package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deploystrat/internal/exec"
	"deploystrat/internal/plan"
	"deploystrat/internal/planner"
)

func newApplyCmd(root *rootFlags, app *AppContext) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "execute the plan for a revision, persisting progress after every transition",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := app.CommandContext(cmd, "apply")

			strat, err := app.BuildStrategy()
			if err != nil {
				return fmt.Errorf("build strategy: %w", err)
			}

			revision, err := app.ResolveRevision(root.revision)
			if err != nil {
				return fmt.Errorf("resolve revision: %w", err)
			}

			st := app.Store()
			if err := st.InitRevision(ctx, revision); err != nil {
				return fmt.Errorf("init revision: %w", err)
			}

			var p *plan.Plan
			if !flags.force {
				p, err = st.LoadRevision(ctx, app.Config.Project.RepoPath, revision)
				if err != nil {
					return fmt.Errorf("load existing revision: %w", err)
				}
			}
			if p == nil {
				available, availErr := availableArtifacts(ctx, strat, false)
				if availErr != nil {
					return fmt.Errorf("determine available artifacts: %w", availErr)
				}
				p, err = planner.Plan(strat, available)
				if err != nil {
					return fmt.Errorf("plan: %w", err)
				}
			}

			executor, err := exec.New(ctx, strat, p)
			if err != nil {
				return fmt.Errorf("build executor: %w", err)
			}

			persist := func(next *plan.Plan) error {
				p = next
				return st.SaveRevision(ctx, revision, next)
			}

			if err := executor.Run(ctx, persist); err != nil {
				return fmt.Errorf("execute: %w", err)
			}

			printPlan(p)

			if planHasFailure(p) {
				return exitCodeError{msg: fmt.Sprintf("revision %s finished with failed actions", revision)}
			}

			log.Info("applied", "revision", revision, "actions", len(p.Actions))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "recompute and restart the plan instead of resuming the persisted one")

	return cmd
}

func planHasFailure(p *plan.Plan) bool {
	for _, action := range p.Actions {
		if action.State == plan.StateFailed {
			return true
		}
	}
	return false
}

// exitCodeError marks a condition that should exit non-zero (spec.md §6's
// exit-code contract) without cobra printing usage or a stack-trace-shaped
// message twice.
type exitCodeError struct{ msg string }

func (e exitCodeError) Error() string { return e.msg }
