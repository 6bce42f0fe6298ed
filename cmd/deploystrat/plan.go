package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"deploystrat/internal/addr"
	"deploystrat/internal/diffstate"
	"deploystrat/internal/plan"
	"deploystrat/internal/planner"
	"deploystrat/internal/store"
	"deploystrat/internal/strategy"
)

func newPlanCmd(root *rootFlags, app *AppContext) *cobra.Command {
	flags := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "compute the planned action sequence for a revision without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, log := app.CommandContext(cmd, "plan")

			strat, err := app.BuildStrategy()
			if err != nil {
				return fmt.Errorf("build strategy: %w", err)
			}

			revision, err := app.ResolveRevision(root.revision)
			if err != nil {
				return fmt.Errorf("resolve revision: %w", err)
			}

			st := app.Store()
			existing, loadErr := st.LoadRevision(ctx, app.Config.Project.RepoPath, revision)
			if loadErr != nil {
				return fmt.Errorf("load existing revision: %w", loadErr)
			}
			if existing != nil && !flags.force {
				log.Info("revision already planned", "revision", revision, "actions", len(existing.Actions))
				printPlan(existing)
				return nil
			}

			available, err := availableArtifacts(ctx, strat, flags.all)
			if err != nil {
				return fmt.Errorf("determine available artifacts: %w", err)
			}

			p, err := planner.Plan(strat, available)
			if err != nil {
				return fmt.Errorf("plan: %w", err)
			}

			if existing != nil {
				if diff := diffAgainstExisting(existing, p); diff != "" {
					fmt.Print(diff)
				}
			}

			if err := st.InitRevision(ctx, revision); err != nil {
				return fmt.Errorf("init revision: %w", err)
			}
			if err := st.SaveRevision(ctx, revision, p); err != nil {
				return fmt.Errorf("save revision: %w", err)
			}

			log.Info("planned", "revision", revision, "actions", len(p.Actions))
			printPlan(p)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "treat every declared artifact as available, ignoring existence checks")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "recompute the plan even if the revision was already planned")

	return cmd
}

// availableArtifacts determines which artifact addresses the planner should
// treat as already produced for this revision: every declared artifact when
// all is set, otherwise only those whose Exists(ctx) reports true.
func availableArtifacts(ctx context.Context, strat *strategy.Strategy, all bool) ([]addr.Address, error) {
	var out []addr.Address
	for address, artifact := range strat.Artifacts() {
		if all {
			out = append(out, address)
			continue
		}
		exists, err := artifact.Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("check existence of %s: %w", address.String(), err)
		}
		if exists {
			out = append(out, address)
		}
	}
	return out, nil
}

// diffAgainstExisting renders a unified diff between the persisted and
// freshly recomputed plan for a revision, so --force re-planning shows what
// changed instead of silently overwriting it.
func diffAgainstExisting(existing, recomputed *plan.Plan) string {
	before, err := store.RenderJSON(existing)
	if err != nil {
		return ""
	}
	after, err := store.RenderJSON(recomputed)
	if err != nil {
		return ""
	}
	return diffstate.Unified(before, after, "persisted", "recomputed")
}

func printPlan(p *plan.Plan) {
	for _, action := range p.Actions {
		fmt.Printf("%-8s %-6s %s\n", action.Type.String(), action.State.String(), action.Address.String())
	}
}
