// Package exec drives a Plan through its state machine one transition at a
// time, mirroring the teacher's internal/engine single-threaded apply loop
// but pulled instead of pushed: callers pump Next and persist whatever it
// yields before pumping again, matching the write-per-transition contract
// this system's revision store depends on.
package exec

import (
	"context"
	"fmt"

	"deploystrat/internal/addr"
	"deploystrat/internal/deployerrors"
	"deploystrat/internal/plan"
	"deploystrat/internal/resolve"
	"deploystrat/internal/strategy"
)

// Executor walks a Plan's actions in order, resolving each action's
// dependency shape against a live results map that grows as RUN actions
// complete.
type Executor struct {
	strat   *strategy.Strategy
	results map[addr.Address]any
	plan    *plan.Plan
	idx     int
}

// New seeds the results map from every existing artifact and every
// resource's current state, then positions the cursor at the first
// non-terminal action in initial — the resumption rule spec.md §5 describes:
// a freshly loaded plan resumes from wherever it was interrupted.
func New(ctx context.Context, strat *strategy.Strategy, initial *plan.Plan) (*Executor, error) {
	results := make(map[addr.Address]any)

	for a, art := range strat.Artifacts() {
		exists, err := art.Exists(ctx)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		v, err := art.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		results[a] = v
	}

	for a, res := range strat.Resources() {
		v, err := res.State(ctx)
		if err != nil {
			return nil, err
		}
		results[a] = v
	}

	e := &Executor{strat: strat, results: results, plan: initial.Clone()}
	e.idx = firstNonTerminal(e.plan)
	return e, nil
}

func firstNonTerminal(p *plan.Plan) int {
	for i, a := range p.Actions {
		if !isTerminal(a.State) {
			return i
		}
	}
	return len(p.Actions)
}

func isTerminal(s plan.ActionState) bool {
	switch s {
	case plan.StateDone, plan.StateFailed, plan.StateCancelled:
		return true
	default:
		return false
	}
}

// Next advances the executor by exactly one state transition, returning the
// resulting plan snapshot. The second return value reports whether any
// transition remains after this one; once nothing is left to drive, Next
// returns a nil plan and false.
func (e *Executor) Next(ctx context.Context) (*plan.Plan, bool, error) {
	for e.idx < len(e.plan.Actions) {
		action := e.plan.Actions[e.idx]
		if isTerminal(action.State) {
			e.idx++
			continue
		}

		switch action.State {
		case plan.StatePlanned:
			next, err := e.beginAction(ctx, action)
			if err != nil {
				return nil, false, err
			}
			e.plan = e.plan.WithAction(e.idx, next)
			return e.plan, true, nil

		case plan.StateInProgress:
			p, err := e.completeAction(ctx, action)
			if err != nil {
				return nil, false, err
			}
			e.plan = p
			e.idx++
			return e.plan, firstNonTerminal(e.plan) < len(e.plan.Actions), nil

		default:
			return nil, false, fmt.Errorf("action %s in unexpected state %s", action.Address.String(), action.State)
		}
	}
	return nil, false, nil
}

// beginAction transitions PLANNED -> IN_PROGRESS. RUN actions resolve their
// dependency shape, rebind the step, and capture a snapshot; the resolved
// inputs are frozen onto the action now so a later rollback rebinds against
// them rather than the (possibly since-mutated) live results map.
func (e *Executor) beginAction(ctx context.Context, action plan.Action) (plan.Action, error) {
	action.State = plan.StateInProgress

	if action.Type != plan.ActionRun {
		return action, nil
	}

	step, ok := e.strat.Steps()[action.Address]
	if !ok {
		return plan.Action{}, deployerrors.NewSpecNotFoundError(action.Address)
	}

	inputs, err := resolve.ResolveAll(e.strat.Dependencies(action.Address), e.results)
	if err != nil {
		return plan.Action{}, err
	}
	bound, err := step.Bind(inputs)
	if err != nil {
		return plan.Action{}, err
	}
	snapshot, err := bound.Snapshot(ctx)
	if err != nil {
		return plan.Action{}, err
	}

	action.ResolvedInputs = inputs
	action.Snapshot = snapshot
	return action, nil
}

// completeAction transitions IN_PROGRESS -> DONE/FAILED, replacing the
// plan's tail with a rollback cascade when the action's own failure (or, for
// a check, a rejected verdict) calls for one.
func (e *Executor) completeAction(ctx context.Context, action plan.Action) (*plan.Plan, error) {
	switch action.Type {
	case plan.ActionRun:
		return e.completeRun(ctx, action)
	case plan.ActionCheck:
		return e.completeCheck(ctx, action)
	case plan.ActionRollback:
		return e.completeRollback(ctx, action)
	default:
		return nil, fmt.Errorf("action %s has unknown type", action.Address.String())
	}
}

func (e *Executor) completeRun(ctx context.Context, action plan.Action) (*plan.Plan, error) {
	step, ok := e.strat.Steps()[action.Address]
	if !ok {
		return nil, deployerrors.NewSpecNotFoundError(action.Address)
	}
	bound, err := step.Bind(action.ResolvedInputs)
	if err != nil {
		return nil, err
	}

	result, runErr := bound.Run(ctx, action.Snapshot)
	if runErr != nil {
		action.State = plan.StateFailed
		action.Err = deployerrors.NewStepError(action.Address, runErr)
		return e.cascade(e.idx, action), nil
	}

	action.State = plan.StateDone
	action.Result = result
	e.results[action.Address] = result
	return e.plan.WithAction(e.idx, action), nil
}

func (e *Executor) completeCheck(ctx context.Context, action plan.Action) (*plan.Plan, error) {
	check, ok := e.strat.Checks()[action.Address]
	if !ok {
		return nil, deployerrors.NewSpecNotFoundError(action.Address)
	}

	inputs, err := resolve.ResolveAll(e.strat.Dependencies(action.Address), e.results)
	if err != nil {
		return nil, err
	}
	bound, err := check.Bind(inputs)
	if err != nil {
		return nil, err
	}
	action.ResolvedInputs = inputs

	result, checkErr := bound.Check(ctx)
	var failed *deployerrors.FailedCheckError
	switch {
	case checkErr == nil:
		action.State = plan.StateDone
		action.Result = result
		e.results[action.Address] = result
		return e.plan.WithAction(e.idx, action), nil

	case asFailedCheck(checkErr, &failed):
		action.State = plan.StateDone
		action.Result = failed.Result
		e.results[action.Address] = failed.Result
		return e.cascade(e.idx, action), nil

	default:
		action.State = plan.StateFailed
		action.Err = deployerrors.NewStepError(action.Address, checkErr)
		return e.cascade(e.idx, action), nil
	}
}

func (e *Executor) completeRollback(ctx context.Context, action plan.Action) (*plan.Plan, error) {
	step, ok := e.strat.Steps()[action.Address]
	if !ok {
		return nil, deployerrors.NewSpecNotFoundError(action.Address)
	}
	bound, err := step.Bind(action.ResolvedInputs)
	if err != nil {
		return nil, err
	}

	if err := bound.Rollback(ctx, action.Snapshot); err != nil {
		action.State = plan.StateFailed
		action.Err = deployerrors.NewStepError(action.Address, err)
		return e.plan.WithAction(e.idx, action), nil
	}

	action.State = plan.StateDone
	return e.plan.WithAction(e.idx, action), nil
}

func asFailedCheck(err error, target **deployerrors.FailedCheckError) bool {
	fc, ok := err.(*deployerrors.FailedCheckError)
	if !ok {
		return false
	}
	*target = fc
	return true
}

// cascade replaces the plan's tail per spec.md §4.5: every still-PLANNED
// action past idx is cancelled, and every prior DONE RUN is unwound, in
// reverse completion order, as a freshly PLANNED ROLLBACK carrying the
// original run's preserved snapshot and resolved inputs.
func (e *Executor) cascade(idx int, failed plan.Action) *plan.Plan {
	actions := e.plan.Actions

	done := make([]plan.Action, idx+1)
	copy(done, actions[:idx])
	done[idx] = failed

	var cancelled []plan.Action
	for i := idx + 1; i < len(actions); i++ {
		a := actions[i]
		a.State = plan.StateCancelled
		cancelled = append(cancelled, a)
	}

	var rollbacks []plan.Action
	for i := idx; i >= 0; i-- {
		a := done[i]
		if a.Type == plan.ActionRun && a.State == plan.StateDone {
			rollbacks = append(rollbacks, plan.Action{
				Type:           plan.ActionRollback,
				Address:        a.Address,
				State:          plan.StatePlanned,
				Snapshot:       a.Snapshot,
				ResolvedInputs: a.ResolvedInputs,
			})
		}
	}

	next := make([]plan.Action, 0, len(done)+len(cancelled)+len(rollbacks))
	next = append(next, done...)
	next = append(next, cancelled...)
	next = append(next, rollbacks...)
	return &plan.Plan{Actions: next}
}

// Run pumps Next to completion, persisting every yielded snapshot before
// driving the next transition — the single-writer-before-next-step
// discipline the revision store's crash-recovery guarantee relies on.
func (e *Executor) Run(ctx context.Context, persist func(*plan.Plan) error) error {
	for {
		p, more, err := e.Next(ctx)
		if err != nil {
			return err
		}
		if p != nil && persist != nil {
			if err := persist(p); err != nil {
				return err
			}
		}
		if !more {
			return nil
		}
	}
}

