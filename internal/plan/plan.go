// Package plan defines the immutable Plan/Action value types shared by the
// planner, executor, and revision store. Every state transition produces a
// new Plan value; nothing here mutates in place.
package plan

import "deploystrat/internal/addr"

// ActionType describes what kind of operation an action performs.
type ActionType int

const (
	ActionRun ActionType = iota
	ActionCheck
	ActionRollback
)

func (t ActionType) String() string {
	switch t {
	case ActionRun:
		return "RUN"
	case ActionCheck:
		return "CHECK"
	case ActionRollback:
		return "ROLLBACK"
	default:
		return "UNKNOWN"
	}
}

// ActionState describes where an action is in its lifecycle.
type ActionState int

const (
	StatePlanned ActionState = iota
	StateInProgress
	StateDone
	StateFailed
	StateCancelled
)

func (s ActionState) String() string {
	switch s {
	case StatePlanned:
		return "PLANNED"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Action is a single planned or in-flight operation bound to an address.
//
// ResolvedInputs captures, for a RUN action that has reached DONE, the
// concrete dependency values it ran with. Rollback cascades rebind the step
// against these frozen values instead of the (possibly since-mutated)
// live results map — see DESIGN.md's Open Question (a) decision.
type Action struct {
	Type           ActionType
	Address        addr.Address
	State          ActionState
	Snapshot       any
	ResolvedInputs map[string]any
	Result         any
	Err            error
}

// Plan is an immutable ordered sequence of actions. Clone returns a deep
// enough copy that mutating the result's Actions slice or its elements
// never affects the receiver.
type Plan struct {
	Actions []Action
}

// Clone returns a new Plan with a freshly allocated Actions slice; Action
// values are copied by value (they hold no slices that are mutated after
// construction other than through a fresh Clone).
func (p *Plan) Clone() *Plan {
	if p == nil {
		return &Plan{}
	}
	actions := make([]Action, len(p.Actions))
	copy(actions, p.Actions)
	return &Plan{Actions: actions}
}

// WithAction returns a new Plan with the action at idx replaced.
func (p *Plan) WithAction(idx int, a Action) *Plan {
	next := p.Clone()
	next.Actions[idx] = a
	return next
}
