// Package deployerrors collects the typed failures raised by the strategy
// graph, planner, resolver, and executor, following the same
// struct-per-kind / constructor / nil-safe Error() / Unwrap() shape used
// throughout this codebase's predecessor for its own error taxonomy.
package deployerrors

import (
	"fmt"
	"strings"

	"deploystrat/internal/addr"
)

// InvalidAddressError is re-exported from package addr: address parsing is
// self-contained and must not import this package, so the type lives there
// and is aliased here to keep one error surface for callers.
type InvalidAddressError = addr.InvalidAddressError

var NewInvalidAddressError = addr.NewInvalidAddressError

// UnresolvableAddressError reports a single address leaf missing from the
// results map at resolution time.
type UnresolvableAddressError struct {
	Address addr.Address
}

func NewUnresolvableAddressError(a addr.Address) error {
	return &UnresolvableAddressError{Address: a}
}

func (e *UnresolvableAddressError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unresolvable address: %s", e.Address.String())
}

// InvalidAttributeError reports a dotted attribute path that does not exist
// on the resolved value it was projected against.
type InvalidAttributeError struct {
	Address addr.Address
	Attr    string
}

func NewInvalidAttributeError(a addr.Address, attr string) error {
	return &InvalidAttributeError{Address: a, Attr: attr}
}

func (e *InvalidAttributeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid attribute %q on %s", e.Attr, e.Address.String())
}

// UnknownAddressesError reports that the planner's fixed-point loop made no
// progress while one or more addresses remained unresolvable.
type UnknownAddressesError struct {
	Addresses []addr.Address
}

func NewUnknownAddressesError(addrs []addr.Address) error {
	return &UnknownAddressesError{Addresses: addrs}
}

func (e *UnknownAddressesError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, len(e.Addresses))
	for i, a := range e.Addresses {
		parts[i] = a.String()
	}
	return fmt.Sprintf("cannot find addresses: %s", strings.Join(parts, ", "))
}

// SpecNotFoundError reports an action referring to an address with no
// registered spec. Fatal for execution.
type SpecNotFoundError struct {
	Address addr.Address
}

func NewSpecNotFoundError(a addr.Address) error {
	return &SpecNotFoundError{Address: a}
}

func (e *SpecNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("spec not found: %s", e.Address.String())
}

// FailedCheckError is raised by a check's implementation to reject a
// deployment. A Check hook returns it directly — it has no address of its
// own to report, since the executor already knows which action is running
// it. The executor converts it into a DONE action carrying the check's
// verdict in Result, rather than propagating it as an error.
type FailedCheckError struct {
	Result any
}

func NewFailedCheckError(result any) error {
	return &FailedCheckError{Result: result}
}

func (e *FailedCheckError) Error() string {
	if e == nil {
		return ""
	}
	return "check failed"
}

// StepError wraps any other error raised by a step or check hook. The
// executor marks the action FAILED, stores the error payload, and triggers
// the rollback cascade.
type StepError struct {
	Address addr.Address
	Err     error
}

func NewStepError(a addr.Address, err error) error {
	return &StepError{Address: a, Err: err}
}

func (e *StepError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("step error at %s: %v", e.Address.String(), e.Err)
}

func (e *StepError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
