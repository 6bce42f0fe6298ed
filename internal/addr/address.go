// Package addr implements the canonical identity grammar for every node in
// a deployment strategy: a base path, a name, and an optional attribute
// projection.
package addr

import (
	"fmt"
	"regexp"
	"strings"
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// InvalidAddressError reports a malformed address string or an invalid
// name. Defined here (rather than in deployerrors) so the address grammar
// has no dependency on the wider error taxonomy; deployerrors re-exports it
// via a type alias to keep one error surface for callers.
type InvalidAddressError struct {
	Input  string
	Reason string
}

func NewInvalidAddressError(input, reason string) error {
	return &InvalidAddressError{Input: input, Reason: reason}
}

func (e *InvalidAddressError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("invalid address %q: %s", e.Input, e.Reason)
}

// Address identifies a spec node by (base, name) and optionally projects a
// dotted attribute path into the node's resolved value. Equality and
// hashing must only consider base and name; callers that need a map key
// should use Identity.
type Address struct {
	Base string
	Name string
	Attr string
}

// Identity returns the address stripped of its attribute projection, the
// form used for equality, hashing, and as a map key.
func (a Address) Identity() Address {
	return Address{Base: a.Base, Name: a.Name}
}

// Equal reports whether two addresses share the same identity, ignoring
// attribute projection.
func (a Address) Equal(other Address) bool {
	return a.Base == other.Base && a.Name == other.Name
}

// String renders the canonical absolute form: //base:name optionally
// suffixed with #attr.
func (a Address) String() string {
	s := fmt.Sprintf("//%s:%s", a.Base, a.Name)
	if a.Attr != "" {
		s += "#" + a.Attr
	}
	return s
}

// WithAttr returns a copy of the address projected onto the given attribute
// path.
func (a Address) WithAttr(attr string) Address {
	a.Attr = attr
	return a
}

// AttrPath splits the attribute into its dot-delimited components, or nil
// when the address carries no projection.
func (a Address) AttrPath() []string {
	if a.Attr == "" {
		return nil
	}
	return strings.Split(a.Attr, ".")
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	if strings.HasSuffix(name, "-") {
		return false
	}
	return namePattern.MatchString(name)
}

// Parse parses an address string relative to fromBase. Accepted forms:
//
//	:name[#attr]       relative, resolved against fromBase
//	//base:name[#attr] absolute (base may be empty for root, or contain slashes)
func Parse(fromBase, s string) (Address, error) {
	body := s
	attr := ""
	if idx := strings.Index(s, "#"); idx >= 0 {
		body = s[:idx]
		attr = s[idx+1:]
	}

	var base, name string
	switch {
	case strings.HasPrefix(body, "//"):
		rest := body[2:]
		colon := strings.LastIndex(rest, ":")
		if colon < 0 {
			return Address{}, NewInvalidAddressError(s, "absolute address missing ':'")
		}
		base = rest[:colon]
		name = rest[colon+1:]
	case strings.HasPrefix(body, ":"):
		base = fromBase
		name = body[1:]
	default:
		return Address{}, NewInvalidAddressError(s, "address must start with ':' or '//'")
	}

	if strings.HasSuffix(body, ":") {
		return Address{}, NewInvalidAddressError(s, "address has empty name")
	}

	if !validName(name) {
		return Address{}, NewInvalidAddressError(s, fmt.Sprintf("invalid name %q", name))
	}

	return Address{Base: base, Name: name, Attr: attr}, nil
}

// New constructs an Address directly from a base and name, applying the
// same name validation Parse does. Used by the strategy builder when it
// already knows the components and does not need to parse a literal
// string.
func New(base, name string) (Address, error) {
	if !validName(name) {
		return Address{}, NewInvalidAddressError(fmt.Sprintf("//%s:%s", base, name), fmt.Sprintf("invalid name %q", name))
	}
	return Address{Base: base, Name: name}, nil
}

// MustParse is Parse but panics on error; useful in tests and static
// registrations where the address is a compile-time literal.
func MustParse(fromBase, s string) Address {
	a, err := Parse(fromBase, s)
	if err != nil {
		panic(err)
	}
	return a
}
