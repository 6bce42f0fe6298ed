package specs

// Base carries the fields every spec kind shares: a human identifier and
// the extra ordering edges declared via `after`. Concrete spec
// implementations embed Base and supply SpecName()/Dependencies()
// themselves, mirroring how the teacher's config.Step carries common
// fields (ID, DependsOn) alongside each step-type's own inline struct.
type Base struct {
	Name       string
	AfterAddrs []string
}

// After returns the extra ordering edges, as address literals, declared on
// this spec.
func (b Base) After() []string {
	return append([]string(nil), b.AfterAddrs...)
}

// SpecName returns the identifier used in diagnostics and addressing.
func (b Base) SpecName() string {
	return b.Name
}
