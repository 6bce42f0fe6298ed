package specs

import "deploystrat/internal/addr"

// ShapeKind tags the variant held by a Shape value.
type ShapeKind int

const (
	// ShapeAddr is a single address leaf, either already resolved to a
	// concrete Address or still carrying a literal string awaiting
	// resolution against a base path.
	ShapeAddr ShapeKind = iota
	// ShapeMap is a mapping from string key to nested Shape.
	ShapeMap
	// ShapeSeq is an ordered sequence of nested Shapes.
	ShapeSeq
	// ShapeSet is an unordered collection of nested Shapes.
	ShapeSet
	// ShapeRecord is a product type of named nested Shapes.
	ShapeRecord
	// ShapeInline is a concrete, non-addressable value stored verbatim.
	ShapeInline
)

// Shape is the tagged union used to describe the dependency structure of a
// spec's field: the same shape the field's declared type imposes, but with
// addresses in place of concrete values. A sum type (union) is collapsed
// into one of the other kinds at construction time by whichever spec
// implementation builds the Shape, per the edge-extraction rule that picks
// the first branch whose addressable variant coerces.
type Shape struct {
	Kind ShapeKind

	// ShapeAddr
	AddrLiteral string
	Addr        *addr.Address

	// ShapeSeq / ShapeSet
	Items []Shape

	// ShapeMap
	Entries map[string]Shape

	// ShapeRecord
	Fields map[string]Shape

	// ShapeInline
	Value any
}

// AddrRef builds an unresolved address leaf from a literal string (relative
// or absolute); the strategy builder resolves it against the registering
// spec's base path.
func AddrRef(literal string) Shape {
	return Shape{Kind: ShapeAddr, AddrLiteral: literal}
}

// ResolvedAddr builds an address leaf that is already a concrete Address.
func ResolvedAddr(a addr.Address) Shape {
	return Shape{Kind: ShapeAddr, Addr: &a}
}

// Seq builds an ordered sequence shape from its element shapes.
func Seq(items ...Shape) Shape {
	return Shape{Kind: ShapeSeq, Items: items}
}

// Set builds an unordered collection shape from its element shapes.
func Set(items ...Shape) Shape {
	return Shape{Kind: ShapeSet, Items: items}
}

// MapOf builds a mapping shape from key to nested shape.
func MapOf(entries map[string]Shape) Shape {
	return Shape{Kind: ShapeMap, Entries: entries}
}

// Record builds a product-type shape from named nested shapes.
func Record(fields map[string]Shape) Shape {
	return Shape{Kind: ShapeRecord, Fields: fields}
}

// Inline wraps a concrete, non-addressable value: stored verbatim, never a
// dependency edge.
func Inline(v any) Shape {
	return Shape{Kind: ShapeInline, Value: v}
}
