// Package resolve turns a declared Shape into a concrete value by
// substituting every address leaf with its entry from the planner/executor's
// running results map, projecting attribute paths with reflect the way the
// teacher's internal/config value-interpolation step walks nested structs.
package resolve

import (
	"reflect"
	"strings"

	"deploystrat/internal/addr"
	"deploystrat/internal/deployerrors"
	"deploystrat/internal/specs"
)

// Resolve walks shape, substituting every address leaf with its value from
// results. ShapeInline values are returned verbatim. Collections resolve
// their elements recursively and preserve Seq order; ShapeSet deduplicates
// nothing on its own (the caller's spec decides what "set" means for its
// domain) but resolves the same way a Seq does.
func Resolve(shape specs.Shape, results map[addr.Address]any) (any, error) {
	switch shape.Kind {
	case specs.ShapeAddr:
		return resolveAddr(shape, results)

	case specs.ShapeSeq, specs.ShapeSet:
		out := make([]any, len(shape.Items))
		for i, item := range shape.Items {
			v, err := Resolve(item, results)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case specs.ShapeMap:
		out := make(map[string]any, len(shape.Entries))
		for k, v := range shape.Entries {
			resolved, err := Resolve(v, results)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil

	case specs.ShapeRecord:
		out := make(map[string]any, len(shape.Fields))
		for k, v := range shape.Fields {
			resolved, err := Resolve(v, results)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil

	case specs.ShapeInline:
		return shape.Value, nil

	default:
		return nil, deployerrors.NewInvalidAddressError("", "unknown shape kind")
	}
}

// ResolveAll resolves every entry of a dependency shape map, as used by the
// planner to test whether a node's inputs are fully satisfied and by the
// executor to build the bound arguments passed to Bind.
func ResolveAll(deps map[string]specs.Shape, results map[addr.Address]any) (map[string]any, error) {
	out := make(map[string]any, len(deps))
	for name, shape := range deps {
		v, err := Resolve(shape, results)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func resolveAddr(shape specs.Shape, results map[addr.Address]any) (any, error) {
	if shape.Addr == nil {
		return nil, deployerrors.NewInvalidAddressError(shape.AddrLiteral, "address leaf was never resolved against a base")
	}
	a := *shape.Addr
	id := a.Identity()
	v, ok := results[id]
	if !ok {
		return nil, deployerrors.NewUnresolvableAddressError(id)
	}
	if len(a.AttrPath()) == 0 {
		return v, nil
	}
	return projectAttr(a, v)
}

// projectAttr walks a dotted attribute path into v, supporting struct fields
// (by name) and map entries (by string key) at each segment.
func projectAttr(a addr.Address, v any) (any, error) {
	cur := reflect.ValueOf(v)
	for _, segment := range a.AttrPath() {
		for cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface {
			if cur.IsNil() {
				return nil, deployerrors.NewInvalidAttributeError(a, a.Attr)
			}
			cur = cur.Elem()
		}

		switch cur.Kind() {
		case reflect.Struct:
			field := cur.FieldByName(segment)
			if !field.IsValid() {
				field = fieldByCaseInsensitiveName(cur, segment)
			}
			if !field.IsValid() {
				return nil, deployerrors.NewInvalidAttributeError(a, a.Attr)
			}
			cur = field

		case reflect.Map:
			key := reflect.ValueOf(segment)
			if cur.Type().Key().Kind() != reflect.String {
				return nil, deployerrors.NewInvalidAttributeError(a, a.Attr)
			}
			entry := cur.MapIndex(key.Convert(cur.Type().Key()))
			if !entry.IsValid() {
				return nil, deployerrors.NewInvalidAttributeError(a, a.Attr)
			}
			cur = entry

		default:
			return nil, deployerrors.NewInvalidAttributeError(a, a.Attr)
		}
	}
	return cur.Interface(), nil
}

func fieldByCaseInsensitiveName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
