// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package types

// Env resolves declared type names to lattice types and decides the
// subtype and meet relations that need name resolution (record fields).
// The primitives "number" and "symbol" are always declared.
type Env struct {
	resolved map[string]Type
	// unions that failed to resolve (mixed kinds, undeclared or cyclic
	// elements); lookups return nil for them and Valid() is false.
	broken map[string]bool

	kinds  map[string]Kind
	unions map[string][]string
}

// NewEnv returns an environment with only the primitives declared.
func NewEnv() *Env {
	return &Env{
		resolved: map[string]Type{
			"number": N,
			"symbol": S,
		},
		broken: map[string]bool{},
		kinds:  map[string]Kind{"number": Number, "symbol": Symbol},
		unions: map[string][]string{},
	}
}

// DeclareBase declares a fresh base type under the given kind.
func (env *Env) DeclareBase(name string, kind Kind) {
	if _, ok := env.resolved[name]; ok {
		return
	}
	env.resolved[name] = NewUnion(name, kind, name)
	env.kinds[name] = kind
}

// DeclareUnion declares a union over previously or later declared element
// type names. Resolution happens on first lookup.
func (env *Env) DeclareUnion(name string, elements []string) {
	if _, ok := env.resolved[name]; ok {
		return
	}
	env.unions[name] = elements
}

// DeclareRecord declares a record type with the given fields.
func (env *Env) DeclareRecord(name string, fields []Field) {
	if _, ok := env.resolved[name]; ok {
		return
	}
	env.resolved[name] = &RecordType{Name: name, Fields: fields}
	env.kinds[name] = Record
}

// IsDeclared reports whether name is a known type name.
func (env *Env) IsDeclared(name string) bool {
	if _, ok := env.resolved[name]; ok {
		return true
	}
	_, ok := env.unions[name]
	return ok
}

// Lookup resolves a type name, returning nil for undeclared names and for
// declarations that cannot be resolved (mixed-kind or cyclic unions).
func (env *Env) Lookup(name string) Type {
	if t, ok := env.resolved[name]; ok {
		return t
	}
	if env.broken[name] {
		return nil
	}
	if _, ok := env.unions[name]; ok {
		return env.resolveUnion(name, map[string]bool{})
	}
	return nil
}

// Valid reports whether every declared name resolves.
func (env *Env) Valid() bool {
	for name := range env.unions {
		env.Lookup(name)
	}
	return len(env.broken) == 0
}

// resolveUnion flattens a union declaration to its closure of base names.
// A union element that is itself the primitive "number" or "symbol" widens
// the closure to the whole kind.
func (env *Env) resolveUnion(name string, visiting map[string]bool) Type {
	if visiting[name] {
		env.broken[name] = true
		return nil
	}
	visiting[name] = true
	defer delete(visiting, name)

	kind := NoKind
	wholeKind := false
	bases := map[string]bool{}

	for _, elem := range env.unions[name] {
		var elemType Type
		if t, ok := env.resolved[elem]; ok {
			elemType = t
		} else if _, ok := env.unions[elem]; ok {
			elemType = env.resolveUnion(elem, visiting)
		}
		if elemType == nil {
			env.broken[name] = true
			return nil
		}
		elemKind := KindOf(elemType)
		if kind == NoKind {
			kind = elemKind
		} else if kind != elemKind {
			env.broken[name] = true
			return nil
		}
		switch t := elemType.(type) {
		case Primitive:
			wholeKind = true
		case *Union:
			for b := range t.Bases {
				bases[b] = true
			}
		default:
			// records cannot participate in unions
			env.broken[name] = true
			return nil
		}
	}

	var resolved Type
	if wholeKind {
		resolved = Primitive{kind}
	} else {
		u := &Union{Name: name, Kind: kind, Bases: bases}
		resolved = u
	}
	env.resolved[name] = resolved
	env.kinds[name] = kind
	return resolved
}

// Subtype reports whether a is a subtype of b.
func (env *Env) Subtype(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	if _, ok := b.(Any); ok {
		return true
	}
	if _, ok := a.(Bottom); ok {
		return true
	}
	if _, ok := a.(Any); ok {
		return false
	}
	if _, ok := b.(Bottom); ok {
		return false
	}
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	if _, ok := a.(BottomPrim); ok {
		return true
	}
	if _, ok := b.(BottomPrim); ok {
		return false
	}
	if _, ok := b.(Primitive); ok {
		return true
	}
	if _, ok := a.(Primitive); ok {
		return false
	}
	if _, ok := a.(Constant); ok {
		return true
	}
	if _, ok := b.(Constant); ok {
		return false
	}
	switch a := a.(type) {
	case *Union:
		b, ok := b.(*Union)
		if !ok {
			return false
		}
		for base := range a.Bases {
			if !b.Bases[base] {
				return false
			}
		}
		return true
	case *RecordType:
		b, ok := b.(*RecordType)
		if !ok {
			return false
		}
		return env.subRecord(a, b)
	}
	return false
}

// subRecord reports whether a extends b: b's fields are a prefix of a's
// with identical types.
func (env *Env) subRecord(a, b *RecordType) bool {
	if a.Name == b.Name {
		return true
	}
	if len(a.Fields) < len(b.Fields) {
		return false
	}
	for i, f := range b.Fields {
		if a.Fields[i].Type != f.Type {
			return false
		}
	}
	return true
}

// Meet returns the greatest lower bound of a and b.
func (env *Env) Meet(a, b Type) Type {
	if a == nil || b == nil {
		return Bottom{}
	}
	if _, ok := a.(Any); ok {
		return b
	}
	if _, ok := b.(Any); ok {
		return a
	}
	if _, ok := a.(Bottom); ok {
		return a
	}
	if _, ok := b.(Bottom); ok {
		return b
	}
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return Bottom{}
	}
	if env.Subtype(a, b) {
		return a
	}
	if env.Subtype(b, a) {
		return b
	}
	ua, aIsUnion := a.(*Union)
	ub, bIsUnion := b.(*Union)
	if aIsUnion && bIsUnion {
		common := map[string]bool{}
		for base := range ua.Bases {
			if ub.Bases[base] {
				common[base] = true
			}
		}
		if len(common) == 0 {
			return BottomPrim{ka}
		}
		bases := make([]string, 0, len(common))
		for base := range common {
			bases = append(bases, base)
		}
		return NewUnion("", ka, bases...)
	}
	return BottomPrim{ka}
}

// Join returns the least upper bound of a and b.
func (env *Env) Join(a, b Type) Type {
	if a == nil || b == nil {
		return A
	}
	if !Valid(a) {
		return b
	}
	if !Valid(b) {
		return a
	}
	if _, ok := a.(Any); ok {
		return a
	}
	if _, ok := b.(Any); ok {
		return b
	}
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return A
	}
	if env.Subtype(a, b) {
		return b
	}
	if env.Subtype(b, a) {
		return a
	}
	ua, aIsUnion := a.(*Union)
	ub, bIsUnion := b.(*Union)
	if aIsUnion && bIsUnion {
		bases := make([]string, 0, len(ua.Bases)+len(ub.Bases))
		for base := range ua.Bases {
			bases = append(bases, base)
		}
		for base := range ub.Bases {
			bases = append(bases, base)
		}
		return NewUnion("", ka, bases...)
	}
	return Primitive{ka}
}
