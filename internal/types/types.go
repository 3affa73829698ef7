package types

import (
	"fmt"
	"strings"
)

// TypeID identifies an interned type.
type TypeID uint32

// NoTypeID marks a missing type; consumers treat it as Err.
const NoTypeID TypeID = 0

// IsValid reports whether the ID refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates type shapes.
type Kind uint8

const (
	// KindErr is the error type: the type of anything that failed to
	// resolve or check. It silences cascading diagnostics.
	KindErr Kind = iota
	KindUnit
	KindInt
	KindDouble
	KindBool
	KindString
	KindTuple
	KindArrow
	// KindNamed is a user-declared newtype, identified by its item.
	KindNamed
)

// Type is one interned type node.
type Type struct {
	Kind  Kind
	Elems []TypeID // tuple elements
	Arg   TypeID   // arrow argument
	Ret   TypeID   // arrow result
	// Named identity: package + local item, flattened to avoid an hir import.
	NamedPackage uint32
	NamedItem    uint32
	NamedName    string
}

// Fixed IDs for the primitive types, allocated by NewInterner in this order.
const (
	ErrTypeID TypeID = iota + 1
	UnitTypeID
	IntTypeID
	DoubleTypeID
	BoolTypeID
	StringTypeID
)

// Interner deduplicates structural types behind stable IDs.
type Interner struct {
	byID  []Type
	index map[string]TypeID
}

func NewInterner() *Interner {
	in := &Interner{index: make(map[string]TypeID)}
	for _, k := range []Kind{KindErr, KindUnit, KindInt, KindDouble, KindBool, KindString} {
		in.intern(Type{Kind: k})
	}
	return in
}

func (in *Interner) key(t Type) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", t.Kind)
	for _, e := range t.Elems {
		fmt.Fprintf(&sb, ",%d", e)
	}
	fmt.Fprintf(&sb, ";%d;%d;%d.%d", t.Arg, t.Ret, t.NamedPackage, t.NamedItem)
	return sb.String()
}

func (in *Interner) intern(t Type) TypeID {
	k := in.key(t)
	if id, ok := in.index[k]; ok {
		return id
	}
	in.byID = append(in.byID, t)
	id := TypeID(len(in.byID))
	in.index[k] = id
	return id
}

// Tuple interns a tuple type. The empty tuple is Unit.
func (in *Interner) Tuple(elems []TypeID) TypeID {
	if len(elems) == 0 {
		return UnitTypeID
	}
	return in.intern(Type{Kind: KindTuple, Elems: elems})
}

// Arrow interns a callable type arg -> ret.
func (in *Interner) Arrow(arg, ret TypeID) TypeID {
	return in.intern(Type{Kind: KindArrow, Arg: arg, Ret: ret})
}

// Named interns a newtype reference.
func (in *Interner) Named(pkg, item uint32, name string) TypeID {
	return in.intern(Type{Kind: KindNamed, NamedPackage: pkg, NamedItem: item, NamedName: name})
}

// Get returns the type for id; NoTypeID and out-of-range IDs yield Err.
func (in *Interner) Get(id TypeID) Type {
	if !id.IsValid() || int(id) > len(in.byID) {
		return Type{Kind: KindErr}
	}
	return in.byID[id-1]
}

// String renders a type for diagnostics.
func (in *Interner) String(id TypeID) string {
	t := in.Get(id)
	switch t.Kind {
	case KindUnit:
		return "Unit"
	case KindInt:
		return "Int"
	case KindDouble:
		return "Double"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindTuple:
		parts := make([]string, 0, len(t.Elems))
		for _, e := range t.Elems {
			parts = append(parts, in.String(e))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindArrow:
		return "(" + in.String(t.Arg) + " -> " + in.String(t.Ret) + ")"
	case KindNamed:
		return t.NamedName
	default:
		return "?"
	}
}
