// Package hir holds the fully name-resolved, uniquely-numbered intermediate
// representation produced by lowering, plus the cross-package identities the
// resolver assigns. Every node carries an id from one Assigner, so a node can
// be referenced from any later pass or tool without walking the tree.
package hir

import (
	"quill/internal/ast"
)

// PackageID identifies one compiled package inside a PackageStore.
// NoPackageID means "this package": item references stay package-relative
// until they cross a package boundary.
type PackageID uint32

const (
	// NoPackageID marks a reference into the package being compiled.
	NoPackageID PackageID = 0
	// CorePackageID is the reserved id of the core library.
	CorePackageID PackageID = 1
)

// IsValid reports whether the id names a concrete package.
func (id PackageID) IsValid() bool { return id != NoPackageID }

// LocalItemID identifies an item within one package. IDs are
// successor-generated during global binding and never reused.
type LocalItemID uint32

// NoLocalItemID marks the absence of an item reference.
const NoLocalItemID LocalItemID = 0

func (id LocalItemID) IsValid() bool { return id != NoLocalItemID }

// Successor returns the next local item id.
func (id LocalItemID) Successor() LocalItemID { return id + 1 }

// ItemID is a globally unique item reference.
type ItemID struct {
	Package PackageID
	Item    LocalItemID
}

// In pins a package-relative ItemID to a concrete package. Already-pinned
// references are returned unchanged.
func (id ItemID) In(pkg PackageID) ItemID {
	if !id.Package.IsValid() {
		id.Package = pkg
	}
	return id
}

// NodeID identifies one HIR node. The zero value is the sentinel.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// Assigner hands out strictly increasing HIR node ids. It is always passed
// explicitly; callers that need id stability across passes must thread the
// same Assigner through each of them.
type Assigner struct {
	next NodeID
}

func NewAssigner() *Assigner {
	return &Assigner{next: 1}
}

// Next returns a fresh node id.
func (a *Assigner) Next() NodeID {
	id := a.next
	a.next++
	return id
}

// ResKind discriminates resolution outcomes.
type ResKind uint8

const (
	// ResErr marks a name that did not resolve to a value.
	ResErr ResKind = iota
	// ResItem is a reference to a top-level item.
	ResItem
	// ResLocal is a reference to a local binding, identified by the
	// binder's AST name node.
	ResLocal
	// ResPrim is a builtin primitive type name in type position.
	ResPrim
)

// PrimKind enumerates the builtin primitive type names.
type PrimKind uint8

const (
	PrimUnit PrimKind = iota
	PrimInt
	PrimDouble
	PrimBool
	PrimString
)

// Res is the resolution outcome for one name-usage AST node.
type Res struct {
	Kind  ResKind
	Item  ItemID
	Local ast.NameID
	Prim  PrimKind
}

// VarRef is a Res after node-id canonicalization: local references point at
// the binder's HIR node instead of its AST name.
type VarRef struct {
	Kind  ResKind
	Item  ItemID
	Local NodeID
}
