package compile

import (
	"fmt"

	"quill/internal/hir"
)

// PackageStore owns the compiled units of one session in dependency order.
// Ids are handed out append-only: a unit may only be inserted when its id
// equals the store's next expected id, which is what makes cross-package
// item ids meaningful without any locking.
type PackageStore struct {
	units []*CompileUnit
}

func NewPackageStore() *PackageStore {
	return &PackageStore{}
}

// NextID returns the id the next inserted unit must carry.
func (s *PackageStore) NextID() hir.PackageID {
	return hir.PackageID(len(s.units) + 1)
}

// Insert appends a unit. The unit's id not matching NextID is a caller bug,
// not a user error, and panics.
func (s *PackageStore) Insert(unit *CompileUnit) hir.PackageID {
	if unit.ID != s.NextID() {
		panic(fmt.Sprintf("compile: inserting package %d, store expects %d", unit.ID, s.NextID()))
	}
	s.units = append(s.units, unit)
	return unit.ID
}

// Get returns the unit with the given id, or nil.
func (s *PackageStore) Get(id hir.PackageID) *CompileUnit {
	if !id.IsValid() || int(id) > len(s.units) {
		return nil
	}
	return s.units[id-1]
}

// Core returns the core-library unit, or nil if none was compiled yet.
func (s *PackageStore) Core() *CompileUnit {
	return s.Get(hir.CorePackageID)
}

// Len returns the number of units in the store.
func (s *PackageStore) Len() int {
	return len(s.units)
}

// Units returns the units in insertion order. READONLY.
func (s *PackageStore) Units() []*CompileUnit {
	return s.units
}

// Open inserts an empty placeholder unit at the next id and returns the
// store with that unit open for in-place mutation. Incremental callers (an
// editor session) fill and refill the placeholder repeatedly; nothing
// compiled before it is ever renumbered. The wrapped store stays usable for
// lookups.
func (s *PackageStore) Open() *OpenPackageStore {
	unit := &CompileUnit{ID: s.NextID()}
	s.Insert(unit)
	return &OpenPackageStore{store: s, open: unit.ID}
}

// OpenPackageStore is a PackageStore with its placeholder unit open for
// mutation.
type OpenPackageStore struct {
	store *PackageStore
	open  hir.PackageID
}

// Get returns the unit with the given id, or nil.
func (o *OpenPackageStore) Get(id hir.PackageID) *CompileUnit {
	return o.store.Get(id)
}

// GetOpenMut returns the open unit. Callers fill it, re-run phases against
// it, and may keep mutating it in place; the unit's assigner guarantees new
// nodes never collide with existing ids.
func (o *OpenPackageStore) GetOpenMut() *CompileUnit {
	return o.store.Get(o.open)
}
