package ast

type (
	// top-level node identifiers
	NamespaceID uint32
	ItemID      uint32
	StmtID      uint32
	ExprID      uint32
	PatID       uint32
	TypeID      uint32
	// sub-entities
	NameID       NodeID
	StringPartID uint32
	FnParamID    uint32
	AttrID       uint32
)

// NodeID is the unified identifier space for name-bearing AST nodes.
// Every identifier occurrence (item names, namespace names, path usages,
// pattern binders) allocates one Name node, and resolution results are keyed
// by its NodeID.
type NodeID uint32

const (
	NoNamespaceID  NamespaceID  = 0
	NoItemID       ItemID       = 0
	NoStmtID       StmtID       = 0
	NoExprID       ExprID       = 0
	NoPatID        PatID        = 0
	NoTypeID       TypeID       = 0
	NoNameID       NameID       = 0
	NoStringPartID StringPartID = 0
	NoFnParamID    FnParamID    = 0
	NoAttrID       AttrID       = 0
	NoNodeID       NodeID       = 0
)

func (id NamespaceID) IsValid() bool  { return id != NoNamespaceID }
func (id ItemID) IsValid() bool       { return id != NoItemID }
func (id StmtID) IsValid() bool       { return id != NoStmtID }
func (id ExprID) IsValid() bool       { return id != NoExprID }
func (id PatID) IsValid() bool        { return id != NoPatID }
func (id TypeID) IsValid() bool       { return id != NoTypeID }
func (id NameID) IsValid() bool       { return id != NoNameID }
func (id StringPartID) IsValid() bool { return id != NoStringPartID }
func (id FnParamID) IsValid() bool    { return id != NoFnParamID }
func (id AttrID) IsValid() bool       { return id != NoAttrID }
func (id NodeID) IsValid() bool       { return id != NoNodeID }
