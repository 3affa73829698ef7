package diag

// Code identifies a diagnostic kind. The thousands digit encodes the phase
// that produced it, so one Bag can carry every phase's output and still be
// split by origin.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexInterpolationOff   Code = 1004

	// Syntax
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectIdentifier  Code = 2002
	SynExpectItem        Code = 2003
	SynExpectType        Code = 2004
	SynExpectExpression  Code = 2005
	SynUnclosedDelimiter Code = 2006
	SynExpectSemicolon   Code = 2007
	SynExpectAlias       Code = 2008
	SynBadAttribute      Code = 2009
	SynEmptyNamespace    Code = 2010 // reserved
	SynMalformedItem     Code = 2011

	// Resolution
	ResInfo             Code = 3000
	ResNotFound         Code = 3001
	ResAmbiguous        Code = 3002
	ResAmbiguousPrelude Code = 3003
	ResDropped          Code = 3004
	ResDuplicate        Code = 3005
	ResNotAValue        Code = 3006
	ResExportNotFound   Code = 3007

	// Typing
	TypeInfo              Code = 4000
	TypeMismatch          Code = 4001
	TypeUnresolved        Code = 4002
	TypeWrongArity        Code = 4003
	TypeNotCallable       Code = 4004
	TypeUnknownAnnotation Code = 4005

	// Lowering / HIR validation
	LowInfo          Code = 5000
	LowMalformedHir  Code = 5001
	LowMissingParent Code = 5002

	// I/O and project
	IOLoadFileError     Code = 6001
	ProjDuplicateDep    Code = 6101
	ProjMissingDep      Code = 6102
	ProjBadManifest     Code = 6103
	ProjDependencyOrder Code = 6104
)

// Phase names the pipeline stage a diagnostic originated from.
type Phase uint8

const (
	PhaseOther Phase = iota
	PhaseParse
	PhaseResolve
	PhaseType
	PhaseLower
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseResolve:
		return "resolve"
	case PhaseType:
		return "type"
	case PhaseLower:
		return "lower"
	default:
		return "other"
	}
}

// Phase derives the originating phase from the code range.
func (c Code) Phase() Phase {
	switch {
	case c >= 1000 && c < 3000:
		return PhaseParse
	case c >= 3000 && c < 4000:
		return PhaseResolve
	case c >= 4000 && c < 5000:
		return PhaseType
	case c >= 5000 && c < 6000:
		return PhaseLower
	default:
		return PhaseOther
	}
}

var codeNames = map[Code]string{
	UnknownCode:           "QLL0000",
	LexInfo:               "QLL1000",
	LexUnknownChar:        "QLL1001",
	LexUnterminatedString: "QLL1002",
	LexBadNumber:          "QLL1003",
	LexInterpolationOff:   "QLL1004",
	SynInfo:               "QLL2000",
	SynUnexpectedToken:    "QLL2001",
	SynExpectIdentifier:   "QLL2002",
	SynExpectItem:         "QLL2003",
	SynExpectType:         "QLL2004",
	SynExpectExpression:   "QLL2005",
	SynUnclosedDelimiter:  "QLL2006",
	SynExpectSemicolon:    "QLL2007",
	SynExpectAlias:        "QLL2008",
	SynBadAttribute:       "QLL2009",
	SynEmptyNamespace:     "QLL2010",
	SynMalformedItem:      "QLL2011",
	ResInfo:               "QLL3000",
	ResNotFound:           "QLL3001",
	ResAmbiguous:          "QLL3002",
	ResAmbiguousPrelude:   "QLL3003",
	ResDropped:            "QLL3004",
	ResDuplicate:          "QLL3005",
	ResNotAValue:          "QLL3006",
	ResExportNotFound:     "QLL3007",
	TypeInfo:              "QLL4000",
	TypeMismatch:          "QLL4001",
	TypeUnresolved:        "QLL4002",
	TypeWrongArity:        "QLL4003",
	TypeNotCallable:       "QLL4004",
	TypeUnknownAnnotation: "QLL4005",
	LowInfo:               "QLL5000",
	LowMalformedHir:       "QLL5001",
	LowMissingParent:      "QLL5002",
	IOLoadFileError:       "QLL6001",
	ProjDuplicateDep:      "QLL6101",
	ProjMissingDep:        "QLL6102",
	ProjBadManifest:       "QLL6103",
	ProjDependencyOrder:   "QLL6104",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "QLL????"
}
