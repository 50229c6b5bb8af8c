package cnd

// TokenKind classifies a lexical token.
type TokenKind int

const (
	// TokenEOF marks the end of input.
	TokenEOF TokenKind = iota

	// TokenString is a quoted or unquoted string.
	TokenString

	// Single-character symbols.
	TokenLAngle   // "<"
	TokenRAngle   // ">"
	TokenEquals   // "="
	TokenLBracket // "["
	TokenRBracket // "]"
	TokenDash     // "-"
	TokenPlus     // "+"
	TokenLParen   // "("
	TokenRParen   // ")"
	TokenComma    // ","
	TokenStar     // "*"
	TokenBang     // "!"
)

// String returns a human-readable representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return "string"
	case TokenLAngle:
		return `"<"`
	case TokenRAngle:
		return `">"`
	case TokenEquals:
		return `"="`
	case TokenLBracket:
		return `"["`
	case TokenRBracket:
		return `"]"`
	case TokenDash:
		return `"-"`
	case TokenPlus:
		return `"+"`
	case TokenLParen:
		return `"("`
	case TokenRParen:
		return `")"`
	case TokenComma:
		return `","`
	case TokenStar:
		return `"*"`
	case TokenBang:
		return `"!"`
	default:
		return "unknown"
	}
}

// Token is a lexical token with its source position.
type Token struct {
	Kind   TokenKind
	Text   string // literal text; symbol character for symbol tokens
	Quoted bool   // true when Text came from a quoted string
	Pos    Position
}

// symbolKind maps the single-character symbols of the grammar to their token
// kinds.
//
//nolint:gochecknoglobals
var symbolKind = map[byte]TokenKind{
	'<': TokenLAngle,
	'>': TokenRAngle,
	'=': TokenEquals,
	'[': TokenLBracket,
	']': TokenRBracket,
	'-': TokenDash,
	'+': TokenPlus,
	'(': TokenLParen,
	')': TokenRParen,
	',': TokenComma,
	'*': TokenStar,
	'!': TokenBang,
}

// PropertyType enumerates the required value types a property definition may
// declare. The zero value is TypeUndefined; the grammar's default when no
// type is declared is TypeString.
type PropertyType int

const (
	TypeUndefined PropertyType = iota
	TypeString
	TypeBinary
	TypeLong
	TypeDouble
	TypeBoolean
	TypeDate
	TypeName
	TypePath
	TypeReference
)

// String returns the canonical name of the property type.
func (t PropertyType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeBinary:
		return "Binary"
	case TypeLong:
		return "Long"
	case TypeDouble:
		return "Double"
	case TypeBoolean:
		return "Boolean"
	case TypeDate:
		return "Date"
	case TypeName:
		return "Name"
	case TypePath:
		return "Path"
	case TypeReference:
		return "Reference"
	case TypeUndefined:
		return "Undefined"
	default:
		return "Unknown"
	}
}

// propertyTypeAlias maps every accepted spelling of a property type keyword
// to its type. Comparison is case-sensitive: only the full-caps, capitalized,
// and lowercase families are recognized, plus "*" for undefined.
//
//nolint:gochecknoglobals
var propertyTypeAlias = map[string]PropertyType{
	"STRING": TypeString, "String": TypeString, "string": TypeString,
	"BINARY": TypeBinary, "Binary": TypeBinary, "binary": TypeBinary,
	"LONG": TypeLong, "Long": TypeLong, "long": TypeLong,
	"DOUBLE": TypeDouble, "Double": TypeDouble, "double": TypeDouble,
	"BOOLEAN": TypeBoolean, "Boolean": TypeBoolean, "boolean": TypeBoolean,
	"DATE": TypeDate, "Date": TypeDate, "date": TypeDate,
	"NAME": TypeName, "Name": TypeName, "name": TypeName,
	"PATH": TypePath, "Path": TypePath, "path": TypePath,
	"REFERENCE": TypeReference, "Reference": TypeReference, "reference": TypeReference,
	"UNDEFINED": TypeUndefined, "Undefined": TypeUndefined, "undefined": TypeUndefined,
	"*": TypeUndefined,
}

// OnParentVersion enumerates the on-parent-version actions. The zero value is
// the grammar's default, copy.
type OnParentVersion int

const (
	OPVCopy OnParentVersion = iota
	OPVVersion
	OPVInitialize
	OPVCompute
	OPVIgnore
	OPVAbort
)

// String returns the canonical (uppercase) name of the action.
func (o OnParentVersion) String() string {
	switch o {
	case OPVCopy:
		return "COPY"
	case OPVVersion:
		return "VERSION"
	case OPVInitialize:
		return "INITIALIZE"
	case OPVCompute:
		return "COMPUTE"
	case OPVIgnore:
		return "IGNORE"
	case OPVAbort:
		return "ABORT"
	default:
		return "UNKNOWN"
	}
}

// attrKind enumerates the member attribute keywords.
type attrKind int

const (
	attrNone attrKind = iota
	attrPrimary
	attrAutoCreated
	attrMandatory
	attrProtected
	attrMultiple
	attrCopy
	attrVersion
	attrInitialize
	attrCompute
	attrIgnore
	attrAbort
)

// attrAlias maps every accepted spelling of a member attribute to its kind.
// The symbolic forms "!" (primary) and "*" (multiple) arrive as their own
// token kinds and are folded in by the parser.
//
//nolint:gochecknoglobals
var attrAlias = map[string]attrKind{
	"primary": attrPrimary, "pri": attrPrimary,
	"autocreated": attrAutoCreated, "aut": attrAutoCreated, "a": attrAutoCreated,
	"mandatory": attrMandatory, "man": attrMandatory, "m": attrMandatory,
	"protected": attrProtected, "pro": attrProtected, "p": attrProtected,
	"multiple": attrMultiple, "mul": attrMultiple,
	"COPY": attrCopy, "Copy": attrCopy, "copy": attrCopy,
	"VERSION": attrVersion, "Version": attrVersion, "version": attrVersion,
	"INITIALIZE": attrInitialize, "Initialize": attrInitialize, "initialize": attrInitialize,
	"COMPUTE": attrCompute, "Compute": attrCompute, "compute": attrCompute,
	"IGNORE": attrIgnore, "Ignore": attrIgnore, "ignore": attrIgnore,
	"ABORT": attrAbort, "Abort": attrAbort, "abort": attrAbort,
}

// attrOnParentVersion maps the on-parent-version attribute kinds to their
// actions.
//
//nolint:gochecknoglobals
var attrOnParentVersion = map[attrKind]OnParentVersion{
	attrCopy:       OPVCopy,
	attrVersion:    OPVVersion,
	attrInitialize: OPVInitialize,
	attrCompute:    OPVCompute,
	attrIgnore:     OPVIgnore,
	attrAbort:      OPVAbort,
}

// Node type option keyword spellings.
//
//nolint:gochecknoglobals
var (
	orderableAlias = map[string]bool{"orderable": true, "ord": true, "o": true}
	mixinAlias     = map[string]bool{"mixin": true, "mix": true, "m": true}
)
