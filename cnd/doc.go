// Package cnd compiles compact node type definitions into fully-resolved
// node type records. A hand-written lexer and recursive descent parser walk
// the source in a single pass with one token of lookahead; the first error
// aborts the parse, so a successful result is always complete.
//
// # Grammar
//
// Informal EBNF:
//
//	Cnd          → (Namespace | NodeType)* EOF
//	Namespace    → '<' String '=' String '>'
//	NodeType     → '[' String ']' Supertypes? Options Member*
//	Supertypes   → '>' String (',' String)*
//	Options      → 'orderable'? 'mixin'? | 'mixin'? 'orderable'?
//	Member       → Property | ChildNode
//	Property     → '-' MemberName Type? Defaults? Attribute* Constraints?
//	ChildNode    → '+' MemberName ReqTypes? DefaultType? Attribute*
//	MemberName   → String | '*'
//	Type         → '(' String ')'
//	Defaults     → '=' String (',' String)*
//	Constraints  → '<' String (',' String)*
//	ReqTypes     → '(' String (',' String)* ')'
//	DefaultType  → '=' String
//	Attribute    → 'autocreated' | 'mandatory' | 'protected' | 'multiple'
//	             | 'primary' | '!' | '*' | OnParentVersion
//
// Strings are either unquoted runs of [A-Za-z0-9:_] or single-quoted with
// backslash escapes. Comments use '//' to end of line or '/* ... */'. Most
// keywords accept short aliases, e.g. 'ord' and 'o' for 'orderable', 'man'
// and 'm' for 'mandatory', and lowercase or capitalized property type names.
//
// # Example
//
//	<ex='http://example.com/ns'>
//
//	[ex:file] > nt:hierarchyNode orderable
//	  - ex:encoding (String) = 'utf-8' mandatory < '.*'
//	  - ex:size (Long) < '[0,]'
//	  + ex:content (nt:unstructured) = nt:unstructured mandatory VERSION
//
// # Names
//
// Every name in the source is prefixed; the compiler resolves prefixes to
// namespace URIs as it reads, so records never contain prefixes. The tables
// start with the built-in bindings (jcr, nt, mix, sv, xml, and the empty
// prefix) and grow with each declaration. Rebinding a prefix to a different
// URI is an error.
//
// # Errors
//
// Errors are classified by sentinel (ErrLex, ErrGrammar, ErrResolve,
// ErrValue, ErrSemantic) and carry the 1-based line and column where they
// occurred. ParseString wraps them in a SourceError that renders the
// offending line with a caret marker.
package cnd
