package cnd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"
)

// Result is the output of a successful compilation: the node type records
// in declaration order and the prefix table with every declared mapping.
type Result struct {
	NodeTypes  []NodeTypeDefinition
	Namespaces *Namespaces
}

// Option configures a parse.
type Option func(*parser)

// WithSystemID sets the display name used when rendering errors, typically
// the path of the source file.
func WithSystemID(id string) Option {
	return func(p *parser) { p.systemID = id }
}

// WithNamespaces seeds the parse with a copy of the given prefix table
// instead of the built-in bindings alone.
func WithNamespaces(ns *Namespaces) Option {
	return func(p *parser) {
		p.ns = ns.Clone()
		p.seeded = true
	}
}

// WithLogger sets the logger used for parse tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

// ParseString compiles source text into node type records. The first error
// encountered aborts the parse; there is no recovery or resynchronization.
// Errors that carry a source position are returned wrapped in a
// SourceError so they render with the offending line.
func ParseString(ctx context.Context, source string, opts ...Option) (*Result, error) {
	p := newParser([]byte(source), opts...)

	res, err := p.parse(ctx)
	if err != nil {
		var ee *Error
		if errors.As(err, &ee) {
			return nil, NewSourceError(ee, source, p.systemID)
		}

		return nil, err
	}

	return res, nil
}

// ParseReader compiles source text from a reader. The reader is drained
// through an asynchronous read-ahead buffer before parsing begins.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	source, err := io.ReadAll(ra)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return ParseString(ctx, string(source), opts...)
}

// parser holds the single token of lookahead and the state accumulated
// while walking the grammar.
type parser struct {
	lex      *lexer
	tok      Token
	ns       *Namespaces
	seeded   bool
	types    []NodeTypeDefinition
	systemID string
	logger   *slog.Logger
}

func newParser(input []byte, opts ...Option) *parser {
	p := &parser{
		lex:    newLexer(input),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.ns == nil {
		p.ns = NewNamespaces()
	}

	return p
}

// advance replaces the lookahead token with the next one from the lexer.
func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// expect consumes the lookahead token if it has the given kind, and fails
// with the given grammar error message otherwise.
func (p *parser) expect(kind TokenKind, msg string) error {
	if p.tok.Kind != kind {
		return p.grammarErrorf("%s", msg)
	}

	return p.advance()
}

// grammarErrorf creates a grammar error at the lookahead token's position.
func (p *parser) grammarErrorf(format string, args ...any) *Error {
	return newErrorf(ErrGrammar, format, args...).WithPosition(p.tok.Pos)
}

func (p *parser) parse(ctx context.Context) (*Result, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.tok.Kind != TokenEOF {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch p.tok.Kind {
		case TokenLAngle:
			if err := p.parseNamespace(); err != nil {
				return nil, err
			}

		case TokenLBracket:
			if err := p.parseNodeType(); err != nil {
				return nil, err
			}

		default:
			return nil, p.grammarErrorf(
				"expected namespace declaration or node type definition, got %s",
				p.describeToken())
		}
	}

	return &Result{NodeTypes: p.types, Namespaces: p.ns}, nil
}

// describeToken renders the lookahead token for error messages.
func (p *parser) describeToken() string {
	if p.tok.Kind == TokenString {
		return fmt.Sprintf("'%s'", p.tok.Text)
	}

	return p.tok.Kind.String()
}

// parseNamespace handles a namespace declaration: "<" prefix "=" uri ">".
// Rebinding a declared prefix to a different URI is an error.
func (p *parser) parseNamespace() error {
	if err := p.advance(); err != nil { // "<"
		return err
	}

	if p.tok.Kind != TokenString {
		return p.grammarErrorf("missing prefix in namespace declaration")
	}

	prefix := p.tok.Text

	if err := p.advance(); err != nil {
		return err
	}

	if err := p.expect(TokenEquals, "missing = in namespace declaration"); err != nil {
		return err
	}

	if p.tok.Kind != TokenString {
		return p.grammarErrorf("missing uri in namespace declaration")
	}

	uri, pos := p.tok.Text, p.tok.Pos

	if err := p.advance(); err != nil {
		return err
	}

	if err := p.expect(TokenRAngle, "missing > in namespace declaration"); err != nil {
		return err
	}

	if err := p.ns.Declare(prefix, uri); err != nil {
		var ee *Error
		if errors.As(err, &ee) {
			return ee.WithPosition(pos)
		}

		return err
	}

	p.logger.Debug("declared namespace",
		slog.String("prefix", prefix), slog.String("uri", uri))

	return nil
}

// parseNodeType handles one complete node type definition.
func (p *parser) parseNodeType() error {
	def := NodeTypeDefinition{}

	raw, err := p.parseNodeTypeName(&def)
	if err != nil {
		return err
	}

	if err := p.parseSupertypes(&def); err != nil {
		return err
	}

	if err := p.parseOptions(&def); err != nil {
		return err
	}

	if err := p.parseMembers(&def, raw); err != nil {
		return err
	}

	p.types = append(p.types, def)

	p.logger.Debug("parsed node type",
		slog.String("name", def.Name.String()),
		slog.Int("properties", len(def.Properties)),
		slog.Int("childNodes", len(def.ChildNodes)))

	return nil
}

// parseNodeTypeName handles "[" name "]" and returns the raw source name
// for use in messages.
func (p *parser) parseNodeTypeName(def *NodeTypeDefinition) (string, error) {
	err := p.expect(TokenLBracket,
		"missing '[' delimiter for beginning of node type name")
	if err != nil {
		return "", err
	}

	if p.tok.Kind != TokenString {
		return "", p.grammarErrorf("missing node type name")
	}

	raw, pos := p.tok.Text, p.tok.Pos

	name, err := p.resolveAt(raw, pos)
	if err != nil {
		return "", err
	}

	def.Name = name

	if err := p.advance(); err != nil {
		return "", err
	}

	err = p.expect(TokenRBracket,
		"missing ']' delimiter for end of node type name")
	if err != nil {
		return "", err
	}

	return raw, nil
}

// parseSupertypes handles the optional ">" name {"," name} clause. A name
// declared more than once is kept every time it appears.
func (p *parser) parseSupertypes(def *NodeTypeDefinition) error {
	if p.tok.Kind != TokenRAngle {
		return nil
	}

	for {
		if err := p.advance(); err != nil { // ">" or ","
			return err
		}

		if p.tok.Kind != TokenString {
			return p.grammarErrorf("missing supertype name")
		}

		name, err := p.resolveAt(p.tok.Text, p.tok.Pos)
		if err != nil {
			return err
		}

		def.Supertypes = append(def.Supertypes, name)

		if err := p.advance(); err != nil {
			return err
		}

		if p.tok.Kind != TokenComma {
			return nil
		}
	}
}

// parseOptions handles the orderable and mixin keywords, in either order,
// at most once each.
func (p *parser) parseOptions(def *NodeTypeDefinition) error {
	for p.tok.Kind == TokenString {
		switch {
		case orderableAlias[p.tok.Text]:
			if def.Orderable {
				return p.grammarErrorf(
					"duplicate node type option '%s'", p.tok.Text)
			}

			def.Orderable = true

		case mixinAlias[p.tok.Text]:
			if def.Mixin {
				return p.grammarErrorf(
					"duplicate node type option '%s'", p.tok.Text)
			}

			def.Mixin = true

		default:
			return p.grammarErrorf(
				"unknown node type option '%s'", p.tok.Text)
		}

		if err := p.advance(); err != nil {
			return err
		}
	}

	return nil
}

// parseMembers handles the property and child node definitions of a node
// type, enforcing the one-primary-member rule across all of them.
func (p *parser) parseMembers(def *NodeTypeDefinition, rawName string) error {
	havePrimary := false

	for {
		switch p.tok.Kind {
		case TokenDash:
			if err := p.parseProperty(def, rawName, &havePrimary); err != nil {
				return err
			}

		case TokenPlus:
			if err := p.parseChildNode(def, rawName, &havePrimary); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

// parseMemberName handles a member name, which may be the residual "*".
func (p *parser) parseMemberName() (Name, error) {
	switch p.tok.Kind {
	case TokenStar:
		if err := p.advance(); err != nil {
			return Name{}, err
		}

		return ResidualName, nil

	case TokenString:
		raw, pos := p.tok.Text, p.tok.Pos

		if err := p.advance(); err != nil {
			return Name{}, err
		}

		if raw == "*" {
			return ResidualName, nil
		}

		return p.resolveAt(raw, pos)

	default:
		return Name{}, p.grammarErrorf(
			"missing member name, got %s", p.describeToken())
	}
}

// parseProperty handles "-" name ["(" type ")"] ["=" defaults] {attribute}
// ["<" constraints].
func (p *parser) parseProperty(def *NodeTypeDefinition, rawName string, havePrimary *bool) error {
	if err := p.advance(); err != nil { // "-"
		return err
	}

	prop := PropertyDefinition{
		DeclaringType:   def.Name,
		RequiredType:    TypeString,
		OnParentVersion: OPVCopy,
	}

	name, err := p.parseMemberName()
	if err != nil {
		return err
	}

	prop.Name = name

	if p.tok.Kind == TokenLParen {
		if err := p.parsePropertyType(&prop); err != nil {
			return err
		}
	}

	if p.tok.Kind == TokenEquals {
		if err := p.parseDefaultValues(&prop); err != nil {
			return err
		}
	}

	if err := p.parseAttributes(&memberAttrs{
		auto:      &prop.AutoCreated,
		mandatory: &prop.Mandatory,
		protected: &prop.Protected,
		multiple:  &prop.Multiple,
		primary:   &prop.Primary,
		opv:       &prop.OnParentVersion,
	}, rawName, havePrimary); err != nil {
		return err
	}

	if p.tok.Kind == TokenLAngle {
		if err := p.parseConstraints(&prop); err != nil {
			return err
		}
	}

	def.Properties = append(def.Properties, prop)

	return nil
}

// parsePropertyType handles "(" type ")".
func (p *parser) parsePropertyType(prop *PropertyDefinition) error {
	if err := p.advance(); err != nil { // "("
		return err
	}

	var text string

	switch p.tok.Kind {
	case TokenStar:
		text = "*"
	case TokenString:
		text = p.tok.Text
	default:
		return p.grammarErrorf("missing property type, got %s",
			p.describeToken())
	}

	t, ok := propertyTypeAlias[text]
	if !ok {
		msg := fmt.Sprintf("unknown property type '%s'", text)
		if hint := suggestPropertyType(text); hint != "" {
			msg += fmt.Sprintf(" (did you mean '%s'?)", hint)
		}

		return p.grammarErrorf("%s", msg)
	}

	prop.RequiredType = t

	if err := p.advance(); err != nil {
		return err
	}

	return p.expect(TokenRParen,
		"missing ')' delimiter for end of property type")
}

// parseDefaultValues handles "=" value {"," value}, converting each literal
// to the property's required type as it is read.
func (p *parser) parseDefaultValues(prop *PropertyDefinition) error {
	for {
		if err := p.advance(); err != nil { // "=" or ","
			return err
		}

		if p.tok.Kind != TokenString {
			return p.grammarErrorf("missing default value, got %s",
				p.describeToken())
		}

		v, err := ConvertValue(prop.RequiredType, p.tok.Text, p.ns)
		if err != nil {
			return p.positioned(err, p.tok.Pos)
		}

		prop.Defaults = append(prop.Defaults, v)

		if err := p.advance(); err != nil {
			return err
		}

		if p.tok.Kind != TokenComma {
			return nil
		}
	}
}

// parseConstraints handles "<" constraint {"," constraint}.
func (p *parser) parseConstraints(prop *PropertyDefinition) error {
	for {
		if err := p.advance(); err != nil { // "<" or ","
			return err
		}

		if p.tok.Kind != TokenString {
			return p.grammarErrorf("missing value constraint, got %s",
				p.describeToken())
		}

		c, err := ParseConstraint(prop.RequiredType, p.tok.Text, p.ns)
		if err != nil {
			return p.positioned(err, p.tok.Pos)
		}

		prop.Constraints = append(prop.Constraints, c)

		if err := p.advance(); err != nil {
			return err
		}

		if p.tok.Kind != TokenComma {
			return nil
		}
	}
}

// memberAttrs collects the attribute targets shared by property and child
// node definitions.
type memberAttrs struct {
	auto      *bool
	mandatory *bool
	protected *bool
	multiple  *bool
	primary   *bool
	opv       *OnParentVersion
}

// parseAttributes handles the attribute keywords of a member definition.
// The symbols "!" and "*" are shorthand for primary and multiple.
func (p *parser) parseAttributes(attrs *memberAttrs, rawName string, havePrimary *bool) error {
	for {
		var kind attrKind

		switch p.tok.Kind {
		case TokenBang:
			kind = attrPrimary

		case TokenStar:
			kind = attrMultiple

		case TokenString:
			k, ok := attrAlias[p.tok.Text]
			if !ok {
				return nil
			}

			kind = k

		default:
			return nil
		}

		switch kind {
		case attrPrimary:
			if *havePrimary {
				return newErrorf(ErrSemantic,
					"more than one primary item specified in node type '%s'",
					rawName).WithPosition(p.tok.Pos)
			}

			*havePrimary = true
			*attrs.primary = true

		case attrAutoCreated:
			*attrs.auto = true

		case attrMandatory:
			*attrs.mandatory = true

		case attrProtected:
			*attrs.protected = true

		case attrMultiple:
			*attrs.multiple = true

		default:
			*attrs.opv = attrOnParentVersion[kind]
		}

		if err := p.advance(); err != nil {
			return err
		}
	}
}

// parseChildNode handles "+" name ["(" requiredtypes ")"] ["=" defaulttype]
// {attribute}.
func (p *parser) parseChildNode(def *NodeTypeDefinition, rawName string, havePrimary *bool) error {
	if err := p.advance(); err != nil { // "+"
		return err
	}

	node := ChildNodeDefinition{
		DeclaringType:   def.Name,
		OnParentVersion: OPVCopy,
	}

	name, err := p.parseMemberName()
	if err != nil {
		return err
	}

	node.Name = name

	if p.tok.Kind == TokenLParen {
		if err := p.parseRequiredTypes(&node); err != nil {
			return err
		}
	}

	if len(node.RequiredTypes) == 0 {
		node.RequiredTypes = []Name{BaseType}
	}

	if p.tok.Kind == TokenEquals {
		if err := p.parseDefaultType(&node); err != nil {
			return err
		}
	}

	if err := p.parseAttributes(&memberAttrs{
		auto:      &node.AutoCreated,
		mandatory: &node.Mandatory,
		protected: &node.Protected,
		multiple:  &node.Multiple,
		primary:   &node.Primary,
		opv:       &node.OnParentVersion,
	}, rawName, havePrimary); err != nil {
		return err
	}

	def.ChildNodes = append(def.ChildNodes, node)

	return nil
}

// parseRequiredTypes handles "(" name {"," name} ")".
func (p *parser) parseRequiredTypes(node *ChildNodeDefinition) error {
	for {
		if err := p.advance(); err != nil { // "(" or ","
			return err
		}

		if p.tok.Kind != TokenString {
			return p.grammarErrorf("missing required type name, got %s",
				p.describeToken())
		}

		name, err := p.resolveAt(p.tok.Text, p.tok.Pos)
		if err != nil {
			return err
		}

		node.RequiredTypes = append(node.RequiredTypes, name)

		if err := p.advance(); err != nil {
			return err
		}

		if p.tok.Kind != TokenComma {
			break
		}
	}

	return p.expect(TokenRParen,
		"missing ')' delimiter for end of required types")
}

// parseDefaultType handles "=" name.
func (p *parser) parseDefaultType(node *ChildNodeDefinition) error {
	if err := p.advance(); err != nil { // "="
		return err
	}

	if p.tok.Kind != TokenString {
		return p.grammarErrorf("missing default primary type, got %s",
			p.describeToken())
	}

	name, err := p.resolveAt(p.tok.Text, p.tok.Pos)
	if err != nil {
		return err
	}

	node.DefaultType = &name

	return p.advance()
}

// resolveAt resolves a prefixed name, attaching the token position to any
// resolution error.
func (p *parser) resolveAt(raw string, pos Position) (Name, error) {
	name, err := p.ns.Resolve(raw)
	if err != nil {
		return Name{}, p.positioned(err, pos)
	}

	return name, nil
}

// positioned attaches pos to err when it is an Error without one.
func (p *parser) positioned(err error, pos Position) error {
	var ee *Error
	if errors.As(err, &ee) && ee.Position() == (Position{}) {
		return ee.WithPosition(pos)
	}

	return err
}
