package cnd

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) *Result {
	t.Helper()

	res, err := ParseString(context.Background(), source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return res
}

func TestParseString_Empty(t *testing.T) {
	res := mustParse(t, "")
	if len(res.NodeTypes) != 0 {
		t.Errorf("expected no node types, got %d", len(res.NodeTypes))
	}

	// Comments and whitespace alone are also an empty document.
	res = mustParse(t, " \n// nothing here\n/* at all */\n")
	if len(res.NodeTypes) != 0 {
		t.Errorf("expected no node types, got %d", len(res.NodeTypes))
	}
}

func TestParseString_MinimalNodeType(t *testing.T) {
	res := mustParse(t, "[nt:file]")

	if len(res.NodeTypes) != 1 {
		t.Fatalf("expected 1 node type, got %d", len(res.NodeTypes))
	}

	def := res.NodeTypes[0]

	want := Name{Namespace: NamespaceNT, Local: "file"}
	if def.Name != want {
		t.Errorf("expected %v, got %v", want, def.Name)
	}

	if def.Orderable || def.Mixin {
		t.Error("expected options to default to false")
	}

	if def.Supertypes != nil || def.Properties != nil || def.ChildNodes != nil {
		t.Error("expected nil member slices")
	}
}

func TestParseString_NamespaceDeclaration(t *testing.T) {
	res := mustParse(t, "<ex='http://example.com/ns'>\n[ex:file]")

	uri, ok := res.Namespaces.URI("ex")
	if !ok || uri != "http://example.com/ns" {
		t.Fatalf("expected declared namespace, got %q (%v)", uri, ok)
	}

	want := Name{Namespace: "http://example.com/ns", Local: "file"}
	if res.NodeTypes[0].Name != want {
		t.Errorf("expected %v, got %v", want, res.NodeTypes[0].Name)
	}
}

func TestParseString_NamespaceConflict(t *testing.T) {
	_, err := ParseString(context.Background(),
		"<ex='http://example.com/a'>\n<ex='http://example.com/b'>")
	if !errors.Is(err, ErrResolve) {
		t.Fatalf("expected ErrResolve, got %v", err)
	}

	// Identical redeclaration is fine.
	mustParse(t, "<ex='http://example.com/a'>\n<ex='http://example.com/a'>")
}

func TestParseString_Supertypes(t *testing.T) {
	res := mustParse(t, "[nt:file] > nt:hierarchyNode, mix:referenceable")

	supers := res.NodeTypes[0].Supertypes
	if len(supers) != 2 {
		t.Fatalf("expected 2 supertypes, got %d", len(supers))
	}

	if supers[0] != (Name{Namespace: NamespaceNT, Local: "hierarchyNode"}) {
		t.Errorf("unexpected first supertype: %v", supers[0])
	}

	if supers[1] != (Name{Namespace: NamespaceMix, Local: "referenceable"}) {
		t.Errorf("unexpected second supertype: %v", supers[1])
	}
}

func TestParseString_DuplicateSupertypesKept(t *testing.T) {
	res := mustParse(t, "[nt:file] > nt:base, nt:base")

	supers := res.NodeTypes[0].Supertypes
	if len(supers) != 2 {
		t.Fatalf("expected duplicates preserved, got %d supertypes", len(supers))
	}

	if supers[0] != supers[1] {
		t.Errorf("expected identical entries, got %v and %v", supers[0], supers[1])
	}
}

func TestParseString_Options(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		orderable bool
		mixin     bool
	}{
		{name: "none", input: "[nt:a]"},
		{name: "orderable", input: "[nt:a] orderable", orderable: true},
		{name: "ord", input: "[nt:a] ord", orderable: true},
		{name: "o", input: "[nt:a] o", orderable: true},
		{name: "mixin", input: "[nt:a] mixin", mixin: true},
		{name: "mix", input: "[nt:a] mix", mixin: true},
		{name: "m", input: "[nt:a] m", mixin: true},
		{name: "both", input: "[nt:a] orderable mixin", orderable: true, mixin: true},
		{name: "reversed", input: "[nt:a] mixin orderable", orderable: true, mixin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustParse(t, tt.input).NodeTypes[0]
			if def.Orderable != tt.orderable {
				t.Errorf("expected orderable=%v, got %v", tt.orderable, def.Orderable)
			}

			if def.Mixin != tt.mixin {
				t.Errorf("expected mixin=%v, got %v", tt.mixin, def.Mixin)
			}
		})
	}
}

func TestParseString_UnknownOption(t *testing.T) {
	_, err := ParseString(context.Background(), "[nt:a] sideways")
	if !errors.Is(err, ErrGrammar) {
		t.Fatalf("expected ErrGrammar, got %v", err)
	}
}

func TestParseString_RepeatedOption(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "orderable twice", input: "[nt:a] orderable orderable"},
		{name: "mixin twice", input: "[nt:a] mixin mixin"},
		{name: "alias spellings", input: "[nt:a] o o m m"},
		{name: "mixed spellings", input: "[nt:a] orderable mixin ord"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, ErrGrammar) {
				t.Fatalf("expected ErrGrammar, got %v", err)
			}
		})
	}
}

func TestParseString_PropertyDefaults(t *testing.T) {
	def := mustParse(t, "[nt:a]\n  - nt:prop").NodeTypes[0]

	if !def.HasProperties() {
		t.Fatal("expected one property")
	}

	prop := def.Properties[0]

	if prop.RequiredType != TypeString {
		t.Errorf("expected default type String, got %v", prop.RequiredType)
	}

	if prop.OnParentVersion != OPVCopy {
		t.Errorf("expected default COPY, got %v", prop.OnParentVersion)
	}

	if prop.AutoCreated || prop.Mandatory || prop.Protected || prop.Multiple || prop.Primary {
		t.Error("expected attribute flags to default to false")
	}

	if prop.Defaults != nil || prop.Constraints != nil {
		t.Error("expected nil defaults and constraints")
	}

	if prop.DeclaringType != def.Name {
		t.Errorf("expected declaring type %v, got %v", def.Name, prop.DeclaringType)
	}
}

func TestParseString_PropertyTypes(t *testing.T) {
	tests := []struct {
		spelling string
		want     PropertyType
	}{
		{spelling: "STRING", want: TypeString},
		{spelling: "String", want: TypeString},
		{spelling: "string", want: TypeString},
		{spelling: "BINARY", want: TypeBinary},
		{spelling: "long", want: TypeLong},
		{spelling: "Double", want: TypeDouble},
		{spelling: "BOOLEAN", want: TypeBoolean},
		{spelling: "date", want: TypeDate},
		{spelling: "Name", want: TypeName},
		{spelling: "PATH", want: TypePath},
		{spelling: "reference", want: TypeReference},
		{spelling: "UNDEFINED", want: TypeUndefined},
		{spelling: "*", want: TypeUndefined},
	}

	for _, tt := range tests {
		t.Run(tt.spelling, func(t *testing.T) {
			def := mustParse(t, "[nt:a] - nt:prop ("+tt.spelling+")").NodeTypes[0]
			if got := def.Properties[0].RequiredType; got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseString_UnknownPropertyType(t *testing.T) {
	_, err := ParseString(context.Background(), "[nt:a] - nt:prop (STIRNG)")
	if !errors.Is(err, ErrGrammar) {
		t.Fatalf("expected ErrGrammar, got %v", err)
	}

	// Mixed-case spellings outside the three accepted families fail too.
	_, err = ParseString(context.Background(), "[nt:a] - nt:prop (sTrInG)")
	if !errors.Is(err, ErrGrammar) {
		t.Fatalf("expected ErrGrammar, got %v", err)
	}
}

func TestParseString_PropertyDefaultValues(t *testing.T) {
	def := mustParse(t,
		"[nt:a] - nt:prop (Long) = 1, 2, 3 autocreated").NodeTypes[0]

	prop := def.Properties[0]
	if len(prop.Defaults) != 3 {
		t.Fatalf("expected 3 defaults, got %d", len(prop.Defaults))
	}

	for i, want := range []int64{1, 2, 3} {
		if prop.Defaults[i].Long != want {
			t.Errorf("default %d: expected %d, got %d", i, want, prop.Defaults[i].Long)
		}
	}

	if !prop.AutoCreated {
		t.Error("expected autocreated")
	}
}

func TestParseString_PropertyDefaultValueError(t *testing.T) {
	_, err := ParseString(context.Background(), "[nt:a] - nt:prop (Long) = abc")
	if !errors.Is(err, ErrValue) {
		t.Fatalf("expected ErrValue, got %v", err)
	}
}

func TestParseString_PropertyAttributes(t *testing.T) {
	def := mustParse(t, strings.Join([]string{
		"[nt:a]",
		"  - nt:one mandatory autocreated protected multiple VERSION",
		"  - nt:two man aut pro mul version",
		"  - nt:three m a p * IGNORE",
	}, "\n")).NodeTypes[0]

	if len(def.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(def.Properties))
	}

	for i, prop := range def.Properties {
		if !prop.Mandatory || !prop.AutoCreated || !prop.Protected || !prop.Multiple {
			t.Errorf("property %d: expected all flags set: %+v", i, prop)
		}
	}

	if def.Properties[0].OnParentVersion != OPVVersion {
		t.Errorf("expected VERSION, got %v", def.Properties[0].OnParentVersion)
	}

	if def.Properties[2].OnParentVersion != OPVIgnore {
		t.Errorf("expected IGNORE, got %v", def.Properties[2].OnParentVersion)
	}
}

func TestParseString_PrimaryItem(t *testing.T) {
	def := mustParse(t, "[nt:a]\n  - nt:prop primary\n  + nt:child").NodeTypes[0]

	name, ok := def.PrimaryItem()
	if !ok {
		t.Fatal("expected a primary item")
	}

	if name != (Name{Namespace: NamespaceNT, Local: "prop"}) {
		t.Errorf("unexpected primary item: %v", name)
	}

	// The "!" shorthand works the same way.
	def = mustParse(t, "[nt:a]\n  + nt:child !").NodeTypes[0]
	if !def.ChildNodes[0].Primary {
		t.Error("expected primary child node")
	}
}

func TestParseString_DuplicatePrimaryItem(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "two properties",
			input: "[nt:a]\n  - nt:one !\n  - nt:two !",
		},
		{
			name:  "property and child",
			input: "[nt:a]\n  - nt:one primary\n  + nt:two primary",
		},
		{
			name:  "same member twice",
			input: "[nt:a]\n  - nt:one ! !",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, ErrSemantic) {
				t.Fatalf("expected ErrSemantic, got %v", err)
			}
		})
	}
}

func TestParseString_PropertyConstraints(t *testing.T) {
	def := mustParse(t,
		"[nt:a] - nt:prop (Long) < '[0,100]', '(200,)'").NodeTypes[0]

	cons := def.Properties[0].Constraints
	if len(cons) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(cons))
	}

	v, err := ConvertValue(TypeLong, "50", NewNamespaces())
	if err != nil {
		t.Fatalf("convert error: %v", err)
	}

	ok, err := cons[0].Check(v)
	if err != nil || !ok {
		t.Errorf("expected 50 to satisfy [0,100]: %v %v", ok, err)
	}
}

func TestParseString_ResidualMembers(t *testing.T) {
	def := mustParse(t, "[nt:unstructured]\n  - * (*) multiple\n  + * (nt:base) multiple").NodeTypes[0]

	if !def.Properties[0].Name.IsResidual() {
		t.Errorf("expected residual property, got %v", def.Properties[0].Name)
	}

	if def.Properties[0].RequiredType != TypeUndefined {
		t.Errorf("expected undefined type, got %v", def.Properties[0].RequiredType)
	}

	if !def.ChildNodes[0].Name.IsResidual() {
		t.Errorf("expected residual child, got %v", def.ChildNodes[0].Name)
	}

	// A quoted "*" is the residual name too.
	def = mustParse(t, "[nt:a] - '*'").NodeTypes[0]
	if !def.Properties[0].Name.IsResidual() {
		t.Errorf("expected residual property, got %v", def.Properties[0].Name)
	}
}

func TestParseString_ChildNodeDefaults(t *testing.T) {
	def := mustParse(t, "[nt:a] + nt:child").NodeTypes[0]

	node := def.ChildNodes[0]

	if len(node.RequiredTypes) != 1 || node.RequiredTypes[0] != BaseType {
		t.Errorf("expected required types [nt:base], got %v", node.RequiredTypes)
	}

	if node.DefaultType != nil {
		t.Errorf("expected no default type, got %v", node.DefaultType)
	}

	if node.OnParentVersion != OPVCopy {
		t.Errorf("expected default COPY, got %v", node.OnParentVersion)
	}
}

func TestParseString_ChildNode(t *testing.T) {
	def := mustParse(t,
		"[nt:file] + jcr:content (nt:base, nt:unstructured) = nt:unstructured mandatory ABORT").NodeTypes[0]

	node := def.ChildNodes[0]

	if node.Name != (Name{Namespace: NamespaceJCR, Local: "content"}) {
		t.Errorf("unexpected child name: %v", node.Name)
	}

	if len(node.RequiredTypes) != 2 {
		t.Fatalf("expected 2 required types, got %d", len(node.RequiredTypes))
	}

	if node.DefaultType == nil ||
		*node.DefaultType != (Name{Namespace: NamespaceNT, Local: "unstructured"}) {
		t.Errorf("unexpected default type: %v", node.DefaultType)
	}

	if !node.Mandatory {
		t.Error("expected mandatory")
	}

	if node.OnParentVersion != OPVAbort {
		t.Errorf("expected ABORT, got %v", node.OnParentVersion)
	}
}

func TestParseString_QuotedNames(t *testing.T) {
	res := mustParse(t,
		"<ex='http://example.com/ns'>\n['ex:my type'] - 'ex:my prop'")

	def := res.NodeTypes[0]
	if def.Name.Local != "my type" {
		t.Errorf("expected local part with space, got %q", def.Name.Local)
	}

	if def.Properties[0].Name.Local != "my prop" {
		t.Errorf("expected local part with space, got %q", def.Properties[0].Name.Local)
	}
}

func TestParseString_GrammarErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "stray token", input: "orderable"},
		{name: "missing node type name close", input: "[nt:a"},
		{name: "missing ns equals", input: "<ex 'http://example.com'>"},
		{name: "missing ns close", input: "<ex='http://example.com'"},
		{name: "missing supertype", input: "[nt:a] >"},
		{name: "dangling comma", input: "[nt:a] > nt:base,"},
		{name: "missing property type close", input: "[nt:a] - nt:p (String"},
		{name: "missing member name", input: "[nt:a] -"},
		{name: "missing default value", input: "[nt:a] - nt:p ="},
		{name: "missing constraint", input: "[nt:a] - nt:p <"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, ErrGrammar) {
				t.Fatalf("expected ErrGrammar, got %v", err)
			}
		})
	}
}

func TestParseString_ResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "node type name", input: "[ex:file]"},
		{name: "supertype", input: "[nt:a] > ex:base"},
		{name: "property name", input: "[nt:a] - ex:prop"},
		{name: "child name", input: "[nt:a] + ex:child"},
		{name: "required type", input: "[nt:a] + nt:child (ex:base)"},
		{name: "default type", input: "[nt:a] + nt:child = ex:base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, ErrResolve) {
				t.Fatalf("expected ErrResolve, got %v", err)
			}
		})
	}
}

func TestParseString_ErrorPosition(t *testing.T) {
	_, err := ParseString(context.Background(), "[nt:a]\n  - nt:p (Long) = abc",
		WithSystemID("test.cnd"))
	if err == nil {
		t.Fatal("expected an error")
	}

	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("expected SourceError, got %T", err)
	}

	pos := se.Err.Position()
	if pos.Line != 2 {
		t.Errorf("expected error on line 2, got %v", pos)
	}

	msg := err.Error()
	if !strings.Contains(msg, "test.cnd") {
		t.Errorf("expected system id in message: %q", msg)
	}

	if !strings.Contains(msg, "^") {
		t.Errorf("expected caret marker in message: %q", msg)
	}
}

func TestParseString_FailFast(t *testing.T) {
	// The error reported is always the first one in the source; nothing
	// after it is examined.
	_, err := ParseString(context.Background(),
		"[ex:first]\n[nt:ok] - nt:p (Long) = abc")
	if !errors.Is(err, ErrResolve) {
		t.Fatalf("expected the first error (ErrResolve), got %v", err)
	}
}

func TestParseString_WithNamespaces(t *testing.T) {
	seed := NewNamespaces()
	if err := seed.Declare("ex", "http://example.com/ns"); err != nil {
		t.Fatalf("declare error: %v", err)
	}

	res, err := ParseString(context.Background(), "[ex:file]", WithNamespaces(seed))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := Name{Namespace: "http://example.com/ns", Local: "file"}
	if res.NodeTypes[0].Name != want {
		t.Errorf("expected %v, got %v", want, res.NodeTypes[0].Name)
	}

	// The parse works on a copy of the seed table.
	_, err = ParseString(context.Background(),
		"<ex2='http://example.com/2'>\n[ex2:thing]", WithNamespaces(seed))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, ok := seed.URI("ex2"); ok {
		t.Error("parse mutated the seed table")
	}
}

func TestParseString_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseString(ctx, "[nt:a]")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseString_Complete(t *testing.T) {
	source := strings.Join([]string{
		"/*",
		" * example node types",
		" */",
		"<ex='http://example.com/ns'>",
		"",
		"[ex:file] > nt:hierarchyNode, mix:referenceable orderable",
		"  - ex:encoding (String) = 'utf-8' mandatory autocreated < '.*'",
		"  - ex:size (Long) < '[0,]'",
		"  + jcr:content (nt:base) = nt:unstructured mandatory ! VERSION",
		"",
		"[ex:tag] mixin",
		"  - ex:label (String) mandatory",
	}, "\n")

	res := mustParse(t, source)

	if len(res.NodeTypes) != 2 {
		t.Fatalf("expected 2 node types, got %d", len(res.NodeTypes))
	}

	file := res.NodeTypes[0]

	if !file.Orderable || file.Mixin {
		t.Errorf("unexpected options: orderable=%v mixin=%v", file.Orderable, file.Mixin)
	}

	if len(file.Supertypes) != 2 || len(file.Properties) != 2 || len(file.ChildNodes) != 1 {
		t.Fatalf("unexpected member counts: %+v", file)
	}

	if name, ok := file.PrimaryItem(); !ok ||
		name != (Name{Namespace: NamespaceJCR, Local: "content"}) {
		t.Errorf("unexpected primary item: %v (%v)", name, ok)
	}

	tag := res.NodeTypes[1]
	if !tag.Mixin || tag.Orderable {
		t.Errorf("unexpected options: orderable=%v mixin=%v", tag.Orderable, tag.Mixin)
	}
}

func BenchmarkParseString(b *testing.B) {
	source := strings.Join([]string{
		"<ex='http://example.com/ns'>",
		"[ex:file] > nt:hierarchyNode, mix:referenceable orderable",
		"  - ex:encoding (String) = 'utf-8' mandatory < '.*'",
		"  - ex:size (Long) < '[0,]'",
		"  + jcr:content (nt:base) = nt:unstructured mandatory VERSION",
	}, "\n")

	b.ReportAllocs()

	for b.Loop() {
		if _, err := ParseString(context.Background(), source); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseStringCached(b *testing.B) {
	b.Cleanup(ClearCache)

	source := "[nt:file] > nt:hierarchyNode\n  - jcr:data (Binary) mandatory"

	b.ReportAllocs()

	for b.Loop() {
		if _, err := ParseStringCached(context.Background(), source); err != nil {
			b.Fatal(err)
		}
	}
}

func TestParseReader(t *testing.T) {
	res, err := ParseReader(context.Background(), strings.NewReader("[nt:file]"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(res.NodeTypes) != 1 {
		t.Fatalf("expected 1 node type, got %d", len(res.NodeTypes))
	}
}
