package cnd

import (
	"log/slog"
	"strings"
)

// Name is a fully-resolved qualified name: a namespace URI paired with a
// local part. The namespace is the URI a prefix resolved to, never the
// prefix itself.
type Name struct {
	Namespace string `json:"namespace"      yaml:"namespace"`
	Local     string `json:"local"          yaml:"local"`
}

// ResidualName is the sentinel name of a residual member definition, written
// "*" in source. Its namespace is empty and its local part is "*".
//
//nolint:gochecknoglobals
var ResidualName = Name{Namespace: "", Local: "*"}

// BaseType is the default required primary type of a child node definition.
//
//nolint:gochecknoglobals
var BaseType = Name{Namespace: NamespaceNT, Local: "base"}

// IsResidual reports whether the name is the residual sentinel.
func (n Name) IsResidual() bool { return n == ResidualName }

// String formats the name as "{namespace}local", the expanded form that is
// unambiguous without a prefix table. The residual sentinel formats as "*".
func (n Name) String() string {
	if n.IsResidual() {
		return "*"
	}

	return "{" + n.Namespace + "}" + n.Local
}

// Built-in namespace URIs. Every Namespaces table starts with these bound to
// their conventional prefixes.
const (
	NamespaceEmpty = ""
	NamespaceJCR   = "http://www.jcp.org/jcr/1.0"
	NamespaceNT    = "http://www.jcp.org/jcr/nt/1.0"
	NamespaceMix   = "http://www.jcp.org/jcr/mix/1.0"
	NamespaceSV    = "http://www.jcp.org/jcr/sv/1.0"
	NamespaceXML   = "http://www.w3.org/XML/1998/namespace"
)

// Namespaces is a bidirectional prefix table mapping prefixes to namespace
// URIs. It is not safe for concurrent mutation.
type Namespaces struct {
	byPrefix map[string]string
	byURI    map[string]string
}

// NewNamespaces creates a prefix table seeded with the built-in bindings
// ("" for the empty namespace, plus jcr, nt, mix, sv, and xml).
func NewNamespaces() *Namespaces {
	n := &Namespaces{
		byPrefix: make(map[string]string, 8),
		byURI:    make(map[string]string, 8),
	}

	for prefix, uri := range map[string]string{
		"":    NamespaceEmpty,
		"jcr": NamespaceJCR,
		"nt":  NamespaceNT,
		"mix": NamespaceMix,
		"sv":  NamespaceSV,
		"xml": NamespaceXML,
	} {
		n.byPrefix[prefix] = uri
		n.byURI[uri] = prefix
	}

	return n
}

// Clone returns a deep copy of the table. Declarations on the copy do not
// affect the original.
func (n *Namespaces) Clone() *Namespaces {
	c := &Namespaces{
		byPrefix: make(map[string]string, len(n.byPrefix)),
		byURI:    make(map[string]string, len(n.byURI)),
	}

	for prefix, uri := range n.byPrefix {
		c.byPrefix[prefix] = uri
	}

	for uri, prefix := range n.byURI {
		c.byURI[uri] = prefix
	}

	return c
}

// Declare binds a prefix to a namespace URI. Redeclaring a prefix with the
// URI it is already bound to is a no-op; rebinding it to a different URI is
// an error.
func (n *Namespaces) Declare(prefix, uri string) error {
	if bound, ok := n.byPrefix[prefix]; ok {
		if bound == uri {
			return nil
		}

		return newErrorf(ErrResolve,
			"prefix '%s' is already mapped to '%s'", prefix, bound).
			With(slog.String("uri", uri))
	}

	n.byPrefix[prefix] = uri

	// Keep the first prefix registered for a URI so Format is stable.
	if _, ok := n.byURI[uri]; !ok {
		n.byURI[uri] = prefix
	}

	return nil
}

// URI returns the namespace URI bound to prefix.
func (n *Namespaces) URI(prefix string) (string, bool) {
	uri, ok := n.byPrefix[prefix]

	return uri, ok
}

// Prefix returns a prefix bound to the namespace URI.
func (n *Namespaces) Prefix(uri string) (string, bool) {
	prefix, ok := n.byURI[uri]

	return prefix, ok
}

// Prefixes returns all declared prefixes in unspecified order.
func (n *Namespaces) Prefixes() []string {
	prefixes := make([]string, 0, len(n.byPrefix))
	for prefix := range n.byPrefix {
		prefixes = append(prefixes, prefix)
	}

	return prefixes
}

// Resolve expands a prefixed name like "nt:file" into a Name. A name without
// a colon resolves against the empty namespace. The prefix must be declared,
// the local part must be nonempty, and neither part may contain a second
// colon, a slash, or whitespace.
func (n *Namespaces) Resolve(name string) (Name, error) {
	if name == "" {
		return Name{}, newError(ErrResolve, "empty name")
	}

	// Quoted names may contain spaces, but never path separators or
	// control characters.
	if strings.ContainsAny(name, "/\t\r\n") {
		return Name{}, newErrorf(ErrResolve, "invalid name '%s'", name)
	}

	prefix, local := "", name
	if i := strings.IndexByte(name, ':'); i >= 0 {
		prefix, local = name[:i], name[i+1:]
	}

	if local == "" || strings.ContainsRune(local, ':') {
		return Name{}, newErrorf(ErrResolve, "invalid name '%s'", name)
	}

	uri, ok := n.byPrefix[prefix]
	if !ok {
		return Name{}, newErrorf(ErrResolve,
			"undeclared namespace prefix '%s'", prefix)
	}

	return Name{Namespace: uri, Local: local}, nil
}

// Format renders a Name back into prefixed form using the declared
// bindings. The residual sentinel formats as "*". Names in the empty
// namespace format as their bare local part.
func (n *Namespaces) Format(name Name) (string, error) {
	if name.IsResidual() {
		return "*", nil
	}

	prefix, ok := n.byURI[name.Namespace]
	if !ok {
		return "", newErrorf(ErrResolve,
			"no prefix declared for namespace '%s'", name.Namespace)
	}

	if prefix == "" {
		return name.Local, nil
	}

	return prefix + ":" + name.Local, nil
}
