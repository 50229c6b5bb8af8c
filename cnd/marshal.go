package cnd

import "encoding/json"

// MarshalText renders the property type as its canonical keyword, so typed
// fields serialize readably in JSON and YAML.
func (t PropertyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses any accepted spelling of a property type keyword.
func (t *PropertyType) UnmarshalText(text []byte) error {
	pt, ok := propertyTypeAlias[string(text)]
	if !ok {
		return newErrorf(ErrValue, "unknown property type '%s'", text)
	}

	*t = pt

	return nil
}

// MarshalText renders the action as its canonical uppercase keyword.
func (o OnParentVersion) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses any accepted spelling of an on-parent-version
// keyword.
func (o *OnParentVersion) UnmarshalText(text []byte) error {
	kind, ok := attrAlias[string(text)]
	if !ok {
		return newErrorf(ErrValue, "unknown on-parent-version action '%s'", text)
	}

	opv, ok := attrOnParentVersion[kind]
	if !ok {
		return newErrorf(ErrValue, "unknown on-parent-version action '%s'", text)
	}

	*o = opv

	return nil
}

// MarshalJSON implements json.Marshaler for Result.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// ToMap converts the result to a native Go map structure, suitable for
// marshaling with any encoder.
func (r *Result) ToMap() map[string]any {
	return map[string]any{
		"namespaces": r.NamespaceMap(),
		"nodeTypes":  r.NodeTypes,
	}
}

// NamespaceMap returns the declared prefix bindings as a plain map of
// prefix to namespace URI.
func (r *Result) NamespaceMap() map[string]string {
	m := make(map[string]string, len(r.Namespaces.byPrefix))
	for prefix, uri := range r.Namespaces.byPrefix {
		m[prefix] = uri
	}

	return m
}
