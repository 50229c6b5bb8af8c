package cnd

// NodeTypeDefinition is one fully-resolved node type record. Member slices
// are nil when the definition declares no members of that kind, and appear
// in declaration order otherwise.
type NodeTypeDefinition struct {
	Name       Name                  `json:"name"                 yaml:"name"`
	Supertypes []Name                `json:"supertypes,omitempty" yaml:"supertypes,omitempty"`
	Orderable  bool                  `json:"orderable"            yaml:"orderable"`
	Mixin      bool                  `json:"mixin"                yaml:"mixin"`
	Properties []PropertyDefinition  `json:"properties,omitempty" yaml:"properties,omitempty"`
	ChildNodes []ChildNodeDefinition `json:"childNodes,omitempty" yaml:"childNodes,omitempty"`
}

// HasProperties reports whether the node type declares any properties.
func (d *NodeTypeDefinition) HasProperties() bool { return len(d.Properties) > 0 }

// HasChildNodes reports whether the node type declares any child nodes.
func (d *NodeTypeDefinition) HasChildNodes() bool { return len(d.ChildNodes) > 0 }

// PrimaryItem returns the name of the member marked primary, if any. At
// most one member of a node type can carry the primary attribute.
func (d *NodeTypeDefinition) PrimaryItem() (Name, bool) {
	for i := range d.Properties {
		if d.Properties[i].Primary {
			return d.Properties[i].Name, true
		}
	}

	for i := range d.ChildNodes {
		if d.ChildNodes[i].Primary {
			return d.ChildNodes[i].Name, true
		}
	}

	return Name{}, false
}

// PropertyDefinition is a property member of a node type. The residual
// definition is named "*" in source and carries ResidualName here.
type PropertyDefinition struct {
	Name            Name            `json:"name"                  yaml:"name"`
	DeclaringType   Name            `json:"declaringType"         yaml:"declaringType"`
	RequiredType    PropertyType    `json:"requiredType"          yaml:"requiredType"`
	Defaults        []Value         `json:"defaults,omitempty"    yaml:"defaults,omitempty"`
	Constraints     []Constraint    `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	AutoCreated     bool            `json:"autoCreated"           yaml:"autoCreated"`
	Mandatory       bool            `json:"mandatory"             yaml:"mandatory"`
	Protected       bool            `json:"protected"             yaml:"protected"`
	Multiple        bool            `json:"multiple"              yaml:"multiple"`
	Primary         bool            `json:"primary"               yaml:"primary"`
	OnParentVersion OnParentVersion `json:"onParentVersion"       yaml:"onParentVersion"`
}

// ChildNodeDefinition is a child node member of a node type. RequiredTypes
// defaults to [nt:base] when the definition declares none; DefaultType is
// nil when the definition declares none.
type ChildNodeDefinition struct {
	Name            Name            `json:"name"                  yaml:"name"`
	DeclaringType   Name            `json:"declaringType"         yaml:"declaringType"`
	RequiredTypes   []Name          `json:"requiredTypes"         yaml:"requiredTypes"`
	DefaultType     *Name           `json:"defaultType,omitempty" yaml:"defaultType,omitempty"`
	AutoCreated     bool            `json:"autoCreated"           yaml:"autoCreated"`
	Mandatory       bool            `json:"mandatory"             yaml:"mandatory"`
	Protected       bool            `json:"protected"             yaml:"protected"`
	Multiple        bool            `json:"multiple"              yaml:"multiple"`
	Primary         bool            `json:"primary"               yaml:"primary"`
	OnParentVersion OnParentVersion `json:"onParentVersion"       yaml:"onParentVersion"`
}
