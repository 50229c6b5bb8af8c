package cnd

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Value is a typed property value, produced by converting a source literal
// to a required property type. Literal always holds the original source
// text; the field matching Type holds the converted form.
type Value struct {
	Type    PropertyType `json:"type"             yaml:"type"`
	Literal string       `json:"literal"          yaml:"literal"`
	Str     string       `json:"string,omitempty" yaml:"string,omitempty"`
	Long    int64        `json:"long,omitempty"   yaml:"long,omitempty"`
	Double  float64      `json:"double,omitempty" yaml:"double,omitempty"`
	Bool    bool         `json:"bool,omitempty"   yaml:"bool,omitempty"`
	Time    time.Time    `json:"time,omitzero"    yaml:"time,omitzero"`
	Name    Name         `json:"name,omitzero"    yaml:"name,omitzero"`
	Path    Path         `json:"path,omitzero"    yaml:"path,omitzero"`
	Ref     string       `json:"ref,omitempty"    yaml:"ref,omitempty"`
}

// ConvertValue converts a source literal to the given property type. Name
// and path literals are resolved against ns. Conversion is strict: booleans
// accept only "true" and "false", longs only base-10 integers, and dates
// only RFC 3339 timestamps.
//
// String, binary, and undefined conversions are identity: the value is the
// literal itself. References are opaque strings, canonicalized to lowercase
// hyphenated form when they parse as UUIDs.
func ConvertValue(t PropertyType, literal string, ns *Namespaces) (Value, error) {
	v := Value{Type: t, Literal: literal}

	switch t {
	case TypeString, TypeBinary, TypeUndefined:
		v.Str = literal

	case TypeLong:
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return Value{}, newErrorf(ErrValue,
				"'%s' is not a valid long", literal)
		}

		v.Long = n

	case TypeDouble:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return Value{}, newErrorf(ErrValue,
				"'%s' is not a valid double", literal)
		}

		v.Double = f

	case TypeBoolean:
		switch literal {
		case "true":
			v.Bool = true
		case "false":
			v.Bool = false
		default:
			return Value{}, newErrorf(ErrValue,
				"'%s' is not a valid boolean", literal)
		}

	case TypeDate:
		ts, err := time.Parse(time.RFC3339, literal)
		if err != nil {
			return Value{}, newErrorf(ErrValue,
				"'%s' is not a valid date", literal)
		}

		v.Time = ts

	case TypeName:
		name, err := ns.Resolve(literal)
		if err != nil {
			return Value{}, newErrorf(ErrValue,
				"'%s' is not a valid name", literal).Wrap(err)
		}

		v.Name = name

	case TypePath:
		path, err := ParsePath(literal, ns)
		if err != nil {
			return Value{}, newErrorf(ErrValue,
				"'%s' is not a valid path", literal).Wrap(err)
		}

		v.Path = path

	case TypeReference:
		v.Ref = literal
		if id, err := uuid.Parse(literal); err == nil {
			v.Ref = id.String()
		}

	default:
		return Value{}, newErrorf(ErrValue,
			"unknown property type '%d'", t)
	}

	return v, nil
}

// String returns the converted value in its canonical textual form.
func (v Value) String() string {
	switch v.Type {
	case TypeLong:
		return strconv.FormatInt(v.Long, 10)
	case TypeDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.Bool)
	case TypeDate:
		return v.Time.Format(time.RFC3339)
	case TypeName:
		return v.Name.String()
	case TypePath:
		return v.Path.String()
	case TypeReference:
		return v.Ref
	default:
		return v.Str
	}
}
