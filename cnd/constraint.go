package cnd

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Constraint is a compiled value constraint. The form a constraint literal
// takes depends on the property type it constrains:
//
//	String            a regular expression the value must match
//	Binary            a size interval in bytes, e.g. "[0,16384]"
//	Long, Double      a numeric interval, e.g. "(0,100]" or "[1,)"
//	Date              a timestamp interval with RFC 3339 bounds
//	Boolean           the literal "true" or "false"
//	Name              a qualified name the value must equal
//	Path              a path the value must equal, or with a trailing
//	                  "/*", a path the value must be a descendant of
//	Reference         the name of a node type the target must have
//
// Interval bounds may be omitted for an unbounded side; "[" and "]" include
// the bound, "(" and ")" exclude it. Undefined properties cannot carry
// constraints.
type Constraint struct {
	Type    PropertyType `json:"type"    yaml:"type"`
	Literal string       `json:"literal" yaml:"literal"`

	pattern *regexp.Regexp
	boolVal bool
	name    Name
	path    Path
	deep    bool
	lower   bound
	upper   bound
}

type bound struct {
	set       bool
	inclusive bool
	long      int64
	double    float64
	time      time.Time
}

// ParseConstraint compiles a constraint literal for the given property
// type, resolving name and path constraints against ns.
func ParseConstraint(t PropertyType, literal string, ns *Namespaces) (Constraint, error) {
	c := Constraint{Type: t, Literal: literal}

	switch t {
	case TypeString:
		pattern, err := regexp.Compile(literal)
		if err != nil {
			return Constraint{}, newErrorf(ErrValue,
				"'%s' is not a valid regular expression", literal)
		}

		c.pattern = pattern

	case TypeBinary, TypeLong, TypeDouble, TypeDate:
		if err := c.parseInterval(literal); err != nil {
			return Constraint{}, err
		}

	case TypeBoolean:
		switch literal {
		case "true":
			c.boolVal = true
		case "false":
			c.boolVal = false
		default:
			return Constraint{}, newErrorf(ErrValue,
				"'%s' is not a valid boolean constraint", literal)
		}

	case TypeName, TypeReference:
		name, err := ns.Resolve(literal)
		if err != nil {
			return Constraint{}, newErrorf(ErrValue,
				"'%s' is not a valid name constraint", literal).Wrap(err)
		}

		c.name = name

	case TypePath:
		raw := literal
		if strings.HasSuffix(raw, "/*") {
			c.deep = true
			raw = strings.TrimSuffix(raw, "/*")

			if raw == "" {
				raw = "/"
			}
		}

		path, err := ParsePath(raw, ns)
		if err != nil {
			return Constraint{}, newErrorf(ErrValue,
				"'%s' is not a valid path constraint", literal).Wrap(err)
		}

		c.path = path

	case TypeUndefined:
		return Constraint{}, newErrorf(ErrValue,
			"properties of undefined type cannot have constraints")

	default:
		return Constraint{}, newErrorf(ErrValue,
			"unknown property type '%d'", t)
	}

	return c, nil
}

// intervalPattern matches "[lo,hi]" with either square or round brackets on
// each side and optionally empty bounds.
//
//nolint:gochecknoglobals
var intervalPattern = regexp.MustCompile(`^([(\[])([^,]*),([^)\]]*)([)\]])$`)

func (c *Constraint) parseInterval(literal string) error {
	m := intervalPattern.FindStringSubmatch(strings.TrimSpace(literal))
	if m == nil {
		return newErrorf(ErrValue,
			"'%s' is not a valid interval constraint", literal)
	}

	var err error

	if lo := strings.TrimSpace(m[2]); lo != "" {
		c.lower, err = c.parseBound(lo, m[1] == "[")
		if err != nil {
			return newErrorf(ErrValue,
				"'%s' is not a valid interval constraint", literal).Wrap(err)
		}
	}

	if hi := strings.TrimSpace(m[3]); hi != "" {
		c.upper, err = c.parseBound(hi, m[4] == "]")
		if err != nil {
			return newErrorf(ErrValue,
				"'%s' is not a valid interval constraint", literal).Wrap(err)
		}
	}

	return nil
}

func (c *Constraint) parseBound(text string, inclusive bool) (bound, error) {
	b := bound{set: true, inclusive: inclusive}

	switch c.Type {
	case TypeLong, TypeBinary:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return bound{}, newErrorf(ErrValue, "'%s' is not a valid long", text)
		}

		b.long = n

	case TypeDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return bound{}, newErrorf(ErrValue, "'%s' is not a valid double", text)
		}

		b.double = f

	case TypeDate:
		ts, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return bound{}, newErrorf(ErrValue, "'%s' is not a valid date", text)
		}

		b.time = ts

	default:
		return bound{}, newErrorf(ErrValue,
			"interval constraint not valid for type %s", c.Type)
	}

	return b, nil
}

// Check reports whether the value satisfies the constraint. The value's
// type must match the constraint's type. Reference constraints name a node
// type the referenced node must have, which cannot be verified from the
// value alone, so they always pass.
func (c Constraint) Check(v Value) (bool, error) {
	if v.Type != c.Type {
		return false, newErrorf(ErrValue,
			"cannot check %s value against %s constraint", v.Type, c.Type)
	}

	switch c.Type {
	case TypeString:
		return c.pattern.MatchString(v.Str), nil

	case TypeBinary:
		return c.inLongInterval(int64(len(v.Str))), nil

	case TypeLong:
		return c.inLongInterval(v.Long), nil

	case TypeDouble:
		return c.inDoubleInterval(v.Double), nil

	case TypeDate:
		return c.inTimeInterval(v.Time), nil

	case TypeBoolean:
		return v.Bool == c.boolVal, nil

	case TypeName:
		return v.Name == c.name, nil

	case TypePath:
		if c.deep {
			return v.Path.IsDescendantOf(c.path), nil
		}

		return v.Path.String() == c.path.String(), nil

	case TypeReference:
		return true, nil

	default:
		return false, newErrorf(ErrValue,
			"unknown property type '%d'", c.Type)
	}
}

func (c Constraint) inLongInterval(n int64) bool {
	if c.lower.set {
		if n < c.lower.long || (n == c.lower.long && !c.lower.inclusive) {
			return false
		}
	}

	if c.upper.set {
		if n > c.upper.long || (n == c.upper.long && !c.upper.inclusive) {
			return false
		}
	}

	return true
}

func (c Constraint) inDoubleInterval(f float64) bool {
	if c.lower.set {
		if f < c.lower.double || (f == c.lower.double && !c.lower.inclusive) {
			return false
		}
	}

	if c.upper.set {
		if f > c.upper.double || (f == c.upper.double && !c.upper.inclusive) {
			return false
		}
	}

	return true
}

func (c Constraint) inTimeInterval(ts time.Time) bool {
	if c.lower.set {
		if ts.Before(c.lower.time) || (ts.Equal(c.lower.time) && !c.lower.inclusive) {
			return false
		}
	}

	if c.upper.set {
		if ts.After(c.upper.time) || (ts.Equal(c.upper.time) && !c.upper.inclusive) {
			return false
		}
	}

	return true
}
