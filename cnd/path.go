package cnd

import (
	"strconv"
	"strings"
)

// PathSegment is one step of a Path: a qualified name with an optional
// 1-based same-name-sibling index. Index 0 means no index was given.
type PathSegment struct {
	Name  Name `json:"name"            yaml:"name"`
	Index int  `json:"index,omitempty" yaml:"index,omitempty"`
}

// Path is a parsed item path. An absolute path with no segments is the
// root path "/".
type Path struct {
	Absolute bool          `json:"absolute"           yaml:"absolute"`
	Segments []PathSegment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// ParsePath parses an item path, resolving each segment name against the
// given prefix table. Segment indexes are written "[n]" with n >= 1.
func ParsePath(path string, ns *Namespaces) (Path, error) {
	if path == "" {
		return Path{}, newError(ErrValue, "empty path")
	}

	var p Path

	rest := path
	if strings.HasPrefix(rest, "/") {
		p.Absolute = true
		rest = rest[1:]
	}

	if rest == "" {
		if p.Absolute {
			return p, nil // root path
		}

		return Path{}, newErrorf(ErrValue, "invalid path '%s'", path)
	}

	for _, raw := range strings.Split(rest, "/") {
		seg, err := parseSegment(raw)
		if err != nil {
			return Path{}, newErrorf(ErrValue,
				"invalid path '%s'", path).Wrap(err)
		}

		name, err := ns.Resolve(seg.text)
		if err != nil {
			return Path{}, newErrorf(ErrValue,
				"invalid path '%s'", path).Wrap(err)
		}

		p.Segments = append(p.Segments, PathSegment{
			Name:  name,
			Index: seg.index,
		})
	}

	return p, nil
}

type rawSegment struct {
	text  string
	index int
}

func parseSegment(raw string) (rawSegment, error) {
	text, index := raw, 0

	if i := strings.IndexByte(raw, '['); i >= 0 {
		if !strings.HasSuffix(raw, "]") {
			return rawSegment{}, newErrorf(ErrValue,
				"malformed index in segment '%s'", raw)
		}

		n, err := strconv.Atoi(raw[i+1 : len(raw)-1])
		if err != nil || n < 1 {
			return rawSegment{}, newErrorf(ErrValue,
				"malformed index in segment '%s'", raw)
		}

		text, index = raw[:i], n
	}

	if text == "" {
		return rawSegment{}, newError(ErrValue, "empty path segment")
	}

	return rawSegment{text: text, index: index}, nil
}

// String renders the path in expanded form, each segment as
// "{namespace}local" with its index when present.
func (p Path) String() string {
	if len(p.Segments) == 0 {
		if p.Absolute {
			return "/"
		}

		return ""
	}

	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 || p.Absolute {
			sb.WriteByte('/')
		}

		sb.WriteString(seg.Name.String())

		if seg.Index > 0 {
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(seg.Index))
			sb.WriteByte(']')
		}
	}

	return sb.String()
}

// IsDescendantOf reports whether p is q or a descendant of q. Both paths
// must be absolute; segment indexes are compared with 0 equal to 1.
func (p Path) IsDescendantOf(q Path) bool {
	if !p.Absolute || !q.Absolute || len(q.Segments) > len(p.Segments) {
		return false
	}

	for i, seg := range q.Segments {
		if p.Segments[i].Name != seg.Name {
			return false
		}

		if normalizeIndex(p.Segments[i].Index) != normalizeIndex(seg.Index) {
			return false
		}
	}

	return true
}

func normalizeIndex(i int) int {
	if i == 0 {
		return 1
	}

	return i
}
