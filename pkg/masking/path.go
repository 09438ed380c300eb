package masking

import (
	"strconv"
	"strings"
)

// PathKind identifies which of the three field-path forms a Path uses.
type PathKind int

const (
	// PathField is plain dotted traversal: "user.profile.email".
	PathField PathKind = iota
	// PathRootArray treats the root itself as an array: "$.email".
	PathRootArray
	// PathMidArray iterates an array found mid-path: "body.$.email".
	PathMidArray
)

const (
	rootArrayPrefix = "$."
	midArrayInfix   = ".$."
)

// Path is a parsed field-path expression.
//
// For PathField, Segments is the full key chain. For PathMidArray, Segments
// locates the array and Elem is resolved against each element. For
// PathRootArray, Segments is empty and Elem is resolved against each element
// of the root. Elem is parsed with the same grammar, so wildcards nest.
type Path struct {
	Kind     PathKind
	Segments []string
	Elem     *Path
}

// ParsePath parses a dotted path expression. It reports false for malformed
// expressions (empty, or a "$" marker with nothing after it); callers treat
// those as no-ops.
func ParsePath(expr string) (Path, bool) {
	if expr == "" {
		return Path{}, false
	}

	if strings.HasPrefix(expr, rootArrayPrefix) {
		elem, ok := ParsePath(expr[len(rootArrayPrefix):])
		if !ok {
			return Path{}, false
		}
		return Path{Kind: PathRootArray, Elem: &elem}, true
	}

	if i := strings.Index(expr, midArrayInfix); i >= 0 {
		arrayPath := expr[:i]
		if arrayPath == "" {
			return Path{}, false
		}
		elem, ok := ParsePath(expr[i+len(midArrayInfix):])
		if !ok {
			return Path{}, false
		}
		return Path{Kind: PathMidArray, Segments: strings.Split(arrayPath, "."), Elem: &elem}, true
	}

	return Path{Kind: PathField, Segments: strings.Split(expr, ".")}, true
}

// String renders the path back into its expression form.
func (p Path) String() string {
	switch p.Kind {
	case PathRootArray:
		return rootArrayPrefix + p.Elem.String()
	case PathMidArray:
		return strings.Join(p.Segments, ".") + midArrayInfix + p.Elem.String()
	default:
		return strings.Join(p.Segments, ".")
	}
}

// Get resolves expr against root. Array forms return the per-element values
// that resolved, collected into a []any. Missing keys report false.
func Get(root any, expr string) (any, bool) {
	p, ok := ParsePath(expr)
	if !ok {
		return nil, false
	}
	return p.Get(root)
}

// Set writes value at expr, creating intermediate maps where keys are
// missing. Array forms write into every element. It reports whether
// anything was written.
func Set(root any, expr string, value any) bool {
	p, ok := ParsePath(expr)
	if !ok {
		return false
	}
	return p.Set(root, value)
}

// Get resolves the path against root.
func (p Path) Get(root any) (any, bool) {
	switch p.Kind {
	case PathRootArray, PathMidArray:
		arr, ok := p.array(root)
		if !ok {
			return nil, false
		}
		out := make([]any, 0, len(arr))
		for _, el := range arr {
			if v, ok := p.Elem.Get(el); ok {
				out = append(out, v)
			}
		}
		return out, true
	default:
		return lookup(root, p.Segments)
	}
}

// Set writes value at the path inside root.
func (p Path) Set(root any, value any) bool {
	switch p.Kind {
	case PathRootArray, PathMidArray:
		arr, ok := p.array(root)
		if !ok {
			return false
		}
		wrote := false
		for _, el := range arr {
			if p.Elem.Set(el, value) {
				wrote = true
			}
		}
		return wrote
	default:
		return assign(root, p.Segments, value)
	}
}

// Apply replaces every existing leaf the path resolves to with fn(leaf).
// Missing leaves are left alone; nothing is created.
func (p Path) Apply(root any, fn func(any) any) {
	switch p.Kind {
	case PathRootArray, PathMidArray:
		arr, ok := p.array(root)
		if !ok {
			return
		}
		for _, el := range arr {
			p.Elem.Apply(el, fn)
		}
	default:
		n := len(p.Segments)
		parent, ok := lookup(root, p.Segments[:n-1])
		if !ok {
			return
		}
		replace(parent, p.Segments[n-1], fn)
	}
}

// array returns the slice an array-form path iterates, if there is one.
func (p Path) array(root any) ([]any, bool) {
	target := root
	if p.Kind == PathMidArray {
		v, ok := lookup(root, p.Segments)
		if !ok {
			return nil, false
		}
		target = v
	}
	arr, ok := target.([]any)
	return arr, ok
}

func lookup(root any, segments []string) (any, bool) {
	cur := root
	for _, seg := range segments {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func child(container any, key string) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case []any:
		i, ok := index(c, key)
		if !ok {
			return nil, false
		}
		return c[i], true
	default:
		return nil, false
	}
}

func replace(container any, key string, fn func(any) any) {
	switch c := container.(type) {
	case map[string]any:
		if v, ok := c[key]; ok {
			c[key] = fn(v)
		}
	case []any:
		if i, ok := index(c, key); ok {
			c[i] = fn(c[i])
		}
	}
}

func assign(root any, segments []string, value any) bool {
	cur := root
	last := len(segments) - 1
	for _, seg := range segments[:last] {
		switch c := cur.(type) {
		case map[string]any:
			if c == nil {
				return false
			}
			next, ok := c[seg]
			if !ok || next == nil {
				created := make(map[string]any)
				c[seg] = created
				next = created
			}
			cur = next
		case []any:
			i, ok := index(c, seg)
			if !ok {
				return false
			}
			cur = c[i]
		default:
			return false
		}
	}

	switch c := cur.(type) {
	case map[string]any:
		if c == nil {
			return false
		}
		c[segments[last]] = value
		return true
	case []any:
		i, ok := index(c, segments[last])
		if !ok {
			return false
		}
		c[i] = value
		return true
	default:
		return false
	}
}

// index parses key as a position inside arr.
func index(arr []any, key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= len(arr) {
		return 0, false
	}
	return i, true
}
