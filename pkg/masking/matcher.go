package masking

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Built-in masking types that ignore the pattern config.
const (
	TypeFull  = "full"
	TypeFirst = "first"
	TypeLast  = "last"
	TypeHash  = "hash"
)

// Strategy masks a non-empty string value.
type Strategy func(value string) string

var builtinStrategies = map[string]Strategy{
	TypeFull:  maskFull,
	TypeFirst: maskAllButFirst,
	TypeLast:  maskAllButLast,
	TypeHash:  maskHash,
}

// regexCache memoizes compiled condition regexes by pattern string. It is
// shared by every Matcher in the process and only ever grows.
var regexCache = struct {
	sync.RWMutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

func compileCached(expr string) (*regexp.Regexp, error) {
	regexCache.RLock()
	re, ok := regexCache.m[expr]
	regexCache.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	regexCache.Lock()
	if existing, ok := regexCache.m[expr]; ok {
		re = existing
	} else {
		regexCache.m[expr] = re
	}
	regexCache.Unlock()
	return re, nil
}

type compiledRule struct {
	re      *regexp.Regexp
	pattern string
}

// Matcher resolves a masking type name to a masking strategy: a built-in
// strategy first, then the ordered pattern rules of its Config.
type Matcher struct {
	strategies map[string]Strategy
	rules      map[string][]compiledRule
}

// MatcherOption customizes a Matcher at construction time.
type MatcherOption func(*Matcher)

// WithStrategy registers an extra named strategy. It takes precedence over
// config rules of the same name.
func WithStrategy(name string, fn Strategy) MatcherOption {
	return func(m *Matcher) {
		if name != "" && fn != nil {
			m.strategies[name] = fn
		}
	}
}

// NewMatcher compiles every condition regex in cfg. An invalid regex is a
// configuration error and is returned immediately.
func NewMatcher(cfg Config, opts ...MatcherOption) (*Matcher, error) {
	m := &Matcher{
		strategies: make(map[string]Strategy, len(builtinStrategies)),
		rules:      make(map[string][]compiledRule, len(cfg)),
	}
	for name, fn := range builtinStrategies {
		m.strategies[name] = fn
	}
	for _, opt := range opts {
		opt(m)
	}

	for maskingType, rules := range cfg {
		compiled := make([]compiledRule, 0, len(rules))
		for i, r := range rules {
			re, err := compileCached(r.ConditionRegex)
			if err != nil {
				return nil, errors.Wrapf(err, "masking type %q rule %d: invalid condition regex %q",
					maskingType, i, r.ConditionRegex)
			}
			compiled = append(compiled, compiledRule{re: re, pattern: r.MaskPattern})
		}
		m.rules[maskingType] = compiled
	}
	return m, nil
}

// Knows reports whether maskingType is a strategy or configured rule set.
func (m *Matcher) Knows(maskingType string) bool {
	if _, ok := m.strategies[maskingType]; ok {
		return true
	}
	_, ok := m.rules[maskingType]
	return ok
}

// Types lists the known masking types in sorted order.
func (m *Matcher) Types() []string {
	names := make([]string, 0, len(m.strategies)+len(m.rules))
	for name := range m.strategies {
		names = append(names, name)
	}
	for name := range m.rules {
		if _, dup := m.strategies[name]; !dup {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MaskValue masks value when it is a non-empty string; anything else is
// returned unchanged.
func (m *Matcher) MaskValue(maskingType string, value any) any {
	s, ok := value.(string)
	if !ok || s == "" {
		return value
	}
	return m.MaskString(maskingType, s)
}

// MaskString applies the named masking type to s. Unknown types and values
// matching none of the type's rules come back unchanged.
func (m *Matcher) MaskString(maskingType, s string) string {
	if s == "" {
		return s
	}
	if fn, ok := m.strategies[maskingType]; ok {
		return fn(s)
	}
	for _, r := range m.rules[maskingType] {
		if r.re.MatchString(s) {
			return ApplyPattern(s, r.pattern)
		}
	}
	return s
}

func maskFull(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

func maskAllButFirst(s string) string {
	r := []rune(s)
	return string(r[0]) + strings.Repeat("*", len(r)-1)
}

func maskAllButLast(s string) string {
	r := []rune(s)
	return strings.Repeat("*", len(r)-1) + string(r[len(r)-1])
}

// maskHash fingerprints s. It is irreversible but unsalted.
func maskHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
