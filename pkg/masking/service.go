package masking

import (
	"sync"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Outcome describes what a single rule did to a payload.
type Outcome string

const (
	OutcomeMasked Outcome = "masked"
	OutcomeNoop   Outcome = "noop"
	OutcomeFailed Outcome = "failed"
)

// Observer is notified once per applied rule.
type Observer func(maskingType string, outcome Outcome)

// Service applies masking rules to JSON-like payloads: trees of
// map[string]any, []any and scalars, as produced by a JSON decode or by
// sanitize.Clone. It is stateless apart from its Matcher and safe for
// concurrent use.
type Service struct {
	matcher  *Matcher
	observer Observer
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithObserver installs an outcome observer, typically a metrics hook.
func WithObserver(fn Observer) ServiceOption {
	return func(s *Service) {
		s.observer = fn
	}
}

// NewService builds a Service over cfg. A nil cfg means DefaultConfig.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m, err := NewMatcher(cfg)
	if err != nil {
		return nil, err
	}
	return NewServiceWithMatcher(m, opts...), nil
}

// NewServiceWithMatcher builds a Service around an existing Matcher.
func NewServiceWithMatcher(m *Matcher, opts ...ServiceOption) *Service {
	s := &Service{matcher: m}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultOnce    sync.Once
	defaultService *Service
)

// DefaultService returns the process-wide Service built from DefaultConfig.
// It is created on first use and never torn down.
func DefaultService() *Service {
	defaultOnce.Do(func() {
		svc, err := NewService(DefaultConfig())
		if err != nil {
			panic(errors.Wrap(err, "built-in masking config"))
		}
		defaultService = svc
	})
	return defaultService
}

// Matcher exposes the underlying rule matcher.
func (s *Service) Matcher() *Matcher {
	return s.matcher
}

// With returns a copy of s with extra options applied.
func (s *Service) With(opts ...ServiceOption) *Service {
	c := *s
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Mask applies rules to data in place and returns data. Rules are applied
// independently in order. Unknown masking types, missing fields, malformed
// paths and non-array values under array paths are skipped silently.
func (s *Service) Mask(data any, rules []Rule) any {
	for _, rule := range rules {
		s.applyRule(data, rule)
	}
	return data
}

func (s *Service) applyRule(data any, rule Rule) {
	defer func() {
		if r := recover(); r != nil {
			s.observe(rule.MaskingType, OutcomeFailed)
		}
	}()

	path, ok := ParsePath(rule.MaskingField)
	if !ok || !s.matcher.Knows(rule.MaskingType) {
		s.observe(rule.MaskingType, OutcomeNoop)
		return
	}

	changed := false
	path.Apply(data, func(v any) any {
		masked := s.maskLeaf(rule, v)
		if !changed && !sameLeaf(v, masked) {
			changed = true
		}
		return masked
	})

	if changed {
		s.observe(rule.MaskingType, OutcomeMasked)
	} else {
		s.observe(rule.MaskingType, OutcomeNoop)
	}
}

// maskLeaf masks one resolved value. With IsArray set and an array value,
// each element is masked; otherwise the value is masked as a scalar, which
// is also what happens when IsArray is set on a non-array.
func (s *Service) maskLeaf(rule Rule, v any) any {
	if rule.IsArray {
		if arr, ok := v.([]any); ok {
			out := make([]any, len(arr))
			for i, el := range arr {
				out[i] = s.matcher.MaskValue(rule.MaskingType, el)
			}
			return out
		}
	}
	return s.matcher.MaskValue(rule.MaskingType, v)
}

func (s *Service) observe(maskingType string, outcome Outcome) {
	if s.observer != nil {
		s.observer(maskingType, outcome)
	}
}

// sameLeaf compares a leaf before and after masking. Only strings and
// string arrays are ever rewritten.
func sameLeaf(before, after any) bool {
	switch b := before.(type) {
	case string:
		a, ok := after.(string)
		return ok && a == b
	case []any:
		a, ok := after.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range b {
			if !sameLeaf(b[i], a[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MaskData deep-copies data through a JSON round trip and masks the copy
// with a Service built from cfg, leaving data untouched.
func MaskData(data any, rules []Rule, cfg Config) (any, error) {
	svc, err := NewService(cfg)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "encode payload")
	}
	var clone any
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return svc.Mask(clone, rules), nil
}
