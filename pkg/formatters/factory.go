package formatters

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/wachat/masklog/pkg/types"
)

// Format names understood by the default factory.
const (
	NameJSON = "json"
	NameText = "text"
)

// Constructor builds a fresh formatter for one logger.
type Constructor func() (types.Formatter, error)

// Factory maps format names, as they appear in configuration, to
// constructors.
type Factory struct {
	mu     sync.RWMutex
	byName map[string]Constructor
}

// NewFactory returns a factory that knows the json and text formats.
func NewFactory() *Factory {
	return &Factory{byName: map[string]Constructor{
		NameJSON: func() (types.Formatter, error) { return NewJSONFormatter(), nil },
		NameText: func() (types.Formatter, error) { return NewTextFormatter(), nil },
	}}
}

// Register adds or replaces the constructor for name.
func (f *Factory) Register(name string, c Constructor) error {
	switch {
	case name == "":
		return errors.New("format name cannot be empty")
	case c == nil:
		return errors.Errorf("format %q: constructor cannot be nil", name)
	}

	f.mu.Lock()
	f.byName[name] = c
	f.mu.Unlock()
	return nil
}

// Has reports whether name selects a known format. The empty name selects
// json.
func (f *Factory) Has(name string) bool {
	if name == "" {
		return true
	}
	f.mu.RLock()
	_, ok := f.byName[name]
	f.mu.RUnlock()
	return ok
}

// CreateFormatter builds the formatter for name. An empty name selects JSON.
func (f *Factory) CreateFormatter(name string) (types.Formatter, error) {
	if name == "" {
		name = NameJSON
	}

	f.mu.RLock()
	c, ok := f.byName[name]
	f.mu.RUnlock()
	if !ok {
		return nil, errors.Errorf("unknown format %q (known: %v)", name, f.Names())
	}
	return c()
}

// Names lists the registered format names in sorted order.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.byName))
	for name := range f.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultFactory resolves the format names used by masklog configuration.
// Register custom formats on it before loading configuration.
var DefaultFactory = NewFactory()

// CreateFormatter builds a formatter from DefaultFactory.
func CreateFormatter(name string) (types.Formatter, error) {
	return DefaultFactory.CreateFormatter(name)
}
