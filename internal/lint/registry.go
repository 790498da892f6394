package lint

import (
	"errors"
	"fmt"
)

// Spec describes one linter kind: its option struct T with defaults, and a constructor.
type Spec[T any] struct {
	Name             string
	Description      string
	EnabledByDefault bool
	Correctable      bool
	Defaults         func() T
	New              func(opts T) (Rule, error)
}

// Entry is a registered linter kind.
type Entry struct {
	Name             string
	Description      string
	EnabledByDefault bool
	Correctable      bool
	Order            int

	decode func(raw map[string]any) (any, error)
	build  func(cfg any) (Rule, error)
}

// Decode turns raw option values into the linter's validated option struct.
func (e *Entry) Decode(raw map[string]any) (any, error) {
	return e.decode(raw)
}

// Build constructs a fresh rule from options returned by Decode.
func (e *Entry) Build(cfg any) (Rule, error) {
	rule, err := e.build(cfg)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, &ConfigError{Linter: e.Name, Err: err}
	}
	return rule, nil
}

// Registry maps linter names to constructors. Registration order is rule order.
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Entry)}
}

// Register adds a linter kind. Registering the same name twice panics.
func Register[T any](reg *Registry, spec Spec[T]) {
	if _, dup := reg.byName[spec.Name]; dup {
		panic(fmt.Sprintf("lint: linter %s registered twice", spec.Name))
	}
	entry := &Entry{
		Name:             spec.Name,
		Description:      spec.Description,
		EnabledByDefault: spec.EnabledByDefault,
		Correctable:      spec.Correctable,
		Order:            len(reg.entries),
		decode: func(raw map[string]any) (any, error) {
			var opts T
			if spec.Defaults != nil {
				opts = spec.Defaults()
			}
			if err := DecodeOptions(spec.Name, raw, &opts); err != nil {
				return nil, err
			}
			return opts, nil
		},
		build: func(cfg any) (Rule, error) {
			opts, ok := cfg.(T)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected options type %T", ErrInvalidOption, cfg)
			}
			return spec.New(opts)
		},
	}
	reg.entries = append(reg.entries, entry)
	reg.byName[spec.Name] = entry
}

// Lookup finds a linter kind by name.
func (reg *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := reg.byName[name]
	return e, ok
}

// Entries returns registered kinds in registration order.
func (reg *Registry) Entries() []*Entry {
	return reg.entries
}
