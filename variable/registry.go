package variable

import (
	_ "embed"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"

	"github.com/goccy/go-yaml"
)

// Namespace groups related variables offered for autocomplete.
type Namespace string

const (
	NamespaceSystem       Namespace = "system"
	NamespaceCustomer     Namespace = "customer_data"
	NamespaceConversation Namespace = "conversation_context"
	NamespaceCommon       Namespace = "common"
	NamespaceCustom       Namespace = "custom"
)

// CustomFrequency is the frequency prior applied to custom variables.
const CustomFrequency = 0.5

// Entry describes one well-known variable.
type Entry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Example     string   `yaml:"example"`
	Type        Type     `yaml:"type"`
	Frequency   float64  `yaml:"frequency"`
	Aliases     []string `yaml:"aliases,omitempty"`
}

type namespaceDoc struct {
	Name      Namespace `yaml:"name"`
	Source    Source    `yaml:"source"`
	Variables []Entry   `yaml:"variables"`
}

type registryDoc struct {
	Namespaces []namespaceDoc `yaml:"namespaces"`
}

type location struct {
	ns  Namespace
	idx int
}

// Registry is an immutable table of well-known variables keyed by namespace.
type Registry struct {
	order   []Namespace
	sources map[Namespace]Source
	entries map[Namespace][]Entry
	index   map[string]location
}

//go:embed registry.yaml
var registryYAML []byte

// DefaultRegistry returns the registry embedded in the package.
var DefaultRegistry = sync.OnceValue(func() *Registry {
	reg, err := ParseRegistry(registryYAML)
	if err != nil {
		panic(err)
	}

	return reg
})

// LoadRegistry reads a registry document from r.
func LoadRegistry(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrRegistry.Wrap(err)
	}

	return ParseRegistry(data)
}

// ParseRegistry parses a YAML registry document.
func ParseRegistry(data []byte) (*Registry, error) {
	var doc registryDoc

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrRegistry.Wrap(err)
	}

	reg := &Registry{
		sources: make(map[Namespace]Source, len(doc.Namespaces)),
		entries: make(map[Namespace][]Entry, len(doc.Namespaces)),
		index:   make(map[string]location),
	}

	for _, ns := range doc.Namespaces {
		if ns.Name == "" || ns.Name == NamespaceCustom {
			return nil, ErrRegistry.With(slog.String("namespace", string(ns.Name)))
		}

		if _, dup := reg.entries[ns.Name]; dup {
			return nil, ErrRegistry.Wrap(fmt.Errorf("duplicate namespace %q", ns.Name))
		}

		if ns.Source == "" {
			ns.Source = SourceManual
		}

		if !ns.Source.Valid() {
			return nil, ErrUnknownSource.With(
				slog.String("namespace", string(ns.Name)),
				slog.String("source", string(ns.Source)))
		}

		for i := range ns.Variables {
			e := &ns.Variables[i]

			if !ValidName(e.Name) {
				return nil, ErrInvalidName.With(slog.String("name", e.Name))
			}

			if e.Type == "" {
				e.Type = TypeText
			}

			if !e.Type.Valid() {
				return nil, ErrUnknownType.With(
					slog.String("name", e.Name),
					slog.String("type", string(e.Type)))
			}

			if e.Frequency <= 0 || e.Frequency > 1 {
				return nil, ErrRegistry.Wrap(
					fmt.Errorf("frequency of %q must be in (0, 1]", e.Name))
			}

			if _, dup := reg.index[e.Name]; dup {
				return nil, ErrRegistry.Wrap(
					fmt.Errorf("duplicate variable %q", e.Name))
			}

			reg.index[e.Name] = location{ns: ns.Name, idx: i}
		}

		reg.order = append(reg.order, ns.Name)
		reg.sources[ns.Name] = ns.Source
		reg.entries[ns.Name] = ns.Variables
	}

	return reg, nil
}

// Namespaces returns the namespaces in document order.
func (r *Registry) Namespaces() []Namespace {
	return append([]Namespace(nil), r.order...)
}

// Source returns the source that supplies values for namespace ns.
func (r *Registry) Source(ns Namespace) Source {
	if s, ok := r.sources[ns]; ok {
		return s
	}

	return SourceManual
}

// Entries returns the variables of namespace ns.
func (r *Registry) Entries(ns Namespace) []Entry {
	return r.entries[ns]
}

// All iterates every entry in namespace and document order.
func (r *Registry) All() iter.Seq2[Namespace, Entry] {
	return func(yield func(Namespace, Entry) bool) {
		for _, ns := range r.order {
			for _, e := range r.entries[ns] {
				if !yield(ns, e) {
					return
				}
			}
		}
	}
}

// Lookup returns the entry named name and its namespace.
func (r *Registry) Lookup(name string) (Entry, Namespace, bool) {
	loc, ok := r.index[name]
	if !ok {
		return Entry{}, "", false
	}

	return r.entries[loc.ns][loc.idx], loc.ns, true
}

// Aliases returns name followed by its registered aliases.
func (r *Registry) Aliases(name string) []string {
	e, _, ok := r.Lookup(name)
	if !ok {
		return []string{name}
	}

	return append([]string{name}, e.Aliases...)
}
