package schema

import (
	"fmt"
	"sort"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rpattn/koreng/internal/domain"
	"github.com/rpattn/koreng/internal/schema/validator"
)

// Definition is the static field table of one entity type.
type Definition struct {
	Name   string
	Table  string
	Key    string
	Fields []domain.FieldDescriptor
}

// Registry resolves entity names to descriptors. Definitions are registered at
// startup; descriptors are built on first use and cached for the process lifetime.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition

	descriptors sync.Map // map[string]*domain.EntityDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// Register adds an entity definition. Names are stored as declared and must be unique.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("entity definition has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("entity %s already registered", def.Name)
	}
	r.definitions[def.Name] = def
	return nil
}

// MustRegister registers every definition and panics on the first failure.
func (r *Registry) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Names returns the registered entity names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the descriptor for an entity name. The first letter of the
// name is upper-cased before lookup, so "customer" resolves "Customer".
func (r *Registry) Describe(name string) (*domain.EntityDescriptor, error) {
	typeName := capitalize(name)
	if cached, ok := r.descriptors.Load(typeName); ok {
		return cached.(*domain.EntityDescriptor), nil
	}

	r.mu.RLock()
	def, ok := r.definitions[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, name)
	}

	desc, err := r.build(def)
	if err != nil {
		return nil, err
	}

	actual, _ := r.descriptors.LoadOrStore(typeName, desc)
	return actual.(*domain.EntityDescriptor), nil
}

// Model returns the client schema of an entity: output key to schema type for
// every visible field.
func (r *Registry) Model(name string) (map[string]string, error) {
	desc, err := r.Describe(name)
	if err != nil {
		return nil, err
	}
	return Model(desc), nil
}

// Model maps the visible fields of a descriptor to their schema types.
func Model(desc *domain.EntityDescriptor) map[string]string {
	fields := desc.VisibleFields()
	model := make(map[string]string, len(fields))
	for _, field := range fields {
		model[field.OutputKey()] = field.Kind.SchemaType()
	}
	return model
}

// Columns lists the visible output keys of a descriptor in declaration order.
func Columns(desc *domain.EntityDescriptor) []string {
	fields := desc.VisibleFields()
	columns := make([]string, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, field.OutputKey())
	}
	return columns
}

func (r *Registry) build(def Definition) (*domain.EntityDescriptor, error) {
	desc, err := domain.NewEntityDescriptor(def.Name, def.Table, def.Key, def.Fields)
	if err != nil {
		return nil, fmt.Errorf("build descriptor: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	known := func(name string) bool {
		_, ok := r.definitions[name]
		return ok
	}
	if err := validator.ValidateFields(desc.Name, desc.Fields, known); err != nil {
		return nil, fmt.Errorf("build descriptor: %w", err)
	}

	return desc, nil
}

func capitalize(name string) string {
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError || !unicode.IsLower(first) {
		return name
	}
	return string(unicode.ToTitle(first)) + name[size:]
}
