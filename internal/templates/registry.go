package templates

import (
	"fmt"
	"sort"
)

// Registry is the load-once template catalog. It is immutable after
// construction, so concurrent readers need no locking.
type Registry struct {
	defs    []TemplateDefinition
	byCode  map[string]TemplateDefinition
	schemas map[string]FieldSchema
}

// Filter narrows List results. Nil pointer fields mean "don't care".
type Filter struct {
	Category     string
	CommonlyUsed *bool
	Implemented  *bool
}

// NewRegistry builds the registry from the static catalog.
func NewRegistry() (*Registry, error) {
	return newRegistry(catalog, schemas)
}

func newRegistry(defs []TemplateDefinition, schemaSet map[string]FieldSchema) (*Registry, error) {
	byCode := make(map[string]TemplateDefinition, len(defs))
	for _, def := range defs {
		if _, dup := byCode[def.Code]; dup {
			return nil, fmt.Errorf("duplicate template code %q", def.Code)
		}
		byCode[def.Code] = def
	}

	for code, schema := range schemaSet {
		if _, ok := byCode[code]; !ok {
			return nil, fmt.Errorf("schema for unknown template %q", code)
		}
		if err := validateSchema(schema); err != nil {
			return nil, fmt.Errorf("template %q: %w", code, err)
		}
	}

	ordered := make([]TemplateDefinition, len(defs))
	copy(ordered, defs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SortKey != ordered[j].SortKey {
			return ordered[i].SortKey < ordered[j].SortKey
		}
		return ordered[i].Code < ordered[j].Code
	})

	return &Registry{defs: ordered, byCode: byCode, schemas: schemaSet}, nil
}

// validateSchema enforces the schema invariants: unique field names, and
// dependsOn references naming an earlier field (which also rules out cycles).
func validateSchema(schema FieldSchema) error {
	seen := make(map[string]int, len(schema.Fields))
	for i, f := range schema.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has empty name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = i
	}
	for _, f := range schema.Fields {
		if f.DependsOn == nil {
			continue
		}
		depIdx, ok := seen[f.DependsOn.Field]
		if !ok {
			return fmt.Errorf("field %q depends on unknown field %q", f.Name, f.DependsOn.Field)
		}
		if depIdx >= seen[f.Name] {
			return fmt.Errorf("field %q must be declared after its dependency %q", f.Name, f.DependsOn.Field)
		}
	}
	sigSeen := make(map[string]struct{}, len(schema.Signatures))
	for _, sig := range schema.Signatures {
		if _, dup := sigSeen[sig.ID]; dup {
			return fmt.Errorf("duplicate signature field id %q", sig.ID)
		}
		sigSeen[sig.ID] = struct{}{}
	}
	return nil
}

// List returns templates matching the filter, ordered by sort key ascending
// with ties broken by code.
func (r *Registry) List(f Filter) []TemplateDefinition {
	out := make([]TemplateDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		if f.Category != "" && def.Category != f.Category {
			continue
		}
		if f.CommonlyUsed != nil && def.CommonlyUsed != *f.CommonlyUsed {
			continue
		}
		if f.Implemented != nil && def.Implemented != *f.Implemented {
			continue
		}
		out = append(out, def)
	}
	return out
}

// Get returns the template definition for a code.
func (r *Registry) Get(code string) (TemplateDefinition, error) {
	def, ok := r.byCode[code]
	if !ok {
		return TemplateDefinition{}, ErrNotFound
	}
	return def, nil
}

// Schema returns the field schema for an implemented template.
func (r *Registry) Schema(code string) (FieldSchema, error) {
	if _, ok := r.byCode[code]; !ok {
		return FieldSchema{}, ErrNotFound
	}
	schema, ok := r.schemas[code]
	if !ok {
		return FieldSchema{}, ErrNoSchema
	}
	return schema, nil
}
