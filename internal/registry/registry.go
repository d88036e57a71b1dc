package registry

import (
	"github.com/Super-StarX/INIValidator/internal/schema"
	"github.com/Super-StarX/INIValidator/internal/validator"
)

// Well-known schema sections.
const (
	NumberLimitsSection = "NumberLimits"
	LimitsSection       = "Limits"
	ListsSection        = "Lists"
	GlobalsSection      = "Globals"
	SectionsSection     = "Sections"
	RegistriesSection   = "Registries"
)

// Entry maps a registration section of the target document to the type of
// the sections it registers.
type Entry struct {
	Name        string
	Type        string
	CheckExist  bool
	PresetItems []string

	File      string
	Path      string
	FileIndex int
	Line      int
}

// Registry holds every type table of one schema.
type Registry struct {
	Numbers  map[string]validator.NumberRule
	Limits   map[string]validator.LimitRule
	Lists    map[string]validator.ListRule
	Sections map[string]*schema.Dict
	// Globals are validated against the target section of the same name,
	// in schema order.
	Globals []*schema.Dict
	Entries []Entry
}

// New creates and initializes an empty Registry.
func New() *Registry {
	return &Registry{
		Numbers:  make(map[string]validator.NumberRule),
		Limits:   make(map[string]validator.LimitRule),
		Lists:    make(map[string]validator.ListRule),
		Sections: make(map[string]*schema.Dict),
	}
}

// Dispatcher returns a validator wired to the registry's tables.
func (r *Registry) Dispatcher() *validator.Dispatcher {
	return &validator.Dispatcher{
		Numbers:  r.Numbers,
		Limits:   r.Limits,
		Lists:    r.Lists,
		Sections: r.Sections,
	}
}
