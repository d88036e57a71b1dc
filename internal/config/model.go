package config

import (
	"context"
	"sort"
)

// Loader is the interface for a format-specific settings loader.
type Loader interface {
	// Load reads every file at paths, in order, and merges them into one
	// Model. Later files override earlier ones.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is the unified, format-agnostic representation of the tool
// settings.
type Model struct {
	Schema          string
	ScriptsDir      string
	FileType        string
	MaxStringLength int
	// OptionalReferenceTypes are section types whose references may point at
	// undefined sections without a diagnostic. nil means unset.
	OptionalReferenceTypes []string
	// Severities maps a diagnostic code to a level name.
	Severities map[string]string
	// Sources lists the files the model was loaded from.
	Sources []string
}

// New creates an empty Model.
func New() *Model {
	return &Model{Severities: make(map[string]string)}
}

// Merge copies every set field of o over m.
func (m *Model) Merge(o *Model) {
	if o == nil {
		return
	}
	if o.Schema != "" {
		m.Schema = o.Schema
	}
	if o.ScriptsDir != "" {
		m.ScriptsDir = o.ScriptsDir
	}
	if o.FileType != "" {
		m.FileType = o.FileType
	}
	if o.MaxStringLength != 0 {
		m.MaxStringLength = o.MaxStringLength
	}
	if o.OptionalReferenceTypes != nil {
		m.OptionalReferenceTypes = append([]string{}, o.OptionalReferenceTypes...)
	}
	if m.Severities == nil {
		m.Severities = make(map[string]string, len(o.Severities))
	}
	for code, level := range o.Severities {
		m.Severities[code] = level
	}
	m.Sources = append(m.Sources, o.Sources...)
}

// SeverityCodes returns the codes with a configured level, sorted.
func (m *Model) SeverityCodes() []string {
	codes := make([]string, 0, len(m.Severities))
	for c := range m.Severities {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
