// Package importer turns envelope-normalized bank statement exports into
// model.ParsedStatement values. One Extractor exists per supported format.
package importer

import (
	"slices"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// Extractor converts a normalized document of one format into a statement.
// It never fails: a document it cannot read yields no transactions.
type Extractor interface {
	Extract(normalized string) *model.ParsedStatement
	Format() model.Format
}

// Registry holds extractors keyed by format.
type Registry struct {
	extractors map[model.Format]Extractor
}

// Options configures the built-in extractors.
type Options struct {
	Dialects       DialectTable // zero value uses DefaultDialects
	MaxFieldLength int          // zero uses DefaultMaxFieldLength
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[model.Format]Extractor)}
}

// Register adds an extractor. Panics on duplicate format.
func (r *Registry) Register(e Extractor) {
	f := e.Format()
	if _, ok := r.extractors[f]; ok {
		panic("duplicate extractor format: " + string(f))
	}
	r.extractors[f] = e
}

// Get returns the extractor for format, or nil.
func (r *Registry) Get(format model.Format) Extractor {
	return r.extractors[format]
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []model.Format {
	out := make([]model.Format, 0, len(r.extractors))
	for f := range r.extractors {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// DefaultRegistry returns a registry with all built-in extractors.
func DefaultRegistry() *Registry {
	return NewDefaultRegistry(Options{})
}

// NewDefaultRegistry returns a registry with all built-in extractors
// configured by opts.
func NewDefaultRegistry(opts Options) *Registry {
	dialects := opts.Dialects
	if dialects.empty() {
		dialects = DefaultDialects()
	}
	r := NewRegistry()
	r.Register(&CamtExtractor{MaxFieldLength: opts.MaxFieldLength})
	r.Register(&MT940Extractor{MaxFieldLength: opts.MaxFieldLength})
	r.Register(&NationalExtractor{Dialects: dialects, MaxFieldLength: opts.MaxFieldLength})
	return r
}
