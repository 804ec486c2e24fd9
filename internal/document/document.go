// Package document defines the capability interface a host exposes for the
// document a job runs against. The host owns the document model; this module
// only reads and writes named parameter expressions through it.
package document

import "github.com/dawrench-labs/dawrench-go/internal/domain"

// Document is a live handle to a host document. At most one job owns a
// handle at a time.
type Document interface {
	// Kind classifies the document.
	Kind() domain.DocumentKind
	// Path is the full file name of the document on disk.
	Path() string
	// DisplayName is a short human readable name.
	DisplayName() string
	// Parameter looks up a user parameter by name.
	Parameter(name string) (Parameter, bool)
	// RecomputeAndSave forces a full update of the document and saves it in place.
	RecomputeAndSave() error
	// Close releases the handle. Calling Close more than once is allowed.
	Close() error
}

// Parameter is a named parameter of a Document.
type Parameter interface {
	Name() string
	Expression() string
	// SetExpression replaces the expression. Documents reject malformed
	// expressions with an error wrapping domain.ErrExpression.
	SetExpression(expr string) error
}
