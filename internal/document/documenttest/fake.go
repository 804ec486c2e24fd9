// Package documenttest provides an in-memory document.Document for tests.
package documenttest

import (
	"path/filepath"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

// Fake is an in-memory document. Fields may be set directly by tests before
// use; it is not safe for concurrent use.
type Fake struct {
	DocKind domain.DocumentKind
	DocPath string
	Params  map[string]*FakeParameter
	// SaveErr is returned by RecomputeAndSave.
	SaveErr error
	// CloseErr is returned by Close.
	CloseErr error

	Saves     int
	Closes    int
	SetCalls  []string
	savedWith map[string]string
}

var _ document.Document = (*Fake)(nil)

// New returns an assembly fake at path with the given parameter expressions.
func New(path string, params map[string]string) *Fake {
	f := &Fake{
		DocKind: domain.DocumentKindAssembly,
		DocPath: path,
		Params:  make(map[string]*FakeParameter, len(params)),
	}
	for name, expr := range params {
		f.Params[name] = &FakeParameter{doc: f, name: name, expr: expr}
	}
	return f
}

// FailOn makes SetExpression on name return err.
func (f *Fake) FailOn(name string, err error) {
	if p, ok := f.Params[name]; ok {
		p.SetErr = err
	}
}

// PanicOn makes SetExpression on name panic.
func (f *Fake) PanicOn(name string) {
	if p, ok := f.Params[name]; ok {
		p.Panic = true
	}
}

func (f *Fake) Kind() domain.DocumentKind { return f.DocKind }

func (f *Fake) Path() string { return f.DocPath }

func (f *Fake) DisplayName() string { return filepath.Base(f.DocPath) }

func (f *Fake) Parameter(name string) (document.Parameter, bool) {
	p, ok := f.Params[name]
	if !ok {
		return nil, false
	}
	return p, true
}

func (f *Fake) RecomputeAndSave() error {
	if f.Closes > 0 {
		return domain.ErrDocumentClosed
	}
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Saves++
	f.savedWith = f.Expressions()
	return nil
}

func (f *Fake) Close() error {
	f.Closes++
	return f.CloseErr
}

// Expressions returns the current expression of every parameter.
func (f *Fake) Expressions() map[string]string {
	out := make(map[string]string, len(f.Params))
	for name, p := range f.Params {
		out[name] = p.expr
	}
	return out
}

// Saved returns the expressions at the last successful save, or nil.
func (f *Fake) Saved() map[string]string {
	return f.savedWith
}

// FakeParameter is a parameter of a Fake.
type FakeParameter struct {
	doc    *Fake
	name   string
	expr   string
	SetErr error
	Panic  bool
}

func (p *FakeParameter) Name() string { return p.name }

func (p *FakeParameter) Expression() string { return p.expr }

func (p *FakeParameter) SetExpression(expr string) error {
	p.doc.SetCalls = append(p.doc.SetCalls, p.name)
	if p.Panic {
		panic("host rejected " + p.name)
	}
	if p.SetErr != nil {
		return p.SetErr
	}
	p.expr = expr
	return nil
}
