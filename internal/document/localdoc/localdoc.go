// Package localdoc is a file-backed stand-in for a host document. It lets the
// debug harness and tests drive a job without the modeling engine: the file is
// a YAML list of named parameter expressions and nothing is evaluated.
package localdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

type fileFormat struct {
	Kind       string       `yaml:"kind,omitempty"`
	Parameters []paramEntry `yaml:"parameters"`
}

type paramEntry struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// Document is an open local document.
type Document struct {
	path     string
	rawKind  string
	kind     domain.DocumentKind
	params   []*Parameter
	byName   map[string]*Parameter
	closed   bool
	revision int
}

var _ document.Document = (*Document)(nil)

// Open reads the document at path. The kind comes from the file's kind field,
// falling back to the extension (.iam assembly, .ipt part).
func Open(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve document path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", filepath.Base(abs), err)
	}

	kind := domain.ParseDocumentKind(strings.TrimPrefix(filepath.Ext(abs), "."))
	if strings.TrimSpace(ff.Kind) != "" {
		kind = domain.ParseDocumentKind(ff.Kind)
	}

	doc := &Document{
		path:    abs,
		rawKind: ff.Kind,
		kind:    kind,
		byName:  make(map[string]*Parameter, len(ff.Parameters)),
	}
	for _, entry := range ff.Parameters {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, errors.New("document parameter name is required")
		}
		if _, ok := doc.byName[name]; ok {
			return nil, fmt.Errorf("duplicate document parameter %q", name)
		}
		p := &Parameter{doc: doc, name: name, expr: entry.Expression}
		doc.params = append(doc.params, p)
		doc.byName[name] = p
	}
	return doc, nil
}

func (d *Document) Kind() domain.DocumentKind { return d.kind }

func (d *Document) Path() string { return d.path }

func (d *Document) DisplayName() string { return filepath.Base(d.path) }

// Revision counts successful saves since Open.
func (d *Document) Revision() int { return d.revision }

func (d *Document) Closed() bool { return d.closed }

func (d *Document) Parameter(name string) (document.Parameter, bool) {
	if d.closed {
		return nil, false
	}
	p, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return p, true
}

func (d *Document) RecomputeAndSave() error {
	if d.closed {
		return domain.ErrDocumentClosed
	}
	ff := fileFormat{Kind: d.rawKind, Parameters: make([]paramEntry, 0, len(d.params))}
	for _, p := range d.params {
		ff.Parameters = append(ff.Parameters, paramEntry{Name: p.name, Expression: p.expr})
	}
	data, err := yaml.Marshal(ff)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	d.revision++
	return nil
}

func (d *Document) Close() error {
	d.closed = true
	return nil
}

// Parameter is a user parameter of a local document.
type Parameter struct {
	doc  *Document
	name string
	expr string
}

func (p *Parameter) Name() string { return p.name }

func (p *Parameter) Expression() string { return p.expr }

func (p *Parameter) SetExpression(expr string) error {
	if p.doc.closed {
		return domain.ErrDocumentClosed
	}
	if err := validateExpression(expr); err != nil {
		return err
	}
	p.expr = strings.TrimSpace(expr)
	return nil
}

func validateExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("%w: expression is empty", domain.ErrExpression)
	}
	depth := 0
	for _, r := range expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unbalanced parentheses in %q", domain.ErrExpression, expr)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: unbalanced parentheses in %q", domain.ErrExpression, expr)
	}
	return nil
}
