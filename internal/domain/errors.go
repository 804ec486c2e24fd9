package domain

import "errors"

var (
	// ErrParameterFile marks a parameter file that is missing or unreadable.
	ErrParameterFile = errors.New("parameter file unavailable")
	// ErrParameterParse marks a parameter file that is not a flat object of strings.
	ErrParameterParse = errors.New("invalid parameter file")
	// ErrParameterNotFound is reported when the document has no parameter with the given name.
	ErrParameterNotFound = errors.New("parameter not found")
	// ErrExpression is returned by documents that reject an expression.
	ErrExpression = errors.New("invalid expression")
	// ErrPersist covers recompute and save failures.
	ErrPersist = errors.New("persist document")
	// ErrPackaging covers result archive failures.
	ErrPackaging = errors.New("package results")
	// ErrDocumentClosed is returned by operations on a released document.
	ErrDocumentClosed = errors.New("document closed")
)
