// Package params reads the flat JSON parameter files handed to a job.
package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/dawrench-labs/dawrench-go/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads path and parses it as a parameter file.
func Load(path string) (domain.ParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ParameterSet{}, fmt.Errorf("%w: %w", domain.ErrParameterFile, err)
	}
	return Parse(data)
}

// Parse decodes a single JSON object whose values are all strings. Values of
// any other JSON type are rejected rather than coerced. Entries keep the order
// of their keys in the document.
func Parse(data []byte) (domain.ParameterSet, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	// The decoder would silently replace invalid bytes with U+FFFD.
	if !utf8.Valid(data) {
		return domain.ParameterSet{}, parseError("invalid UTF-8")
	}
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ParameterSet{}, parseError("empty document")
		}
		return domain.ParameterSet{}, parseError(err.Error())
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return domain.ParameterSet{}, parseError("expected a JSON object")
	}

	var entries []domain.Parameter
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return domain.ParameterSet{}, parseError(err.Error())
		}
		name, ok := keyTok.(string)
		if !ok {
			return domain.ParameterSet{}, parseError("expected an object key")
		}
		valueTok, err := dec.Token()
		if err != nil {
			return domain.ParameterSet{}, parseError(err.Error())
		}
		value, ok := valueTok.(string)
		if !ok {
			return domain.ParameterSet{}, parseError(fmt.Sprintf("value of %q must be a string", name))
		}
		entries = append(entries, domain.Parameter{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return domain.ParameterSet{}, parseError(err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ParameterSet{}, parseError("unexpected data after object")
	}

	set, err := domain.NewParameterSet(entries)
	if err != nil {
		return domain.ParameterSet{}, parseError(err.Error())
	}
	return set, nil
}

func parseError(detail string) error {
	return fmt.Errorf("%w: %s", domain.ErrParameterParse, detail)
}
