package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Parameter is one named expression of a ParameterSet.
type Parameter struct {
	Name  string
	Value string
}

// ParameterSet is an immutable, name-unique list of parameter updates. Entries
// keep the order they were loaded in.
type ParameterSet struct {
	entries []Parameter
	index   map[string]int
}

// NewParameterSet validates names and builds a set. Names must be non-empty
// and unique.
func NewParameterSet(entries []Parameter) (ParameterSet, error) {
	set := ParameterSet{
		entries: make([]Parameter, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" {
			return ParameterSet{}, errors.New("parameter name is required")
		}
		if _, ok := set.index[entry.Name]; ok {
			return ParameterSet{}, fmt.Errorf("duplicate parameter %q", entry.Name)
		}
		set.index[entry.Name] = len(set.entries)
		set.entries = append(set.entries, entry)
	}
	return set, nil
}

func (s ParameterSet) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the set in load order.
func (s ParameterSet) Entries() []Parameter {
	out := make([]Parameter, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s ParameterSet) Names() []string {
	out := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.Name)
	}
	return out
}

func (s ParameterSet) Get(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.entries[i].Value, true
}

// ParameterOutcome records what happened to one parameter of a job.
type ParameterOutcome struct {
	Name        string `json:"name"`
	Applied     bool   `json:"applied"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

func AppliedOutcome(name string) ParameterOutcome {
	return ParameterOutcome{Name: name, Applied: true}
}

func FailedOutcome(name string, err error) ParameterOutcome {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return ParameterOutcome{Name: name, ErrorDetail: detail}
}
