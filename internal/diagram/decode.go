package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Decode parses data into a Document. Every top-level key in Categories must
// be present and hold an array. The enumerations key is optional but must be
// an array when present; other unknown keys are ignored. Entries must carry
// their identifying fields: class names must be non-empty, attributes need
// class and name, methods need class and signature, and relationships need
// source, target, and kind.
func Decode(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: document must be a JSON object", ErrInvalidValue)
		}
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}

	var doc Document
	fields := map[Category]any{
		Classes:       &doc.Classes,
		Attributes:    &doc.Attributes,
		Methods:       &doc.Methods,
		Relationships: &doc.Relationships,
	}

	for _, cat := range Categories {
		value, ok := raw[string(cat)]
		if !ok || isNull(value) {
			return nil, fmt.Errorf("%w: %q", ErrMissingKey, cat)
		}
		if err := json.Unmarshal(value, fields[cat]); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidValue, cat, err)
		}
	}

	if value, ok := raw[EnumerationsKey]; ok && !isNull(value) {
		if err := json.Unmarshal(value, &doc.Enumerations); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidValue, EnumerationsKey, err)
		}
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func (d *Document) validate() error {
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }

	for i, c := range d.Classes {
		if blank(c) {
			return fmt.Errorf("%w: classes[%d]: empty class name", ErrInvalidEntry, i)
		}
	}
	for i, a := range d.Attributes {
		if blank(a.Class) || blank(a.Name) {
			return fmt.Errorf("%w: attributes[%d]: class and name required", ErrInvalidEntry, i)
		}
	}
	for i, m := range d.Methods {
		if blank(m.Class) || blank(m.Signature) {
			return fmt.Errorf("%w: methods[%d]: class and signature required", ErrInvalidEntry, i)
		}
	}
	for i, r := range d.Relationships {
		if blank(r.Source) || blank(r.Target) || blank(r.Kind) {
			return fmt.Errorf("%w: relationships[%d]: source, target, and kind required", ErrInvalidEntry, i)
		}
	}
	for i, e := range d.Enumerations {
		if blank(e.Name) {
			return fmt.Errorf("%w: enumerations[%d]: name required", ErrInvalidEntry, i)
		}
		for j, lit := range e.Literals {
			if blank(lit) {
				return fmt.Errorf("%w: enumerations[%d].literals[%d]: empty literal", ErrInvalidEntry, i, j)
			}
		}
	}
	return nil
}
