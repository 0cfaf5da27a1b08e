package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCatalog is returned when the activities document is not a JSON object.
var ErrInvalidCatalog = errors.New("invalid activities document")

// Catalog is the ordered set of activities returned by the API.
type Catalog []Activity

// Names returns the activity names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, a := range c {
		names[i] = a.Name
	}
	return names
}

// UnmarshalJSON decodes an object of name -> activity, keeping key order.
// A repeated key replaces the earlier activity but keeps its position.
// Every activity must carry a participants list; a missing or null list
// makes the whole document invalid.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrInvalidCatalog, tok)
	}

	var out Catalog
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected key %v", ErrInvalidCatalog, tok)
		}

		var a Activity
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("decoding activity %q: %w", name, err)
		}
		a.Name = name
		if a.Participants == nil {
			return fmt.Errorf("%w: activity %q has no participants list", ErrInvalidCatalog, name)
		}

		if i, seen := index[name]; seen {
			out[i] = a
			continue
		}
		index[name] = len(out)
		out = append(out, a)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	*c = out
	return nil
}

// MarshalJSON encodes the catalog as an object of name -> activity in catalog order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		if a.Participants == nil {
			a.Participants = []string{}
		}
		body, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encoding activity %q: %w", a.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
