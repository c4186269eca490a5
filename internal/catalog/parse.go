package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

type document struct {
	Treats []Item `json:"treats"`
}

// Parse decodes a catalog document holding a top-level treats array and
// validates every item. Validation failures surface here, never at pricing
// time.
func Parse(data []byte) ([]Item, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.Treats == nil {
		return nil, fmt.Errorf("%w: missing treats array", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(doc.Treats))
	for _, it := range doc.Treats {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[it.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate item name %q", ErrInvalidCatalog, it.Name)
		}
		seen[it.Name] = struct{}{}
	}
	return doc.Treats, nil
}

// LoadFile reads and parses a catalog document from disk.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}
