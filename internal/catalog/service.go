package catalog

import (
	"errors"
)

// Service holds the loaded catalog and answers lookups. Items are immutable
// after construction so reads need no locking.
type Service struct {
	items []Item
}

// NewService validates the provided items and wraps them in a Service.
func NewService(items []Item) (*Service, error) {
	if len(items) == 0 {
		return nil, errors.New("catalog service requires at least one item")
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[it.Name]; dup {
			return nil, errors.Join(ErrInvalidCatalog, errors.New("duplicate item name "+it.Name))
		}
		seen[it.Name] = struct{}{}
	}
	copied := make([]Item, len(items))
	copy(copied, items)
	return &Service{items: copied}, nil
}

// List returns the catalog items in document order.
func (s *Service) List() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Lookup finds an item by its exact name. Absence is a hard error; a cart
// must never reference a product outside the catalog.
func (s *Service) Lookup(name string) (Item, error) {
	return Find(s.items, name)
}

// Len reports the number of items loaded.
func (s *Service) Len() int {
	return len(s.items)
}
