package panel

import (
	"fmt"

	"github.com/centralelevate/elevate/internal/product"
)

// Filter selects which products are visible.
type Filter int

const (
	FilterAll Filter = iota
	FilterStarred
)

// ParseFilter accepts "all" (or "") and "starred".
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", "all":
		return FilterAll, nil
	case "starred":
		return FilterStarred, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q", s)
}

func (f Filter) String() string {
	if f == FilterStarred {
		return "starred"
	}
	return "all"
}

// Apply returns the visible subset of products, preserving order.
func (f Filter) Apply(products []product.Product) []product.Product {
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if f == FilterStarred && !p.IsStarred {
			continue
		}
		out = append(out, p)
	}
	return out
}
