// Package category holds the fixed catalog of service categories.
// The catalog ships embedded with the binary; categories are referenced by
// slug from services and lead opportunity listings.
package category

import (
	"fmt"

	"gopkg.in/yaml.v3"

	_ "embed"
)

//go:embed categories.yaml
var rawCatalog []byte

// Category is a single entry in the service catalog.
type Category struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

var (
	catalog []Category
	bySlug  map[string]Category
)

func init() {
	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(rawCatalog, &doc); err != nil {
		panic(fmt.Sprintf("category: invalid embedded catalog: %v", err))
	}

	catalog = doc.Categories
	bySlug = make(map[string]Category, len(catalog))
	for _, c := range catalog {
		bySlug[c.Slug] = c
	}
}

// All returns the full catalog in declaration order.
func All() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// Get returns the category for a slug.
func Get(slug string) (Category, bool) {
	c, ok := bySlug[slug]
	return c, ok
}

// IsValid reports whether the slug names a known category.
func IsValid(slug string) bool {
	_, ok := bySlug[slug]
	return ok
}
