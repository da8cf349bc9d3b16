package category

import "testing"

func TestCatalogLoads(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatal("embedded catalog is empty")
	}

	seen := make(map[string]bool)
	for _, c := range all {
		if c.Slug == "" || c.Name == "" {
			t.Errorf("category %+v missing slug or name", c)
		}
		if seen[c.Slug] {
			t.Errorf("duplicate slug %q", c.Slug)
		}
		seen[c.Slug] = true
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("plumbing") {
		t.Error("plumbing should be a valid category")
	}
	if IsValid("underwater-basket-weaving") {
		t.Error("unknown slug should be invalid")
	}
}

func TestGet(t *testing.T) {
	c, ok := Get("home-cleaning")
	if !ok {
		t.Fatal("home-cleaning should exist")
	}
	if c.Name != "Home Cleaning" {
		t.Errorf("name = %q, want Home Cleaning", c.Name)
	}
}
