// Package catalog provides the read-only table of known problems that new
// review items are seeded from.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/yangwenmai/leetreview/internal/model"
)

//go:embed problems.json
var builtin []byte

// Catalog is an immutable list of entries indexed by id.
type Catalog struct {
	entries []model.CatalogEntry
	byID    map[string]int
}

// Builtin returns the catalog bundled with the binary.
func Builtin() (*Catalog, error) {
	return Decode(bytes.NewReader(builtin))
}

// Open reads a catalog from a JSON file shaped like the bundled one.
func Open(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON array of entries. Entries need a non-empty unique id,
// a name, a url and a difficulty.
func Decode(r io.Reader) (*Catalog, error) {
	var entries []model.CatalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{entries: entries, byID: make(map[string]int, len(entries))}
	for i, e := range entries {
		if e.ID == "" || e.Name == "" || e.URL == "" {
			return nil, fmt.Errorf("catalog entry %d: id, name and url are required", i)
		}
		if !e.Difficulty.Valid() {
			return nil, fmt.Errorf("catalog entry %d (%s): difficulty is required", i, e.ID)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, e.ID)
		}
		c.byID[e.ID] = i
	}
	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// All returns every entry in catalog order.
func (c *Catalog) All() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = clone(e)
	}
	return out
}

// Get looks an entry up by id.
func (c *Catalog) Get(id string) (model.CatalogEntry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return clone(c.entries[i]), true
}

// Search returns entries whose name contains query, ignoring case.
// An empty query matches nothing.
func (c *Catalog) Search(query string) []model.CatalogEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []model.CatalogEntry
	for _, e := range c.entries {
		if strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, clone(e))
		}
	}
	return out
}

func clone(e model.CatalogEntry) model.CatalogEntry {
	e.Tags = slices.Clone(e.Tags)
	return e
}
