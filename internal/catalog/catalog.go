package catalog

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Item is a catalog entry. Only ID is required.
type Item struct {
	ID          string `json:"item_id"`
	Title       string `json:"title"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Catalog holds item metadata in load order with an id index built upfront.
//
// Ids that miss the index (the mapping and the metadata table disagree on
// whitespace or Unicode normalisation form) are resolved once by a linear
// scan over canonical ids. The outcome, hit or miss, is memoised in a
// sync.Map; concurrent writers always store the same value for a key.
type Catalog struct {
	items     []Item
	byID      map[string]int
	recovered sync.Map // string -> int, -1 for a confirmed miss
}

// New builds a catalog from items in load order. Items with an empty id are
// dropped. When an id repeats, the index points at the last occurrence.
func New(items []Item) *Catalog {
	c := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}

	for _, item := range items {
		if item.ID == "" {
			continue
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	return c
}

// Lookup returns the item with the given id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	if pos, ok := c.byID[id]; ok {
		return c.items[pos], true
	}

	if cached, ok := c.recovered.Load(id); ok {
		pos := cached.(int)
		if pos < 0 {
			return Item{}, false
		}
		return c.items[pos], true
	}

	pos := c.scan(id)
	c.recovered.Store(id, pos)
	if pos < 0 {
		return Item{}, false
	}
	return c.items[pos], true
}

func (c *Catalog) scan(id string) int {
	want := Canonical(id)
	if want == "" {
		return -1
	}
	for i := range c.items {
		if Canonical(c.items[i].ID) == want {
			return i
		}
	}
	return -1
}

// Head returns up to limit items in load order.
func (c *Catalog) Head(limit int) []Item {
	if limit <= 0 {
		return nil
	}
	if limit > len(c.items) {
		limit = len(c.items)
	}
	return c.items[:limit]
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Canonical trims surrounding whitespace and applies NFC normalisation.
func Canonical(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
