package artifacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temcen/hybrec/internal/catalog"
)

var itemColumns = []string{"item_id", "title", "brand", "category", "description", "image_url"}

// LoadItems reads the item metadata table. The first row is a header when any
// of its cells names a known column; otherwise columns are positional in
// itemColumns order and the first row is data.
func LoadItems(path string) ([]catalog.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open items %s: %w", path, err)
	}
	defer f.Close()

	items, err := ReadItems(f)
	if err != nil {
		return nil, fmt.Errorf("items %s: %w", path, err)
	}
	return items, nil
}

// ReadItems parses item metadata from r.
func ReadItems(r io.Reader) ([]catalog.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []catalog.Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	positions := positionalColumns()
	var items []catalog.Item
	if looksLikeItemHeader(first) {
		positions = headerColumns(first)
	} else if item, ok := parseItemRow(first, positions); ok {
		items = append(items, item)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if item, ok := parseItemRow(row, positions); ok {
			items = append(items, item)
		}
	}

	return items, nil
}

func looksLikeItemHeader(row []string) bool {
	for _, cell := range row {
		name := normalizeHeader(cell)
		for _, known := range itemColumns {
			if name == known {
				return true
			}
		}
	}
	return false
}

func positionalColumns() map[string]int {
	positions := make(map[string]int, len(itemColumns))
	for i, name := range itemColumns {
		positions[name] = i
	}
	return positions
}

// headerColumns maps column names to header positions, defaulting missing
// columns to their positional index.
func headerColumns(header []string) map[string]int {
	found := make(map[string]int, len(header))
	for i, cell := range header {
		name := normalizeHeader(cell)
		if _, dup := found[name]; !dup {
			found[name] = i
		}
	}

	positions := positionalColumns()
	for name := range positions {
		if i, ok := found[name]; ok {
			positions[name] = i
		}
	}
	return positions
}

func parseItemRow(row []string, positions map[string]int) (catalog.Item, bool) {
	id := cell(row, positions["item_id"])
	if id == "" {
		return catalog.Item{}, false
	}

	return catalog.Item{
		ID:          id,
		Title:       cell(row, positions["title"]),
		Brand:       cell(row, positions["brand"]),
		Category:    cell(row, positions["category"]),
		Description: cell(row, positions["description"]),
		ImageURL:    cell(row, positions["image_url"]),
	}, true
}

// cell returns the canonical value at i, or "" for short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return catalog.Canonical(row[i])
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
