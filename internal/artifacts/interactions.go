package artifacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/interactions"
)

var (
	userColumnNames = []string{"user_id", "user", "uid"}
	itemColumnNames = []string{"item_id", "item", "iid"}
)

// LoadInteractionsCSV reads the optional interactions table. A missing file
// yields ErrNotFound. A header without recognisable user and item columns
// is logged and produces an empty index.
func LoadInteractionsCSV(path string, logger *logrus.Logger) (*interactions.Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("interactions %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open interactions %s: %w", path, err)
	}
	defer f.Close()

	idx, err := ReadInteractions(f, logger)
	if err != nil {
		return nil, fmt.Errorf("interactions %s: %w", path, err)
	}
	return idx, nil
}

// ReadInteractions parses an interactions table with a header row.
func ReadInteractions(r io.Reader, logger *logrus.Logger) (*interactions.Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return interactions.Empty(), nil
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = normalizeHeader(name)
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	userCol, okUser := firstColumn(columns, userColumnNames)
	itemCol, okItem := firstColumn(columns, itemColumnNames)
	if !okUser || !okItem {
		if logger != nil {
			logger.WithField("header", strings.Join(header, ",")).
				Warn("Interactions table is missing user/item columns, continuing without it")
		}
		return interactions.Empty(), nil
	}

	builder := interactions.NewBuilder()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) <= max(userCol, itemCol) {
			continue
		}
		builder.Add(strings.TrimSpace(row[userCol]), strings.TrimSpace(row[itemCol]))
	}

	return builder.Build(), nil
}

func firstColumn(columns map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if i, ok := columns[name]; ok {
			return i, true
		}
	}
	return 0, false
}
