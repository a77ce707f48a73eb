package artifacts

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/temcen/hybrec/internal/vectorstore"
)

const maxMatrixLine = 64 * 1024 * 1024

// LoadMatrix reads a headerless comma-separated matrix, one row per line.
// Blank lines are skipped. Every row must have the same width.
func LoadMatrix(path string) (*vectorstore.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMatrixLine)

	var rows [][]float64
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		row, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("matrix %s line %d: %w", path, line, err)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("matrix %s line %d: %d columns, expected %d: %w",
				path, line, len(row), len(rows[0]), vectorstore.ErrRaggedRows)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matrix %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("matrix %s: %w", path, ErrEmptyMatrix)
	}

	m, err := vectorstore.NewMatrix(rows)
	if err != nil {
		return nil, fmt.Errorf("matrix %s: %w", path, err)
	}
	return m, nil
}

func parseRow(text string) ([]float64, error) {
	cells := strings.Split(text, ",")
	row := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		row[i] = v
	}
	return row, nil
}
