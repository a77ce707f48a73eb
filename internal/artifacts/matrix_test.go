package artifacts

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/hybrec/internal/vectorstore"
)

func TestLoadMatrix(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid matrix", func(t *testing.T) {
		path := writeFile(t, dir, "ok.csv", "1,0\n0.9, 0.1\n\n0,1e-3\n")

		m, err := LoadMatrix(path)
		require.NoError(t, err)
		assert.Equal(t, 3, m.Rows())
		assert.Equal(t, 2, m.Cols())
		assert.Equal(t, []float64{0.9, 0.1}, m.Row(1))
		assert.Equal(t, []float64{0, 0.001}, m.Row(2))
	})

	t.Run("windows line endings", func(t *testing.T) {
		path := writeFile(t, dir, "crlf.csv", "1,2\r\n3,4\r\n")

		m, err := LoadMatrix(path)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4}, m.Row(1))
	})

	t.Run("ragged rows", func(t *testing.T) {
		path := writeFile(t, dir, "ragged.csv", "1,2\n3\n")

		_, err := LoadMatrix(path)
		assert.ErrorIs(t, err, vectorstore.ErrRaggedRows)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("non numeric cell", func(t *testing.T) {
		path := writeFile(t, dir, "bad.csv", "1,2\n3,x\n")

		_, err := LoadMatrix(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.csv", "\n\n")

		_, err := LoadMatrix(path)
		assert.ErrorIs(t, err, ErrEmptyMatrix)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadMatrix(filepath.Join(dir, "nope.csv"))
		assert.Error(t, err)
	})
}
