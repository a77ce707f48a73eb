package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/hybrec/internal/config"
)

const fixtureMappings = `{
	"user2idx": {"u1": 0, "u2": 1, "u3": 2},
	"item2idx": {"iA": 0, "iB": 1, "iC": 2},
	"hybrid_w_cf": 0.6,
	"hybrid_w_content": 0.4
}`

func writeArtifacts(t *testing.T, userFactors string) *config.Config {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "artifacts/mappings.json", fixtureMappings)
	writeFile(t, dir, "artifacts/user_factors.csv", userFactors)
	writeFile(t, dir, "artifacts/item_factors.csv", "1,0\n0.9,0.1\n0,1\n")
	writeFile(t, dir, "artifacts/user_content.csv", "1,0\n0,1\n0.5,0.5\n")
	writeFile(t, dir, "artifacts/item_content.csv", "1,0\n0.9,0.1\n0,1\n")
	writeFile(t, dir, "data/items.csv", "item_id,title,brand,category,description,image_url\n"+
		"iA,Alpha,Acme,Kitchen,\"Kettle, steel\",http://img/a\n"+
		"iB,Beta,Acme,Kitchen,,\n"+
		"iC,Gamma,Globex,Garden,,\n")
	writeFile(t, dir, "data/interactions.csv", "user_id,item_id,rating\nghost,iC,5\nghost,iA,3\nu1,iB,4\n")

	cfg := config.Default()
	cfg.Artifacts.Dir = dir
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := writeArtifacts(t, "1,0\n0,1\n0.5,0.5\n")

	snapshot, err := Load(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	assert.Len(t, snapshot.Mappings.User2Idx, 3)
	assert.Equal(t, 0.6, snapshot.Mappings.WCF)
	assert.False(t, snapshot.Store.Swapped())
	assert.Equal(t, "3 × 2", snapshot.Store.ItemCF().Shape())
	assert.Equal(t, 3, snapshot.Catalog.Len())

	item, ok := snapshot.Catalog.Lookup("iA")
	require.True(t, ok)
	assert.Equal(t, "Kettle, steel", item.Description)

	assert.Equal(t, []string{"iC", "iA"}, snapshot.Interactions.History("ghost"))
	assert.Equal(t, 2, snapshot.Interactions.UserCount())
}

func TestLoad_SwapsCFLayout(t *testing.T) {
	cfg := writeArtifacts(t, "1,0\n0,1\n")

	snapshot, err := Load(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	assert.True(t, snapshot.Store.Swapped())
	assert.Equal(t, 3, snapshot.Store.UserCF().Rows())
	assert.Equal(t, 2, snapshot.Store.ItemCF().Rows())
}

func TestLoad_InteractionsOptional(t *testing.T) {
	cfg := writeArtifacts(t, "1,0\n0,1\n0.5,0.5\n")
	require.NoError(t, os.Remove(filepath.Join(cfg.Artifacts.Dir, "data/interactions.csv")))

	snapshot, err := Load(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Interactions.UserCount())
}

func TestLoad_PostgresWithoutURL(t *testing.T) {
	cfg := writeArtifacts(t, "1,0\n0,1\n0.5,0.5\n")
	cfg.Interactions.Source = "postgres"

	snapshot, err := Load(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Interactions.UserCount())
}

func TestLoad_RequiredArtifactFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, dir string)
	}{
		{
			name: "missing mappings",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, "artifacts/mappings.json")))
			},
		},
		{
			name: "invalid mappings",
			mutate: func(t *testing.T, dir string) {
				writeFile(t, dir, "artifacts/mappings.json", `{"user2idx": []}`)
			},
		},
		{
			name: "ragged item factors",
			mutate: func(t *testing.T, dir string) {
				writeFile(t, dir, "artifacts/item_factors.csv", "1,0\n1\n")
			},
		},
		{
			name: "empty item content",
			mutate: func(t *testing.T, dir string) {
				writeFile(t, dir, "artifacts/item_content.csv", "")
			},
		},
		{
			name: "missing items table",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, "data/items.csv")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := writeArtifacts(t, "1,0\n0,1\n0.5,0.5\n")
			tt.mutate(t, cfg.Artifacts.Dir)

			_, err := Load(context.Background(), cfg, quietLogger())
			assert.Error(t, err)
		})
	}
}
