package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

const tomlRules = `
[[rules]]
action = "drop"
data_source = "PubChem :: computed properties"

[[rules]]
action = "keep"
predicate = "atc:level[34]"
min_weight = 0.5
`

const yamlRules = `
rules:
  - action: drop
    data_source: "PubChem :: computed properties"
  - action: keep
    predicate: "atc:level[34]"
    min_weight: 0.5
`

func filterHits() []model.Hit {
	return []model.Hit{
		{OriginID: "A", DataSource: "ChEMBL :: ATC codes", Predicate: "atc:level3", ObjectID: "N05C", Weight: 1},
		{OriginID: "A", DataSource: "ChEMBL :: ATC codes", Predicate: "atc:level3", ObjectID: "N02B", Weight: 0.1},
		{OriginID: "A", DataSource: "ChEMBL :: ATC codes", Predicate: "atc:level5", ObjectID: "N05CA01", Weight: 1},
		{OriginID: "A", DataSource: "PubChem :: computed properties", Predicate: "atc:level3", ObjectID: "x", Weight: 1},
	}
}

func TestFiltrationTOML(t *testing.T) {
	f, err := ParseTOMLRules([]byte(tomlRules))
	require.NoError(t, err)

	out := f.Apply(filterHits())
	require.Len(t, out, 1)
	assert.Equal(t, "N05C", out[0].ObjectID)
}

func TestFiltrationYAML(t *testing.T) {
	f, err := ParseYAMLRules([]byte(yamlRules))
	require.NoError(t, err)

	out := f.Apply(filterHits())
	require.Len(t, out, 1)
	assert.Equal(t, "N05C", out[0].ObjectID)
}

func TestFiltrationDropOnly(t *testing.T) {
	f, err := ParseYAMLRules([]byte(`
rules:
  - action: drop
    predicate: "atc:level5"
`))
	require.NoError(t, err)

	out := f.Apply(filterHits())
	// Without keep rules everything not dropped survives.
	assert.Len(t, out, 3)
	for _, h := range out {
		assert.NotEqual(t, "atc:level5", h.Predicate)
	}
}

func TestFiltrationPatternsMatchWholeField(t *testing.T) {
	f, err := ParseYAMLRules([]byte(`
rules:
  - action: keep
    predicate: "atc:level"
`))
	require.NoError(t, err)

	// "atc:level" is a prefix of every predicate but matches none outright.
	assert.Empty(t, f.Apply(filterHits()))
}

func TestFiltrationRejectsUnknownAction(t *testing.T) {
	_, err := ParseYAMLRules([]byte(`
rules:
  - action: discard
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestFiltrationRejectsBadPattern(t *testing.T) {
	_, err := ParseTOMLRules([]byte("[[rules]]\naction = \"keep\"\npredicate = \"[\"\n"))
	require.Error(t, err)
}

func TestLoadFiltrationByExtension(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "rules.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlRules), 0o644))
	f, err := LoadFiltration(tomlPath)
	require.NoError(t, err)
	assert.Len(t, f.Rules(), 2)

	yamlPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlRules), 0o644))
	f, err = LoadFiltration(yamlPath)
	require.NoError(t, err)
	assert.Len(t, f.Rules(), 2)

	jsonPath := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o644))
	_, err = LoadFiltration(jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported rules format")
}
