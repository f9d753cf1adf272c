package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/metalaw/internal/resource"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

func TestDefaultFixture(t *testing.T) {
	f := DefaultFixture()
	require.Len(t, f.Networks, 19)

	counts := map[string]int{}
	for _, n := range f.Networks {
		counts[n.Category]++
	}
	assert.Equal(t, map[string]int{
		"biological":     4,
		"artificial":     5,
		"social":         5,
		"infrastructure": 3,
		"ecosystem":      2,
	}, counts)

	human := f.Networks[3]
	assert.Equal(t, "Human Brain", human.Name)
	assert.Equal(t, int64(86000000000), human.Nodes)
	assert.True(t, human.Expected)
}

func TestNetworkInput(t *testing.T) {
	n := Network{Name: "x", Category: "social", Description: "d", S: 0.1, D: 0.2, M: 0.3, Nodes: 10, Notes: "n"}
	in := n.Input()
	assert.Equal(t, "x", in.Name)
	assert.Equal(t, 0.2, in.D)
	assert.Equal(t, map[string]string{
		MetaCategory:    "social",
		MetaDescription: "d",
		MetaNodes:       "10",
		MetaNotes:       "n",
	}, in.Metadata)

	bare := Network{Name: "y", Category: "c"}.Input()
	assert.Equal(t, map[string]string{MetaCategory: "c"}, bare.Metadata)
}

func TestParseFixtureYAML(t *testing.T) {
	data := []byte(`
description: yaml fixture
networks:
  - name: Team
    category: social
    S: 0.5
    D: 0.6
    M: 0.4
    nodes: 10
    expected_emergent: true
`)
	f, err := ParseFixture(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, f.Networks, 1)
	assert.Equal(t, "yaml fixture", f.Description)
	assert.Equal(t, 0.6, f.Networks[0].D)
	assert.True(t, f.Networks[0].Expected)
}

func TestParseFixtureRejectsOutOfRange(t *testing.T) {
	_, err := ParseFixture([]byte(`{"networks":[{"name":"bad","S":0.5,"D":1.5,"M":0.1}]}`), FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, resource.ErrOutOfRange)
	assert.Contains(t, err.Error(), "network 0 (bad)")
}

func TestParseFixtureRejectsEmptyAndUnnamed(t *testing.T) {
	_, err := ParseFixture([]byte(`{"networks":[]}`), FormatJSON)
	assert.Error(t, err)

	_, err = ParseFixture([]byte(`{"networks":[{"S":0.5,"D":0.5,"M":0.1}]}`), FormatJSON)
	assert.ErrorContains(t, err, "no name")

	_, err = ParseFixture([]byte(`{not json`), FormatJSON)
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("a.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("a.YML"))
	assert.Equal(t, FormatJSON, FormatFor("a.json"))
	assert.Equal(t, FormatJSON, FormatFor("a"))
}

func TestWriteAndLoadFixture(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFixture(path, DefaultFixture()))

			got, err := LoadFixture(path)
			require.NoError(t, err)
			assert.Equal(t, DefaultFixture(), got)
		})
	}
}

func TestLoadFixtureMissing(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFixtureFromResults(t *testing.T) {
	n := DefaultFixture().Networks[0]
	r, err := synthesis.New().Predict(n.Input())
	require.NoError(t, err)

	f := FixtureFromResults("exported", []synthesis.Result{r})
	require.Len(t, f.Networks, 1)
	assert.Equal(t, "exported", f.Description)
	assert.Equal(t, n, f.Networks[0])
}
