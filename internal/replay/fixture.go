package replay

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/metalaw/internal/resource"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// Metadata keys carried from a Network into synthesis results.
const (
	MetaCategory    = "category"
	MetaDescription = "description"
	MetaNodes       = "nodes"
	MetaNotes       = "notes"
)

//go:embed networks.json
var defaultNetworks []byte

// #region fixture-types

// Fixture is a described list of networks with known emergence flags.
type Fixture struct {
	Description string    `json:"description" yaml:"description"`
	Networks    []Network `json:"networks" yaml:"networks"`
}

// Network is one measured network. S, D and M come from an upstream
// measurement step; Expected is the flag the fixture asserts.
type Network struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string  `json:"category" yaml:"category"`
	S           float64 `json:"S" yaml:"S"`
	D           float64 `json:"D" yaml:"D"`
	M           float64 `json:"M" yaml:"M"`
	Nodes       int64   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Expected    bool    `json:"expected_emergent" yaml:"expected_emergent"`
	Notes       string  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Input converts the network to a synthesis input, carrying the descriptive
// fields as metadata.
func (n Network) Input() synthesis.Input {
	meta := map[string]string{MetaCategory: n.Category}
	if n.Description != "" {
		meta[MetaDescription] = n.Description
	}
	if n.Nodes > 0 {
		meta[MetaNodes] = strconv.FormatInt(n.Nodes, 10)
	}
	if n.Notes != "" {
		meta[MetaNotes] = n.Notes
	}
	return synthesis.Input{Name: n.Name, S: n.S, D: n.D, M: n.M, Metadata: meta}
}

// #endregion fixture-types

// #region fixture-loader

// DefaultFixture returns the embedded reference networks.
func DefaultFixture() *Fixture {
	f, err := ParseFixture(defaultNetworks, FormatJSON)
	if err != nil {
		panic(err)
	}
	return f
}

// Format selects the fixture encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension; anything that is not
// .yaml or .yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFixture reads and parses a JSON or YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", path)
	}
	f, err := ParseFixture(data, FormatFor(path))
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", path)
	}
	return f, nil
}

// ParseFixture decodes and validates a fixture.
func ParseFixture(data []byte, format Format) (*Fixture, error) {
	var f Fixture
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that every network is named and measured in range.
func (f *Fixture) Validate() error {
	if len(f.Networks) == 0 {
		return errors.WithHint(errors.New("fixture has no networks"), "add at least one entry under \"networks\"")
	}
	for i, n := range f.Networks {
		if n.Name == "" {
			return errors.Newf("network %d has no name", i)
		}
		if _, err := resource.New(n.S, n.D, n.M); err != nil {
			return errors.Wrapf(err, "network %d (%s)", i, n.Name)
		}
	}
	return nil
}

// WriteFixture encodes f by the extension of path.
func WriteFixture(path string, f *Fixture) error {
	var data []byte
	var err error
	switch FormatFor(path) {
	case FormatYAML:
		data, err = yaml.Marshal(f)
	default:
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "encode fixture")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write fixture %s", path)
	}
	return nil
}

// FixtureFromResults turns recorded predictions into a fixture whose
// expected flags are the recorded emergence flags. Metadata written by
// Network.Input is restored.
func FixtureFromResults(description string, results []synthesis.Result) *Fixture {
	f := &Fixture{Description: description, Networks: make([]Network, 0, len(results))}
	for _, r := range results {
		n := Network{
			Name:        r.Name,
			Description: r.Metadata[MetaDescription],
			Category:    r.Metadata[MetaCategory],
			S:           r.S,
			D:           r.D,
			M:           r.M,
			Expected:    r.Emergent,
			Notes:       r.Metadata[MetaNotes],
		}
		if nodes, err := strconv.ParseInt(r.Metadata[MetaNodes], 10, 64); err == nil {
			n.Nodes = nodes
		}
		f.Networks = append(f.Networks, n)
	}
	return f
}

// #endregion fixture-loader
