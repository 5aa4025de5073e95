package taxonomy

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed genres.yaml
var defaultData []byte

// Example is one labelled seed text for the subgenre classifier.
type Example struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label"`
}

// Dataset is the taxonomy together with the seed corpus that bootstraps
// the classifier. Both come from the same document so they are versioned
// together.
type Dataset struct {
	Version  int
	Taxonomy *Taxonomy
	Seed     []Example
}

// dataFile is the YAML layout:
//
//	taxonomy:
//	  - genre: Sports
//	    subgenres: [Cricket, Football]
//	seed:
//	  - label: Cricket
//	    text: ...
type dataFile struct {
	Version  int `yaml:"version"`
	Taxonomy []struct {
		Genre     string   `yaml:"genre"`
		Subgenres []string `yaml:"subgenres"`
	} `yaml:"taxonomy"`
	Seed []Example `yaml:"seed"`
}

// Load parses a dataset document and validates it.
func Load(r io.Reader) (*Dataset, error) {
	var df dataFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil {
		return nil, fmt.Errorf("decode genre data: %w", err)
	}

	var entries []Entry
	for _, g := range df.Taxonomy {
		for _, sub := range g.Subgenres {
			entries = append(entries, Entry{Subgenre: sub, MainGenre: g.Genre})
		}
	}

	tax, err := New(entries)
	if err != nil {
		return nil, err
	}

	seed := make([]Example, 0, len(df.Seed))
	for i, ex := range df.Seed {
		text := strings.TrimSpace(ex.Text)
		label := strings.TrimSpace(ex.Label)
		if text == "" {
			return nil, fmt.Errorf("seed example %d (%q): empty text", i, label)
		}
		if !tax.Contains(label) {
			return nil, fmt.Errorf("seed example %d (%q): %w", i, label, ErrUnknownLabel)
		}
		seed = append(seed, Example{Text: text, Label: label})
	}

	return &Dataset{Version: df.Version, Taxonomy: tax, Seed: seed}, nil
}

// LoadFile reads a dataset from disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Default returns the dataset compiled into the binary.
func Default() (*Dataset, error) {
	return Load(bytes.NewReader(defaultData))
}
