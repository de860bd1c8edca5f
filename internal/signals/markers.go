// Package signals detects confidence-relevant speech patterns in transcripts.
// Detection is purely lexical: curated marker phrases matched as
// case-insensitive substrings, plus a handful of whole-transcript regexp
// checks. No syntax or part-of-speech analysis.
package signals

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed markers.yaml
var defaultMarkersYAML []byte

// Dictionary holds the five marker phrase lists. Load it once at startup and
// pass it into the detector explicitly; it is read-only after construction.
type Dictionary struct {
	Ownership     []string `yaml:"ownership"`
	LowConfidence []string `yaml:"low_confidence"`
	Engagement    []string `yaml:"engagement"`
	Structure     []string `yaml:"structure"`
	Repair        []string `yaml:"repair"`
}

// DefaultDictionary returns the built-in marker lists.
func DefaultDictionary() (*Dictionary, error) {
	return parseDictionary(defaultMarkersYAML)
}

// LoadDictionary reads marker lists from a YAML file, for deployments that
// curate their own phrases.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markers: %w", err)
	}
	return parseDictionary(data)
}

func parseDictionary(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse markers: %w", err)
	}
	if len(d.Ownership) == 0 || len(d.LowConfidence) == 0 ||
		len(d.Engagement) == 0 || len(d.Structure) == 0 || len(d.Repair) == 0 {
		return nil, fmt.Errorf("markers: every category needs at least one phrase")
	}
	for i := range d.Ownership {
		d.Ownership[i] = strings.ToLower(d.Ownership[i])
	}
	for i := range d.LowConfidence {
		d.LowConfidence[i] = strings.ToLower(d.LowConfidence[i])
	}
	for i := range d.Engagement {
		d.Engagement[i] = strings.ToLower(d.Engagement[i])
	}
	for i := range d.Structure {
		d.Structure[i] = strings.ToLower(d.Structure[i])
	}
	for i := range d.Repair {
		d.Repair[i] = strings.ToLower(d.Repair[i])
	}
	return &d, nil
}
