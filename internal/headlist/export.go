package headlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"head-hunter/internal/head"

	"gopkg.in/yaml.v3"
)

// document is the structured export shape shared by JSON and YAML.
type document struct {
	Heads []head.Spec `json:"heads" yaml:"heads"`
}

// ExportJSON writes heads as an indented JSON document.
func ExportJSON(w io.Writer, heads []head.Spec) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{Heads: nonNil(heads)}); err != nil {
		return fmt.Errorf("encode heads as json: %w", err)
	}
	return nil
}

// ExportYAML writes heads as a YAML document.
func ExportYAML(w io.Writer, heads []head.Spec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Heads: nonNil(heads)}); err != nil {
		return fmt.Errorf("encode heads as yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush yaml: %w", err)
	}
	return nil
}

// ImportYAML reads a document written by ExportYAML and validates each head.
func ImportYAML(r io.Reader) ([]head.Spec, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode heads yaml: %w", err)
	}
	for i, s := range doc.Heads {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("head %d: %w", i, err)
		}
	}
	return nonNil(doc.Heads), nil
}

func nonNil(heads []head.Spec) []head.Spec {
	if heads == nil {
		return []head.Spec{}
	}
	return heads
}
