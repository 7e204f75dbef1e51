// Package document loads, annotates and encodes OpenAPI 3 documents.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dnswlt/apigwext/internal/config"
	"github.com/dnswlt/apigwext/internal/store"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const (
	YAMLIndent = 2
)

var (
	ErrNoMatchingServer = errors.New("no matching server")
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath returns FormatYAML for .yaml/.yml files and FormatJSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseFormat parses "json" or "yaml" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatJSON, fmt.Errorf("unknown format %q", s)
}

// Load reads the OpenAPI document at path. Both JSON and YAML are accepted.
func Load(st store.Store, path string) (*openapi3.T, error) {
	data, err := st.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document from %s: %w", path, err)
	}
	return doc, nil
}

// Annotate applies every rule of b to the servers it matches.
// It returns the number of (server, rule) applications.
// A rule that matches no server is an error wrapping ErrNoMatchingServer.
func Annotate(doc *openapi3.T, b *config.Bundle) (int, error) {
	n := 0
	for i, r := range b.Servers {
		matched := 0
		for _, s := range doc.Servers {
			if s == nil || !r.Matches(s.URL) {
				continue
			}
			r.Apply(s)
			matched++
		}
		if matched == 0 {
			return n, fmt.Errorf("servers[%d] (url %q): %w", i, r.URL, ErrNoMatchingServer)
		}
		n += matched
	}
	return n, nil
}

// Encode serializes doc in the given format.
func Encode(doc *openapi3.T, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document as JSON: %w", err)
	}
	if format == FormatJSON {
		return append(data, '\n'), nil
	}
	// JSON is valid YAML; decoding into a node keeps the key order of the JSON output.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert document to YAML: %w", err)
	}
	clearStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(YAMLIndent)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode document as YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// clearStyle switches flow-style collections and quoted strings, as decoded
// from JSON, to block style. Strings that would otherwise be read back as a
// different type keep their quotes.
func clearStyle(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!str" && n.Style == yaml.DoubleQuotedStyle && !needsQuotes(n.Value) {
			n.Style = 0
		}
	} else {
		n.Style = 0
	}
	for _, c := range n.Content {
		clearStyle(c)
	}
}

// needsQuotes reports whether v would not round-trip as a plain YAML string.
func needsQuotes(v string) bool {
	var probe yaml.Node
	if err := yaml.Unmarshal([]byte(v), &probe); err != nil {
		return true
	}
	if len(probe.Content) != 1 {
		return true
	}
	c := probe.Content[0]
	return c.Kind != yaml.ScalarNode || c.Tag != "!!str" || c.Value != v
}
