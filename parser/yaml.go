// Package parser loads YAML and JSON documents with ${VAR} placeholders
// resolved against a caller-supplied set of variables.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/mfridman/interpolate"
	"gopkg.in/yaml.v3"
)

// ErrUndefinedVariable is returned when a placeholder names a variable the
// lookup does not know.
var ErrUndefinedVariable = errors.New("undefined variable")

// Lookup resolves a variable name. A nil Lookup disables substitution.
type Lookup func(name string) (string, bool)

// MapLookup resolves variables from m.
func MapLookup(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// EnvLookup resolves variables from the process environment.
func EnvLookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// LoadYAML reads a single-document YAML file into a map.
func LoadYAML(path string, vars Lookup) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	out, err := ParseYAML(data, vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ParseYAML decodes a single YAML document into a map.
//
// With vars set, every string scalar is expanded ($VAR, ${VAR}, $$). A
// value that still contains both '[' and ']' after expansion is re-read as a
// flow sequence and becomes a list; if that fails it stays a string.
func ParseYAML(data []byte, vars Lookup) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if doc.Kind == 0 {
		return map[string]any{}, nil
	}
	return decodeDocument(&doc, vars)
}

// LoadAllYAML reads every document of a multi-document YAML file. Empty
// documents are skipped.
func LoadAllYAML(path string, vars Lookup) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for i := 0; ; i++ {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		if len(doc.Content) == 0 || doc.Content[0].Tag == "!!null" {
			continue
		}
		out, err := decodeDocument(&doc, vars)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		docs = append(docs, out)
	}
	return docs, nil
}

func decodeDocument(doc *yaml.Node, vars Lookup) (map[string]any, error) {
	if vars != nil {
		if err := substitute(doc, vars); err != nil {
			return nil, err
		}
	}
	var out map[string]any
	if err := doc.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func substitute(n *yaml.Node, vars Lookup) error {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := substitute(c, vars); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		// keys are left alone
		for i := 1; i < len(n.Content); i += 2 {
			if err := substitute(n.Content[i], vars); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return nil
		}
		value, err := Expand(n.Value, vars)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		n.Value = value
		if seq, ok := listLiteral(value); ok {
			*n = *seq
		}
	}
	return nil
}

// Expand resolves the placeholders in s.
//
// ${VAR:-default} falls back to the default when VAR is unset or empty,
// ${VAR-default} only when it is unset, and ${VAR?message} fails when it is
// unset. A plain $VAR or ${VAR} naming an unset variable returns
// ErrUndefinedVariable. A malformed placeholder leaves s unchanged.
func Expand(s string, vars Lookup) (string, error) {
	if vars == nil || !strings.Contains(s, "$") {
		return s, nil
	}
	if _, err := interpolate.Identifiers(s); err != nil {
		return s, nil
	}

	env := &recordingEnv{vars: vars}
	out, err := interpolate.Interpolate(env, s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndefinedVariable, err)
	}
	for _, name := range env.missing {
		if plainReference(s, name) {
			return "", fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
		}
	}
	return out, nil
}

// recordingEnv remembers the names the expansion asked for and did not find.
type recordingEnv struct {
	vars    Lookup
	missing []string
}

func (e *recordingEnv) Get(key string) (string, bool) {
	v, ok := e.vars(key)
	if !ok && !slices.Contains(e.missing, key) {
		e.missing = append(e.missing, key)
	}
	return v, ok
}

// plainReference reports whether s uses name without a default, as $name or
// ${name}.
func plainReference(s, name string) bool {
	re := regexp.MustCompile(`(^|[^$])\$(\{` + regexp.QuoteMeta(name) + `\}|` + regexp.QuoteMeta(name) + `\b)`)
	return re.MatchString(s)
}

func listLiteral(s string) (*yaml.Node, bool) {
	if !strings.Contains(s, "[") || !strings.Contains(s, "]") {
		return nil, false
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, false
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, false
	}
	return doc.Content[0], true
}
