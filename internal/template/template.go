// Package template loads synthesized CloudFormation templates, takes a census
// of their resource types and orders their resources by dependency.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	blocks "github.com/lex00/cdk-blocks-go"
)

// ErrCycle is returned when a dependency graph is not acyclic.
var ErrCycle = errors.New("circular dependency detected")

// Load reads a JSON or YAML template from path.
func Load(path string) (*blocks.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes template content, trying JSON first and then YAML.
func Parse(data []byte) (*blocks.Template, error) {
	var t blocks.Template
	if err := json.Unmarshal(data, &t); err != nil {
		t = blocks.Template{}
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
		}
	}
	if t.Resources == nil {
		t.Resources = map[string]blocks.ResourceDef{}
	}
	return &t, nil
}

// ToJSON serializes the template to JSON.
func ToJSON(t *blocks.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *blocks.Template) ([]byte, error) {
	return yaml.Marshal(t)
}

// Census counts resources by CloudFormation type.
func Census(t *blocks.Template) map[string]int {
	counts := make(map[string]int)
	for _, res := range t.Resources {
		counts[res.Type]++
	}
	return counts
}

// ResourceNames returns the logical ids of t in sorted order.
func ResourceNames(t *blocks.Template) []string {
	names := make([]string, 0, len(t.Resources))
	for name := range t.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RefKind is the intrinsic a reference was made with.
type RefKind string

const (
	RefKindRef    RefKind = "Ref"
	RefKindGetAtt RefKind = "Fn::GetAtt"
	RefKindSub    RefKind = "Fn::Sub"
)

// Reference is one intrinsic reference to another logical id.
type Reference struct {
	Target string
	Kind   RefKind
}

// References collects every Ref, Fn::GetAtt and Fn::Sub target inside v.
// Pseudo parameters (AWS::Region and friends) are skipped.
func References(v any) []Reference {
	var refs []Reference
	collectRefs(v, &refs)
	return refs
}

func collectRefs(v any, refs *[]Reference) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			for key, inner := range val {
				if intrinsicRefs(key, inner, refs) {
					return
				}
			}
		}
		for _, inner := range val {
			collectRefs(inner, refs)
		}
	case []any:
		for _, inner := range val {
			collectRefs(inner, refs)
		}
	}
}

// intrinsicRefs handles a single-key intrinsic object and reports whether it
// was one.
func intrinsicRefs(key string, inner any, refs *[]Reference) bool {
	switch key {
	case "Ref":
		if name, ok := inner.(string); ok && !isPseudo(name) {
			*refs = append(*refs, Reference{Target: name, Kind: RefKindRef})
		}
		return true
	case "Fn::GetAtt":
		switch att := inner.(type) {
		case []any:
			if len(att) > 0 {
				if name, ok := att[0].(string); ok {
					*refs = append(*refs, Reference{Target: name, Kind: RefKindGetAtt})
				}
			}
			if len(att) > 1 {
				collectRefs(att[1], refs)
			}
		case string:
			name, _, _ := strings.Cut(att, ".")
			*refs = append(*refs, Reference{Target: name, Kind: RefKindGetAtt})
		}
		return true
	case "Fn::Sub":
		switch sub := inner.(type) {
		case string:
			subRefs(sub, nil, refs)
		case []any:
			var local map[string]any
			if len(sub) > 1 {
				local, _ = sub[1].(map[string]any)
				collectRefs(sub[1], refs)
			}
			if len(sub) > 0 {
				if s, ok := sub[0].(string); ok {
					subRefs(s, local, refs)
				}
			}
		}
		return true
	}
	return false
}

// subRefs extracts ${Name} and ${Name.Attr} variables from a Fn::Sub string.
func subRefs(s string, local map[string]any, refs *[]Reference) {
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			return
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			return
		}
		name := s[start+2 : start+end]
		s = s[start+end+1:]
		if strings.HasPrefix(name, "!") || isPseudo(name) {
			continue
		}
		name, _, _ = strings.Cut(name, ".")
		if _, ok := local[name]; ok {
			continue
		}
		*refs = append(*refs, Reference{Target: name, Kind: RefKindSub})
	}
}

func isPseudo(name string) bool {
	return strings.HasPrefix(name, "AWS::")
}

// Dependencies maps each resource to the resources it references or names in
// DependsOn. Targets that are not resources of t (parameters, conditions) are
// dropped.
func Dependencies(t *blocks.Template) map[string][]string {
	deps := make(map[string][]string, len(t.Resources))
	for name, res := range t.Resources {
		seen := make(map[string]bool)
		add := func(target string) {
			if target == name || seen[target] {
				return
			}
			if _, ok := t.Resources[target]; !ok {
				return
			}
			seen[target] = true
			deps[name] = append(deps[name], target)
		}
		for _, ref := range References(res.Properties) {
			add(ref.Target)
		}
		for _, dep := range res.DependsOn {
			add(dep)
		}
		sort.Strings(deps[name])
		if deps[name] == nil {
			deps[name] = []string{}
		}
	}
	return deps
}

// ResourceOrder returns the resources of t with dependencies first.
func ResourceOrder(t *blocks.Template) ([]string, error) {
	return Sort(Dependencies(t))
}

// Sort orders the keys of deps so that every node follows the nodes it
// depends on. Ties are broken by name. Dependencies that are not keys of deps
// are ignored.
func Sort(deps map[string][]string) ([]string, error) {
	dependents := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range deps {
		inDegree[name] = 0
	}
	for name, targets := range deps {
		for _, dep := range targets {
			if _, exists := deps[dep]; exists {
				dependents[dep] = append(dependents[dep], name)
				inDegree[name]++
			}
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	result := make([]string, 0, len(deps))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, next := range dependents[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(deps) {
		return nil, detectCycle(deps)
	}
	return result, nil
}

// detectCycle finds one cycle in deps and reports it as a path that starts
// and ends at the same node.
func detectCycle(deps map[string][]string) error {
	visited := make(map[string]bool)
	var stack []string

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		stack = append(stack, node)

		for _, dep := range deps[node] {
			if _, exists := deps[dep]; !exists {
				continue
			}
			if i := slices.Index(stack, dep); i >= 0 {
				cycle = append(append([]string{}, stack[i:]...), dep)
				return true
			}
			if !visited[dep] && findCycle(dep) {
				return true
			}
		}

		stack = stack[:len(stack)-1]
		return false
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] && findCycle(name) {
			break
		}
	}

	if len(cycle) == 0 {
		return ErrCycle
	}
	return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
}
