// Package differ provides semantic comparison of CloudFormation templates and
// whole cloud assemblies.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/template"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates or assemblies.
type Result struct {
	Diff    blocks.TemplateDiff
	Summary blocks.DiffSummary
}

// Empty reports whether no differences were found.
func (r *Result) Empty() bool {
	return r.Summary.Total == 0
}

// Compare compares two CloudFormation templates and returns differences.
func Compare(template1, template2 *blocks.Template, opts Options) (*Result, error) {
	result := &Result{}
	compareInto(result, "", template1, template2, opts)
	result.finish()
	return result, nil
}

// compareInto appends the differences between two templates of one stack.
func compareInto(result *Result, stack string, template1, template2 *blocks.Template, opts Options) {
	res1 := template1.Resources
	res2 := template2.Resources

	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, blocks.DiffEntry{
				Stack:    stack,
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, blocks.DiffEntry{
				Stack:    stack,
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			changes := compareResources(def1, def2, opts)
			if len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, blocks.DiffEntry{
					Stack:    stack,
					Resource: name,
					Type:     def1.Type,
					Changes:  changes,
				})
			}
		}
	}
}

// finish sorts the entries and fills in the summary.
func (r *Result) finish() {
	sortEntries(r.Diff.Added)
	sortEntries(r.Diff.Removed)
	sortEntries(r.Diff.Modified)

	r.Summary = blocks.DiffSummary{
		Added:    len(r.Diff.Added),
		Removed:  len(r.Diff.Removed),
		Modified: len(r.Diff.Modified),
	}
	r.Summary.Total = r.Summary.Added + r.Summary.Removed + r.Summary.Modified
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := template.Load(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := template.Load(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// CompareAssemblies compares two cloud assemblies stack by stack. A stack
// present on one side only contributes all of its resources as added or
// removed.
func CompareAssemblies(asm1, asm2 *assembly.Assembly, opts Options) (*Result, error) {
	empty := &blocks.Template{Resources: map[string]blocks.ResourceDef{}}

	names := asm1.Names()
	for _, name := range asm2.Names() {
		if _, ok := asm1.Stacks[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := &Result{}
	for _, name := range names {
		t1, t2 := empty, empty
		if _, ok := asm1.Stacks[name]; ok {
			t, err := asm1.Template(name)
			if err != nil {
				return nil, err
			}
			t1 = t
		}
		if _, ok := asm2.Stacks[name]; ok {
			t, err := asm2.Template(name)
			if err != nil {
				return nil, err
			}
			t2 = t
		}
		compareInto(result, name, t1, t2, opts)
	}
	result.finish()
	return result, nil
}

// ComparePaths compares two templates, or two assembly directories when both
// paths are directories.
func ComparePaths(path1, path2 string, opts Options) (*Result, error) {
	dir1, err := isDir(path1)
	if err != nil {
		return nil, err
	}
	dir2, err := isDir(path2)
	if err != nil {
		return nil, err
	}

	switch {
	case dir1 && dir2:
		asm1, err := assembly.Load(path1)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path1, err)
		}
		asm2, err := assembly.Load(path2)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path2, err)
		}
		return CompareAssemblies(asm1, asm2, opts)
	case !dir1 && !dir2:
		return CompareFiles(path1, path2, opts)
	default:
		return nil, fmt.Errorf("cannot compare %s with %s: one is a directory", filepath.Base(path1), filepath.Base(path2))
	}
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 blocks.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	if !slices.Equal(def1.DependsOn, def2.DependsOn) {
		changes = append(changes, "DependsOn changed")
	}
	if def1.DeletionPolicy != def2.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %q → %q", def1.DeletionPolicy, def2.DeletionPolicy))
	}
	if def1.UpdateReplacePolicy != def2.UpdateReplacePolicy {
		changes = append(changes, fmt.Sprintf("UpdateReplacePolicy changed: %q → %q", def1.UpdateReplacePolicy, def2.UpdateReplacePolicy))
	}

	return changes
}

// compareProperties recursively compares property maps, reporting nested
// changes by dotted path.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		val1, exists := props1[key]
		if !exists {
			changes = append(changes, fmt.Sprintf("%s added", path))
			continue
		}
		m1, ok1 := val1.(map[string]any)
		m2, ok2 := val2.(map[string]any)
		if ok1 && ok2 && !isIntrinsic(m1) && !isIntrinsic(m2) {
			changes = append(changes, compareProperties(path, m1, m2, opts)...)
			continue
		}
		if !deepEqual(val1, val2, opts) {
			changes = append(changes, fmt.Sprintf("%s modified", path))
		}
	}

	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// isIntrinsic reports whether m is a single-key Ref or Fn:: object, which is
// compared as a whole value.
func isIntrinsic(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return k == "Ref" || k == "Condition" || len(k) > 4 && k[:4] == "Fn::"
	}
	return false
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts every slice inside v by the JSON encoding of its
// elements.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		type keyed struct {
			key string
			val any
		}
		items := make([]keyed, len(val))
		for i, item := range val {
			norm := normalizeValue(item)
			key, _ := json.Marshal(norm)
			items[i] = keyed{key: string(key), val: norm}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].key < items[j].key })
		result := make([]any, len(items))
		for i, item := range items {
			result[i] = item.val
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

// sortEntries sorts diff entries by stack and resource name.
func sortEntries(entries []blocks.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stack != entries[j].Stack {
			return entries[i].Stack < entries[j].Stack
		}
		return entries[i].Resource < entries[j].Resource
	})
}
