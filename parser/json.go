package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// ReplaceJSON replaces every literal ${KEY} in data with vars[KEY]. Unknown
// placeholders are left as they are.
func ReplaceJSON(data []byte, vars map[string]string) []byte {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := string(data)
	for _, k := range keys {
		out = strings.ReplaceAll(out, "${"+k+"}", vars[k])
	}
	return []byte(out)
}

// LoadJSON reads path and applies ReplaceJSON when vars is non-nil.
func LoadJSON(path string, vars map[string]string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if vars == nil {
		return data, nil
	}
	return ReplaceJSON(data, vars), nil
}
