// Package assembly reads a synthesized cloud assembly directory and orders
// its stacks for deployment.
package assembly

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	blocks "github.com/lex00/cdk-blocks-go"
	"github.com/lex00/cdk-blocks-go/internal/template"
)

// ManifestFile is the cloud assembly manifest name.
const ManifestFile = "manifest.json"

// StackArtifactType marks CloudFormation stack artifacts in the manifest.
const StackArtifactType = "aws:cloudformation:stack"

// ErrCycle is returned by Order when stack dependencies form a cycle.
var ErrCycle = template.ErrCycle

// ErrUnknownStack is returned for a stack name not in the assembly.
var ErrUnknownStack = errors.New("unknown stack")

type manifest struct {
	Version   string              `json:"version"`
	Artifacts map[string]artifact `json:"artifacts"`
}

type artifact struct {
	Type         string   `json:"type"`
	Environment  string   `json:"environment"`
	Dependencies []string `json:"dependencies"`
	DisplayName  string   `json:"displayName"`
	Properties   struct {
		TemplateFile string `json:"templateFile"`
		StackName    string `json:"stackName"`
	} `json:"properties"`
}

// Stack is one CloudFormation stack artifact.
type Stack struct {
	// Name is the artifact id, which is the construct id of the stack.
	Name         string
	StackName    string
	TemplateFile string
	Environment  string
	// DependsOn lists stack artifacts only; asset artifacts are dropped.
	DependsOn []string
}

// Assembly is a loaded cloud assembly.
type Assembly struct {
	Dir     string
	Version string
	Stacks  map[string]Stack
}

// Load reads dir/manifest.json.
func Load(dir string) (*Assembly, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading cloud assembly: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}

	asm := &Assembly{Dir: dir, Version: m.Version, Stacks: make(map[string]Stack)}
	for id, a := range m.Artifacts {
		if a.Type != StackArtifactType {
			continue
		}
		stackName := a.Properties.StackName
		if stackName == "" {
			stackName = id
		}
		asm.Stacks[id] = Stack{
			Name:         id,
			StackName:    stackName,
			TemplateFile: a.Properties.TemplateFile,
			Environment:  a.Environment,
		}
	}

	for id, a := range m.Artifacts {
		stack, ok := asm.Stacks[id]
		if !ok {
			continue
		}
		for _, dep := range a.Dependencies {
			if _, isStack := asm.Stacks[dep]; isStack {
				stack.DependsOn = append(stack.DependsOn, dep)
			}
		}
		sort.Strings(stack.DependsOn)
		asm.Stacks[id] = stack
	}
	return asm, nil
}

// Names returns the stack names sorted alphabetically.
func (a *Assembly) Names() []string {
	names := make([]string, 0, len(a.Stacks))
	for name := range a.Stacks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dependencies maps each stack to the stacks it depends on.
func (a *Assembly) Dependencies() map[string][]string {
	deps := make(map[string][]string, len(a.Stacks))
	for name, s := range a.Stacks {
		deps[name] = s.DependsOn
	}
	return deps
}

// Order returns the stacks in deployment order. Stacks with no remaining
// dependencies are taken alphabetically.
func (a *Assembly) Order() ([]Stack, error) {
	names, err := template.Sort(a.Dependencies())
	if err != nil {
		return nil, err
	}
	stacks := make([]Stack, 0, len(names))
	for _, name := range names {
		stacks = append(stacks, a.Stacks[name])
	}
	return stacks, nil
}

// TemplatePath returns the absolute template location of a stack.
func (a *Assembly) TemplatePath(name string) (string, error) {
	s, ok := a.Stacks[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStack, name)
	}
	return filepath.Join(a.Dir, s.TemplateFile), nil
}

// Template loads the template of a stack.
func (a *Assembly) Template(name string) (*blocks.Template, error) {
	path, err := a.TemplatePath(name)
	if err != nil {
		return nil, err
	}
	return template.Load(path)
}
