// Package graph generates DOT and Mermaid dependency graphs from a
// synthesized cloud assembly.
package graph

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/emicklei/dot"
	cfn "github.com/lex00/cloudformation-schema-go/template"

	"github.com/lex00/cdk-blocks-go/internal/assembly"
	"github.com/lex00/cdk-blocks-go/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from a cloud assembly.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByStack groups resources into one subgraph per stack.
	ClusterByStack bool

	// StacksOnly draws stacks and their dependencies without resources.
	StacksOnly bool
}

// stackGraph is the part of one stack the generator draws.
type stackGraph struct {
	name           string
	dependsOn      []string
	resources      map[string]string // logical id -> type
	refs           map[string][]string
	getAtt         map[string]bool // "from->to"
	dependsOnEdges map[string][]string
}

// Generate creates a dependency graph of asm and writes it to w.
func (g *Generator) Generate(asm *assembly.Assembly, w io.Writer) error {
	stacks, err := g.load(asm)
	if err != nil {
		return err
	}
	graph := g.buildGraph(stacks)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	switch format {
	case FormatMermaid:
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	case FormatDOT:
		output = graph.String()
	default:
		return fmt.Errorf("unknown graph format %q", format)
	}

	_, err = w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(asm *assembly.Assembly) (string, error) {
	var sb strings.Builder
	if err := g.Generate(asm, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// load reads every stack template through the CloudFormation template model.
func (g *Generator) load(asm *assembly.Assembly) ([]stackGraph, error) {
	stacks := make([]stackGraph, 0, len(asm.Stacks))
	for _, name := range asm.Names() {
		s := stackGraph{name: name, dependsOn: asm.Stacks[name].DependsOn}
		if !g.StacksOnly {
			path, err := asm.TemplatePath(name)
			if err != nil {
				return nil, err
			}
			tmpl, err := cfn.ParseTemplate(path)
			if err != nil {
				return nil, fmt.Errorf("stack %s: %w", name, err)
			}
			s.resources, s.refs, s.getAtt, s.dependsOnEdges = resourceEdges(tmpl)
		}
		stacks = append(stacks, s)
	}
	return stacks, nil
}

// resourceEdges extracts resource types, reference edges, the subset of
// those made with Fn::GetAtt, and explicit DependsOn edges.
func resourceEdges(tmpl *cfn.Template) (map[string]string, map[string][]string, map[string]bool, map[string][]string) {
	types := make(map[string]string, len(tmpl.Resources))
	for id, res := range tmpl.Resources {
		types[id] = res.ResourceType
	}

	refs := make(map[string][]string)
	for from, targets := range tmpl.ReferenceGraph {
		if _, ok := types[from]; !ok {
			continue
		}
		for _, to := range targets {
			if _, ok := types[to]; ok && to != from {
				refs[from] = append(refs[from], to)
			}
		}
	}

	getAtt := make(map[string]bool)
	dependsOn := make(map[string][]string)
	for id, res := range tmpl.Resources {
		for _, prop := range res.Properties {
			for _, ref := range template.References(prop.Value) {
				if ref.Kind == template.RefKindGetAtt {
					getAtt[id+"->"+ref.Target] = true
				}
			}
		}
		for _, dep := range res.DependsOn {
			if _, ok := types[dep]; ok {
				dependsOn[id] = append(dependsOn[id], dep)
			}
		}
	}
	return types, refs, getAtt, dependsOn
}

// buildGraph creates the dot.Graph structure from the loaded stacks.
func (g *Generator) buildGraph(stacks []stackGraph) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	stackNodes := make(map[string]dot.Node, len(stacks))
	if g.StacksOnly {
		for _, s := range stacks {
			n := graph.Node(s.name)
			n.Attr("shape", "folder")
			n.Label(s.name)
			stackNodes[s.name] = n
		}
		for _, s := range stacks {
			for _, dep := range s.dependsOn {
				if to, ok := stackNodes[dep]; ok {
					graph.Edge(stackNodes[s.name], to).Attr("style", "dashed")
				}
			}
		}
		return graph
	}

	// Stack dependency edges connect the first resource of each stack so
	// they render without stack nodes.
	anchors := make(map[string]dot.Node, len(stacks))
	nodes := make(map[string]dot.Node)
	for _, s := range stacks {
		parent := graph
		if g.ClusterByStack {
			parent = graph.Subgraph(s.name, dot.ClusterOption{})
			parent.Attr("label", s.name)
			parent.Attr("style", "rounded")
			parent.Attr("bgcolor", "lightyellow")
		}

		ids := sortedKeys(s.resources)
		for _, id := range ids {
			n := parent.Node(nodeID(s.name, id))
			n.Label(id + "\\n[" + s.resources[id] + "]")
			nodes[nodeID(s.name, id)] = n
		}
		if len(ids) == 0 {
			n := parent.Node(s.name)
			n.Attr("shape", "folder")
			anchors[s.name] = n
		} else {
			anchors[s.name] = nodes[nodeID(s.name, ids[0])]
		}
	}

	for _, s := range stacks {
		for _, from := range sortedKeys(s.refs) {
			for _, to := range sortedUnique(s.refs[from]) {
				e := graph.Edge(nodes[nodeID(s.name, from)], nodes[nodeID(s.name, to)])
				if s.getAtt[from+"->"+to] {
					e.Attr("color", "blue")
				}
			}
		}
		for _, from := range sortedKeys(s.dependsOnEdges) {
			for _, to := range sortedUnique(s.dependsOnEdges[from]) {
				if slices.Contains(s.refs[from], to) {
					continue
				}
				graph.Edge(nodes[nodeID(s.name, from)], nodes[nodeID(s.name, to)]).Attr("style", "dotted")
			}
		}
		for _, dep := range s.dependsOn {
			to, ok := anchors[dep]
			if !ok {
				continue
			}
			e := graph.Edge(anchors[s.name], to)
			e.Attr("style", "dashed")
			e.Label(s.name + " -> " + dep)
		}
	}
	return graph
}

// nodeID scopes a logical id by its stack, since ids repeat across stacks.
func nodeID(stack, logicalID string) string {
	return stack + "." + logicalID
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnique(s []string) []string {
	out := append([]string(nil), s...)
	slices.Sort(out)
	return slices.Compact(out)
}
