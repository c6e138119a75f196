package graph

import (
	"strings"
	"testing"

	"github.com/lex00/cdk-blocks-go/internal/assembly"
)

func loadFixture(t *testing.T) *assembly.Assembly {
	t.Helper()
	asm, err := assembly.Load("../assembly/testdata/cdk.out")
	if err != nil {
		t.Fatalf("loading assembly: %v", err)
	}
	return asm
}

func TestGenerator_Generate_Resources(t *testing.T) {
	gen := &Generator{}
	var sb strings.Builder
	if err := gen.Generate(loadFixture(t), &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()
	if !strings.Contains(output, "digraph") {
		t.Errorf("expected DOT digraph, got:\n%s", output)
	}
	for _, want := range []string{"Vpc8378EB38", "AWS::EC2::VPC", "RdsClusterC7B2A5D1", "Queue4A7E3555"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output", want)
		}
	}
	if strings.Contains(output, "cluster_") {
		t.Error("expected no clusters without ClusterByStack")
	}
}

func TestGenerator_Generate_GetAttEdgesAreBlue(t *testing.T) {
	gen := &Generator{}
	output, err := gen.GenerateString(loadFixture(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "blue") {
		t.Errorf("expected blue GetAtt edge, got:\n%s", output)
	}
}

func TestGenerator_Generate_StackDependencyDashed(t *testing.T) {
	gen := &Generator{}
	output, err := gen.GenerateString(loadFixture(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "dashed") {
		t.Error("expected dashed stack dependency edge")
	}
	if !strings.Contains(output, "RdsCluster -> Network") {
		t.Error("expected stack dependency label")
	}
}

func TestGenerator_Generate_ClusterByStack(t *testing.T) {
	gen := &Generator{ClusterByStack: true}
	output, err := gen.GenerateString(loadFixture(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "cluster_") {
		t.Errorf("expected stack clusters, got:\n%s", output)
	}
	if !strings.Contains(output, "lightyellow") {
		t.Error("expected cluster styling")
	}
}

func TestGenerator_Generate_StacksOnly(t *testing.T) {
	gen := &Generator{StacksOnly: true}
	output, err := gen.GenerateString(loadFixture(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Network", "RdsCluster", "Data", "folder", "dashed"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output", want)
		}
	}
	if strings.Contains(output, "AWS::EC2::VPC") {
		t.Error("expected no resource nodes")
	}
}

func TestGenerator_Generate_MermaidFormat(t *testing.T) {
	gen := &Generator{Format: FormatMermaid}
	output, err := gen.GenerateString(loadFixture(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "graph") && !strings.Contains(output, "flowchart") {
		t.Errorf("expected mermaid graph/flowchart, got:\n%s", output)
	}
	if strings.Contains(output, "digraph") {
		t.Error("expected mermaid format, not DOT")
	}
}

func TestGenerator_Generate_UnknownFormat(t *testing.T) {
	gen := &Generator{Format: "svg"}
	if _, err := gen.GenerateString(loadFixture(t)); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestResourceEdges_MissingTemplate(t *testing.T) {
	asm := &assembly.Assembly{
		Dir:    t.TempDir(),
		Stacks: map[string]assembly.Stack{"Ghost": {Name: "Ghost", TemplateFile: "Ghost.template.json"}},
	}
	gen := &Generator{}
	if _, err := gen.GenerateString(asm); err == nil {
		t.Error("expected error for missing template")
	}
}
