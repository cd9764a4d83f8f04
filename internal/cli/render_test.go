package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,png,json", []string{"svg", "png", "json"}},
		{"dot only", "dot", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestRasterizeDOT(t *testing.T) {
	base := filepath.Join(t.TempDir(), "menu")
	dotData := []byte("digraph scene {\n  n0 [label=\"background\"];\n  n1 [label=\"title\"];\n  n0 -> n1;\n}\n")

	paths, err := rasterizeDOT(dotData, base)
	if err != nil {
		t.Fatalf("rasterizeDOT error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("rasterizeDOT wrote %d files, want 2", len(paths))
	}

	svg, err := os.ReadFile(base + ".dot.svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output is not an SVG document")
	}

	png, err := os.ReadFile(base + ".dot.png")
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("png output is not a PNG image")
	}
}

func TestRasterizeDOTRejectsGarbage(t *testing.T) {
	if _, err := rasterizeDOT([]byte("not dot"), filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("rasterizeDOT should reject malformed DOT input")
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"empty output strips input ext", "", "scenes/menu.toml", "scenes/menu"},
		{"output with format ext", "out.svg", "menu.toml", "out"},
		{"output with unrelated ext", "out.backup", "menu.toml", "out.backup"},
		{"plain output", "build/menu", "menu.toml", "build/menu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := basePath(tt.output, tt.input)
			if got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}
