package narrative

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/codebook/internal/codebook"
)

func TestParseMarkdown(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"# Overview",
		"",
		"This project collects **county** level data.",
		"See [the portal](https://example.org).",
		"",
		"## Goals",
		"Track outcomes",
		"over time.",
		"",
		"- first_goal item",
		"- second *goal*",
		"",
		"---",
		"#hashtag line",
	}, "\n")

	n := ParseMarkdown(src)

	if n.Title != "Overview" {
		t.Errorf("expected title Overview, got %q", n.Title)
	}
	want := []codebook.Block{
		{Text: "This project collects county level data. See the portal (https://example.org)."},
		{Heading: "Goals", Level: 2, Text: "Track outcomes over time."},
		{Text: "first_goal item"},
		{Text: "second goal"},
		{Text: "#hashtag line"},
	}
	if len(n.Blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(n.Blocks), n.Blocks)
	}
	for i := range want {
		if n.Blocks[i] != want[i] {
			t.Errorf("block %d: expected %+v, got %+v", i, want[i], n.Blocks[i])
		}
	}
}

func TestParseMarkdown_Empty(t *testing.T) {
	t.Parallel()

	n := ParseMarkdown("\n\n   \n")
	if !n.IsEmpty() {
		t.Errorf("expected empty narrative, got %+v", n)
	}
}

func TestParseMarkdown_TitleOnlyOnce(t *testing.T) {
	t.Parallel()

	n := ParseMarkdown("# Terms\n\n# Second\ntext")
	if n.Title != "Terms" {
		t.Errorf("expected title Terms, got %q", n.Title)
	}
	if len(n.Blocks) != 1 || n.Blocks[0].Heading != "Second" || n.Blocks[0].Level != 1 {
		t.Errorf("expected a level 1 block for the second heading, got %+v", n.Blocks)
	}
}

func TestParseHTML(t *testing.T) {
	t.Parallel()

	src := `<html><head><title>ignored</title></head><body>
<h1>Key Terms</h1>
<p>Hello <b>world</b>.</p>
<script>var x = 1;</script>
<h2>Cohort</h2>
<ul><li>One</li><li>Two</li></ul>
<!-- comment -->
</body></html>`

	n, err := ParseHTML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "Key Terms" {
		t.Errorf("expected title Key Terms, got %q", n.Title)
	}
	want := []codebook.Block{
		{Text: "Hello world."},
		{Heading: "Cohort", Level: 2, Text: "One"},
		{Text: "Two"},
	}
	if len(n.Blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(want), len(n.Blocks), n.Blocks)
	}
	for i := range want {
		if n.Blocks[i] != want[i] {
			t.Errorf("block %d: expected %+v, got %+v", i, want[i], n.Blocks[i])
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name  string
		file  string
		data  []byte
		title string
	}{
		{name: "markdown", file: "overview.md", data: []byte("# Overview\n\ntext\n"), title: "Overview"},
		{name: "html", file: "terms.html", data: []byte("<h1>Terms</h1><p>text</p>"), title: "Terms"},
		{name: "latin1 text", file: "notes.txt", data: []byte("# Caf\xe9\n\ntext\n"), title: "Café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, tt.data, 0o600); err != nil {
				t.Fatal(err)
			}
			n, err := Load(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Title != tt.title {
				t.Errorf("expected title %q, got %q", tt.title, n.Title)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}
}
