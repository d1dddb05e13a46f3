package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/folio/layout"
)

const sampleDoc = `{
  "metadata": {
    "title": "Flow Layout for Two Column Papers",
    "authors": [{"name": "A. Writer", "institution": "Example Lab", "contact": "a@example.org"}],
    "summary": "We describe a layout engine [1].",
    "tags": ["layout", "pagination"],
    "publication_info": {"journal": "Journal of Layout", "volume": 3, "issue": "2", "date": "2024"}
  },
  "body_content": [
    {"type": "section", "title": "Introduction", "content": ["Results [1, 2] show it works.", "Second paragraph."]},
    {"type": "table", "title": "Numbers", "headers": ["ID", "Name"], "rows": [["1", "One"], ["2", "Two"]]},
    {"type": "table", "title": "Wide", "placement": "fullwidth", "headers": ["A", "B", "C"], "rows": [["x", "y", "z"]]},
    {"type": "mystery"}
  ],
  "references": [{"text": "First reference."}, {"text": "Second reference."}]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.json")
	if err := os.WriteFile(path, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestRunWritesPDFForBothBackends(t *testing.T) {
	for _, backend := range []string{"fpdf", "canvas"} {
		input := writeSample(t)
		out := filepath.Join(filepath.Dir(input), "out", backend+".pdf")
		debug := filepath.Join(filepath.Dir(input), "debug.json")
		path, err := run(context.Background(), options{input: input, output: out, backend: backend, debugPath: debug}, quietLogger())
		if err != nil {
			t.Fatalf("%s: run error: %v", backend, err)
		}
		if !filepath.IsAbs(path) {
			t.Fatalf("%s: expected absolute path, got %s", backend, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("%s: read output: %v", backend, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Fatalf("%s: output is not a PDF", backend)
		}
		raw, err := os.ReadFile(debug)
		if err != nil {
			t.Fatalf("%s: read debug: %v", backend, err)
		}
		var res layout.Result
		if err := json.Unmarshal(raw, &res); err != nil {
			t.Fatalf("%s: decode debug: %v", backend, err)
		}
		if len(res.Pages) < 3 {
			t.Fatalf("%s: expected at least 3 pages, got %d", backend, len(res.Pages))
		}
		entries, _ := os.ReadDir(filepath.Dir(path))
		if len(entries) != 1 {
			t.Fatalf("%s: expected only the PDF in output dir, got %d entries", backend, len(entries))
		}
	}
}

func TestRunRejectsUnknownBackend(t *testing.T) {
	input := writeSample(t)
	_, err := run(context.Background(), options{input: input, output: input + ".pdf", backend: "svg"}, quietLogger())
	if !layout.IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if _, statErr := os.Stat(input + ".pdf"); !os.IsNotExist(statErr) {
		t.Fatalf("no output should be written on failure")
	}
}

func TestRunBadStyleIsFatal(t *testing.T) {
	input := writeSample(t)
	style := filepath.Join(filepath.Dir(input), "style.toml")
	if err := os.WriteFile(style, []byte("[page]\ngutter = \"20in\"\n"), 0o644); err != nil {
		t.Fatalf("write style: %v", err)
	}
	_, err := run(context.Background(), options{input: input, output: input + ".pdf", stylePath: style}, quietLogger())
	if !layout.IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}
