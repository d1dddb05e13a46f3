package canvasrenderer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/folio/content"
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

func TestWrapWithCatalogFonts(t *testing.T) {
	cat := fonts.NewCatalog()
	lines, err := layout.Wrap(cat, "hello world again", layout.FontRef{Name: "Times-Roman", Size: 12}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
}

// TestWrapWidthLimit 验证多词文本的每行宽度不超过限制（mm）。
func TestWrapWidthLimit(t *testing.T) {
	cat := fonts.NewCatalog()
	font := layout.FontRef{Name: "Helvetica", Size: 10}
	limit := 30.0
	content := "the quick brown fox jumps over the lazy dog and keeps running far away"
	lines, err := layout.Wrap(cat, content, font, limit)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected at least two lines, got %d", len(lines))
	}
	for i, ln := range lines {
		w, err := cat.TextWidth(ln, font.Name, font.Size)
		if err != nil {
			t.Fatalf("TextWidth error: %v", err)
		}
		if w-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, w, limit)
		}
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(fonts.NewCatalog(), nil)
	if _, err := r.Render(&layout.Result{}); !layout.IsRender(err) {
		t.Fatalf("expected render error, got %v", err)
	}
	if _, err := r.Render(nil); !layout.IsRender(err) {
		t.Fatalf("expected render error for nil result, got %v", err)
	}
}

func TestRenderDocumentProducesPDF(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 22, G: 59, B: 138, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "fig.png"))
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode image: %v", err)
	}
	f.Close()

	doc := &content.Document{
		Metadata: content.Metadata{
			Title:   "Canvas Rendering",
			Authors: []content.Author{{Name: "A. Author", Institution: "Lab"}},
			Summary: "Short abstract citing [1].",
		},
		Body: []content.Item{
			&content.Section{Title: "Intro", Content: []string{"Body text [1]."}},
			&content.Image{Src: "fig.png", Caption: "Blue"},
			&content.Image{Src: "missing.png", Caption: "Missing"},
			&content.Table{Headers: []content.Text{"A", "B"}, Rows: [][]content.Text{{"1", "2"}}},
		},
		References: []content.Reference{{Index: 1, Text: "Ref."}},
	}
	cat := fonts.NewCatalog()
	assets := renderer.NewAssets(dir)
	res, err := layout.Build(context.Background(), doc, layout.BuildOptions{Metrics: cat, Images: assets})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	out, err := NewRenderer(cat, assets).Render(res)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 8)])
	}
}
