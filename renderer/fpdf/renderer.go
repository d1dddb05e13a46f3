// Package fpdfrenderer 使用 codeberg.org/go-pdf/fpdf 输出 PDF，支持文档内跳转链接。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer 把布局结果绘制为 PDF；Anchor 成为跳转目标，Link 成为页面内链接。
type Renderer struct {
	fonts  *fonts.Catalog
	assets *renderer.Assets
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建 fpdf 后端。
func NewRenderer(catalog *fonts.Catalog, assets *renderer.Assets) *Renderer {
	if assets == nil {
		assets = renderer.NewAssets("")
	}
	return &Renderer{fonts: catalog, assets: assets}
}

// document 保存一次渲染过程中的状态。
type document struct {
	r       *Renderer
	pdf     *fpdf.Fpdf
	fonts   map[string]bool
	images  map[string]bool
	anchors map[string]int
}

// Render 渲染为 PDF 字节。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, layout.RenderError("fpdf", fmt.Errorf("渲染结果为空"))
	}
	if len(result.Pages) == 0 {
		return nil, layout.RenderError("fpdf", fmt.Errorf("缺少可渲染的页面"))
	}
	first := result.Pages[0]
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	applyMeta(pdf, result.Meta)

	d := &document{r: r, pdf: pdf, fonts: map[string]bool{}, images: map[string]bool{}, anchors: map[string]int{}}
	d.collectAnchors(result.Pages)
	for _, page := range result.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		if err := d.drawPage(page); err != nil {
			return nil, layout.RenderError("fpdf", fmt.Errorf("第 %d 页: %w", page.Number, err))
		}
		if err := pdf.Error(); err != nil {
			return nil, layout.RenderError("fpdf", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, layout.RenderError("fpdf", fmt.Errorf("写入 PDF 失败: %w", err))
	}
	return buf.Bytes(), nil
}

func applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetKeywords(meta.Keywords, true)
	pdf.SetCreator(meta.Creator, true)
}

// collectAnchors 预先为所有锚点登记跳转目标，链接可以指向后面的页面。
func (d *document) collectAnchors(pages []layout.Page) {
	for i, page := range pages {
		for _, op := range page.Ops {
			if op.Kind != layout.OpAnchor {
				continue
			}
			if _, ok := d.anchors[op.Anchor.Name]; ok {
				continue
			}
			id := d.pdf.AddLink()
			d.pdf.SetLink(id, op.Anchor.Y, i+1)
			d.anchors[op.Anchor.Name] = id
		}
	}
}

func (d *document) drawPage(page layout.Page) error {
	for _, op := range page.Ops {
		var err error
		switch op.Kind {
		case layout.OpText:
			err = d.drawText(*op.Text)
		case layout.OpRect:
			d.drawRect(*op.Rect)
		case layout.OpLine:
			d.drawLine(*op.Line)
		case layout.OpImage:
			err = d.drawImage(*op.Image)
		case layout.OpLink:
			l := op.Link
			if id, ok := d.anchors[l.Target]; ok {
				d.pdf.Link(l.X, l.Y, l.Width, l.Height, id)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *document) useFont(name string, size float64) error {
	if !d.fonts[name] {
		data, err := d.r.fonts.Bytes(name)
		if err != nil {
			return err
		}
		d.pdf.AddUTF8FontFromBytes(name, "", data)
		d.fonts[name] = true
	}
	d.pdf.SetFont(name, "", size)
	return nil
}

func (d *document) drawText(tb layout.TextRun) error {
	if tb.Content == "" {
		return nil
	}
	if err := d.useFont(tb.Font, tb.FontSize); err != nil {
		return err
	}
	ascent, err := d.r.fonts.Ascent(tb.Font, tb.FontSize)
	if err != nil {
		return err
	}
	x := tb.X
	switch strings.ToLower(tb.Align) {
	case "center":
		x += (tb.Width - d.pdf.GetStringWidth(tb.Content)) / 2
	case "right", "end":
		x += tb.Width - d.pdf.GetStringWidth(tb.Content)
	}
	d.pdf.SetTextColor(tb.Color.R, tb.Color.G, tb.Color.B)
	d.pdf.Text(x, tb.Y+ascent, tb.Content)
	return nil
}

func (d *document) drawRect(rc layout.Rect) {
	style := ""
	if rc.FillColor != nil {
		style += "F"
		d.pdf.SetFillColor(rc.FillColor.R, rc.FillColor.G, rc.FillColor.B)
	}
	if rc.StrokeColor != nil {
		style += "D"
		d.pdf.SetDrawColor(rc.StrokeColor.R, rc.StrokeColor.G, rc.StrokeColor.B)
		w := rc.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		d.pdf.SetLineWidth(w)
	}
	if style == "" {
		return
	}
	translucent := rc.Opacity > 0 && rc.Opacity < 1
	if translucent {
		d.pdf.SetAlpha(rc.Opacity, "Normal")
	}
	if rc.Radius > 0 {
		d.pdf.RoundedRect(rc.X, rc.Y, rc.Width, rc.Height, rc.Radius, "1234", style)
	} else {
		d.pdf.Rect(rc.X, rc.Y, rc.Width, rc.Height, style)
	}
	if translucent {
		d.pdf.SetAlpha(1, "Normal")
	}
}

func (d *document) drawLine(ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	d.pdf.SetDrawColor(ln.Color.R, ln.Color.G, ln.Color.B)
	d.pdf.SetLineWidth(w)
	d.pdf.Line(ln.X1, ln.Y1, ln.X2, ln.Y2)
}

// fpdf 只能直接嵌入 PNG、JPEG 与 GIF，其余格式先转为 PNG。
var imageTypes = map[string]string{"png": "PNG", "jpeg": "JPG", "gif": "GIF"}

func (d *document) registerImage(src string) error {
	if d.images[src] {
		return nil
	}
	data, format, err := d.r.assets.Raw(src)
	if err != nil {
		return err
	}
	typ, ok := imageTypes[format]
	if !ok {
		img, err := d.r.assets.Image(src)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("转换图片 %s 失败: %w", src, err)
		}
		data, typ = buf.Bytes(), "PNG"
	}
	d.pdf.RegisterImageOptionsReader(src, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if err := d.pdf.Error(); err != nil {
		return err
	}
	d.images[src] = true
	return nil
}

func (d *document) drawImage(img layout.ImageBox) error {
	if img.Placeholder != nil {
		d.drawRect(layout.Rect{X: img.X, Y: img.Y, Width: img.Width, Height: img.Height, FillColor: img.Placeholder})
		return nil
	}
	if err := d.registerImage(img.Path); err != nil {
		return err
	}
	translucent := img.Opacity > 0 && img.Opacity < 1
	if translucent {
		d.pdf.SetAlpha(img.Opacity, "Normal")
	}
	d.pdf.ImageOptions(img.Path, img.X, img.Y, img.Width, img.Height, false, fpdf.ImageOptions{}, 0, "")
	if translucent {
		d.pdf.SetAlpha(1, "Normal")
	}
	return nil
}
