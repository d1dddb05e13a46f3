package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas.
// canvas 不支持 PDF 内部链接，Link 与 Anchor 指令在此后端被忽略。
type Renderer struct {
	fonts  *fonts.Catalog
	assets *renderer.Assets
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer creates a canvas-based renderer using the given font catalog and assets.
func NewRenderer(catalog *fonts.Catalog, assets *renderer.Assets) *Renderer {
	if assets == nil {
		assets = renderer.NewAssets("")
	}
	return &Renderer{fonts: catalog, assets: assets}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, layout.RenderError("canvas", fmt.Errorf("渲染结果为空"))
	}
	if len(result.Pages) == 0 {
		return nil, layout.RenderError("canvas", fmt.Errorf("缺少可渲染的页面"))
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, layout.RenderError("canvas", fmt.Errorf("第 %d 页: %w", page.Number, err))
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, layout.RenderError("canvas", fmt.Errorf("写入 PDF 失败: %w", err))
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	writer.SetInfo(meta.Title, meta.Subject, meta.Keywords, meta.Author, meta.Creator)
}

// drawPage 严格按指令顺序绘制。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, op := range page.Ops {
		var err error
		switch op.Kind {
		case layout.OpText:
			err = r.drawText(ctx, *op.Text)
		case layout.OpRect:
			r.drawRect(ctx, *op.Rect)
		case layout.OpLine:
			r.drawLine(ctx, *op.Line)
		case layout.OpImage:
			err = r.drawImage(ctx, *op.Image)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawText(ctx *canvas.Context, tb layout.TextRun) error {
	if tb.Content == "" {
		return nil
	}
	face, err := r.fonts.Face(tb.Font, tb.FontSize, colorFromLayout(tb.Color, 1))
	if err != nil {
		return err
	}

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	// 基线位置：行框顶部加上字体上升部
	baseline := tb.Y + face.Metrics().Ascent
	ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, tb.Content, textAlign))
	return nil
}

func (r *Renderer) drawImage(ctx *canvas.Context, img layout.ImageBox) error {
	if img.Placeholder != nil {
		r.drawRect(ctx, layout.Rect{X: img.X, Y: img.Y, Width: img.Width, Height: img.Height, FillColor: img.Placeholder})
		return nil
	}
	data, err := r.assets.Image(img.Path)
	if err != nil {
		return err
	}
	width := img.Width
	if width <= 0 {
		width = float64(data.Bounds().Dx()) / 4.0
	}
	dpmm := float64(data.Bounds().Dx()) / width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(img.X, img.Y, data, canvas.DPMM(dpmm))
	return nil
}

// drawLine 绘制线段（毫米单位）
func (r *Renderer) drawLine(ctx *canvas.Context, ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(colorFromLayout(ln.Color, 1))
	ctx.SetStrokeWidth(w)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
	ctx.DrawPath(ln.X1, ln.Y1, p)
}

// drawRect 绘制矩形，支持圆角与半透明填充。
func (r *Renderer) drawRect(ctx *canvas.Context, rc layout.Rect) {
	alpha := rc.Opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	if rc.FillColor != nil {
		ctx.SetFillColor(colorFromLayout(*rc.FillColor, alpha))
	} else {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	}
	if rc.StrokeColor != nil {
		w := rc.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeColor(colorFromLayout(*rc.StrokeColor, alpha))
		ctx.SetStrokeWidth(w)
	} else {
		ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeWidth(0)
	}
	shape := canvas.Rectangle(rc.Width, rc.Height)
	if rc.Radius > 0 {
		shape = canvas.RoundedRectangle(rc.Width, rc.Height, rc.Radius)
	}
	ctx.DrawPath(rc.X, rc.Y, shape)
}

func colorFromLayout(c layout.Color, alpha float64) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, alpha)
}
