package layout

// Source 是卡片引用的资料来源，对应资料列表中的一项。
type Source struct {
	ID      string
	Label   string
	Details string
}

// SourceAnchor 返回资料列表中某一来源的锚点名。
func SourceAnchor(id string) string { return "source_" + id }

// WidgetBlock 是仪表盘卡片：矩形卡片带严重程度色条、标题、正文与来源按钮；方形卡片只居中显示正文。
type WidgetBlock struct {
	m        TextMetrics
	style    WidgetStyle
	square   bool
	title    string
	text     string
	severity string
	sources  []Source
}

// WidgetSpec 描述一张卡片。
type WidgetSpec struct {
	Square   bool
	Title    string
	Text     string
	Severity string
	Sources  []Source
}

// NewWidget 构造卡片块。
func NewWidget(m TextMetrics, style WidgetStyle, spec WidgetSpec) *WidgetBlock {
	return &WidgetBlock{
		m:        m,
		style:    style,
		square:   spec.Square,
		title:    spec.Title,
		text:     spec.Text,
		severity: spec.Severity,
		sources:  spec.Sources,
	}
}

func (w *WidgetBlock) Splittable() bool { return false }

func (w *WidgetBlock) Measure(width float64) (float64, error) {
	if w.square {
		_, h, err := w.squareBox(width)
		return h, err
	}
	lay, err := w.rectLayout(width)
	if err != nil {
		return 0, err
	}
	return lay.height, nil
}

func (w *WidgetBlock) Place(pw *PageWriter, x, y, width float64) error {
	if w.square {
		return w.placeSquare(pw, x, y, width)
	}
	return w.placeRect(pw, x, y, width)
}

// ---- 方形卡片 ----

func (w *WidgetBlock) squareText(inner float64) (*Paragraph, float64, error) {
	p := Text(w.m, w.style.Square, w.text)
	h, err := p.Measure(inner)
	return p, h, err
}

func (w *WidgetBlock) squareBox(width float64) (size, height float64, err error) {
	size = min(width, w.style.SquareSize.ToMM())
	pad := w.style.Padding.ToMM()
	_, th, err := w.squareText(size - 2*pad)
	if err != nil {
		return 0, 0, err
	}
	return size, max(size, th+2*pad), nil
}

func (w *WidgetBlock) placeSquare(pw *PageWriter, x, y, width float64) error {
	size, height, err := w.squareBox(width)
	if err != nil {
		return err
	}
	pad := w.style.Padding.ToMM()
	bx := x + (width-size)/2
	pw.Rect(Rect{X: bx, Y: y, Width: size, Height: height, Radius: w.style.Radius.ToMM(),
		FillColor: colorPtr(w.style.Fill), Opacity: w.style.Opacity})
	p, th, err := w.squareText(size - 2*pad)
	if err != nil {
		return err
	}
	return p.Place(pw, bx+pad, y+(height-th)/2, size-2*pad)
}

// ---- 矩形卡片 ----

type widgetButton struct {
	src        Source
	x, y, w, h float64
}

type widgetLayout struct {
	title   *Paragraph
	titleH  float64
	body    *Paragraph
	bodyH   float64
	buttons []widgetButton
	btnH    float64
	height  float64
}

func (w *WidgetBlock) inner(width float64) (x, iw float64) {
	pad := w.style.Padding.ToMM()
	x = w.style.BarWidth.ToMM() + pad
	return x, width - x - pad
}

func (w *WidgetBlock) rectLayout(width float64) (*widgetLayout, error) {
	pad := w.style.Padding.ToMM()
	_, iw := w.inner(width)
	lay := &widgetLayout{}
	var err error
	title := w.title
	if title == "" {
		title = "No Title"
	}
	lay.title = Text(w.m, w.style.Title, title)
	if lay.titleH, err = lay.title.Measure(iw); err != nil {
		return nil, err
	}
	gap := pad / 2
	h := pad + lay.titleH
	if w.text != "" {
		lay.body = Text(w.m, w.style.Body, w.text)
		if lay.bodyH, err = lay.body.Measure(iw); err != nil {
			return nil, err
		}
		h += gap + lay.bodyH
	}
	if len(w.sources) > 0 {
		bs := w.style.Button
		bpad := Pt(10)
		lay.btnH = Pt(bs.Size + 8)
		cx, cy := 0.0, 0.0
		for _, src := range w.sources {
			label := src.Label
			if label == "" {
				label = "Source"
			}
			lw, err := w.m.TextWidth(label, bs.Font, bs.Size)
			if err != nil {
				return nil, err
			}
			bw := lw + 2*bpad
			if cx > 0 && cx+bw > iw {
				cx = 0
				cy += lay.btnH + gap
			}
			lay.buttons = append(lay.buttons, widgetButton{src: Source{ID: src.ID, Label: label, Details: src.Details}, x: cx, y: cy, w: bw, h: lay.btnH})
			cx += bw + bpad
		}
		h += gap + cy + lay.btnH
	}
	lay.height = h + pad
	return lay, nil
}

func (w *WidgetBlock) placeRect(pw *PageWriter, x, y, width float64) error {
	lay, err := w.rectLayout(width)
	if err != nil {
		return err
	}
	st := w.style
	pad := st.Padding.ToMM()
	pw.Rect(Rect{X: x, Y: y, Width: width, Height: lay.height, Radius: st.Radius.ToMM(),
		FillColor: colorPtr(st.Fill), Opacity: st.Opacity})
	bar, ok := st.Severity[w.severity]
	if !ok {
		bar = st.Severity["grey"]
	}
	pw.Rect(Rect{X: x, Y: y, Width: st.BarWidth.ToMM(), Height: lay.height, FillColor: colorPtr(bar)})

	ix, iw := w.inner(width)
	ix += x
	cursor := y + pad
	if err := lay.title.Place(pw, ix, cursor, iw); err != nil {
		return err
	}
	cursor += lay.titleH
	if lay.body != nil {
		cursor += pad / 2
		if err := lay.body.Place(pw, ix, cursor, iw); err != nil {
			return err
		}
		cursor += lay.bodyH
	}
	if len(lay.buttons) == 0 {
		return nil
	}
	cursor += pad / 2
	bs := st.Button
	for _, b := range lay.buttons {
		bx, by := ix+b.x, cursor+b.y
		pw.Rect(Rect{X: bx, Y: by, Width: b.w, Height: b.h, Radius: st.ButtonRadius.ToMM(), FillColor: colorPtr(st.ButtonFill)})
		lw, err := w.m.TextWidth(b.src.Label, bs.Font, bs.Size)
		if err != nil {
			return err
		}
		pw.Text(TextRun{
			Content:    b.src.Label,
			X:          bx + (b.w-lw)/2,
			Y:          by + (b.h-Pt(bs.Size))/2,
			Width:      lw,
			LineHeight: Pt(bs.Size),
			Font:       bs.Font,
			FontSize:   bs.Size,
			Color:      bs.Color,
		})
		if b.src.ID != "" {
			pw.Link(Link{X: bx, Y: by, Width: b.w, Height: b.h, Target: SourceAnchor(b.src.ID)})
		}
	}
	return nil
}
