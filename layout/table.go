package layout

import (
	"sync"
)

// TableSpec 描述一张表格的内容。ColumnWidths 为调用方指定的列宽（mm），为空时按内容计算。
type TableSpec struct {
	Headers      []string
	Rows         [][]string
	ColumnWidths []float64
	Align        []string
	ColumnColors []*Color
	ColumnFonts  []string
	Caption      string
	Anchor       string
	Style        TableStyle
}

// TableBlock 是不可拆分的表格。不同宽度下的布局结果按宽度缓存，可并发测量。
type TableBlock struct {
	m    TextMetrics
	spec TableSpec

	mu   sync.Mutex
	memo map[float64]*tableLayout
}

type tableLayout struct {
	widths     []float64
	header     [][]string
	rows       [][][]string
	heights    []float64 // 含表头，heights[0] 为表头行
	caption    *Paragraph
	captionH   float64
	gridHeight float64
	height     float64
}

// NewTable 构造表格块，零列表格返回 ConfigError。
func NewTable(m TextMetrics, spec TableSpec) (*TableBlock, error) {
	if columnCount(spec.Headers, spec.Rows) == 0 {
		return nil, ConfigError("table", "表格没有任何列")
	}
	return &TableBlock{m: m, spec: spec, memo: map[float64]*tableLayout{}}, nil
}

// Columns 返回 width 下的列宽。
func (t *TableBlock) Columns(width float64) ([]float64, error) {
	lay, err := t.layout(width)
	if err != nil {
		return nil, err
	}
	return lay.widths, nil
}

func (t *TableBlock) layout(width float64) (*tableLayout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if lay, ok := t.memo[width]; ok {
		return lay, nil
	}
	lay, err := t.compute(width)
	if err != nil {
		return nil, err
	}
	t.memo[width] = lay
	return lay, nil
}

func (t *TableBlock) compute(width float64) (*tableLayout, error) {
	st := t.spec.Style
	var (
		widths []float64
		err    error
	)
	cols := columnCount(t.spec.Headers, t.spec.Rows)
	if len(t.spec.ColumnWidths) == cols {
		widths = fitWidths(t.spec.ColumnWidths, width, st.MinColumnWidth.ToMM())
	} else {
		widths, err = AllocateColumnWidths(t.m, t.spec.Headers, t.spec.Rows, width, st)
		if err != nil {
			return nil, err
		}
	}
	lay := &tableLayout{widths: widths}
	padX, padY := st.CellPadding.ToMM(), st.CellPaddingY.ToMM()
	lh := st.Leading.Resolve(PT(st.BodyFont.Size), UnitMM)

	wrapRow := func(cells []string, header bool) ([][]string, float64, error) {
		out := make([][]string, cols)
		maxLines := 1
		for i := 0; i < cols; i++ {
			text := ""
			if i < len(cells) {
				text = cells[i]
			}
			inner := widths[i] - 2*padX
			if inner <= 0 {
				inner = widths[i]
			}
			lines, err := WrapCell(t.m, text, t.cellFont(i, header), inner)
			if err != nil {
				return nil, 0, err
			}
			out[i] = lines
			maxLines = max(maxLines, len(lines))
		}
		return out, float64(maxLines)*lh + 2*padY, nil
	}

	if len(t.spec.Headers) > 0 {
		cells, h, err := wrapRow(t.spec.Headers, true)
		if err != nil {
			return nil, err
		}
		lay.header = cells
		lay.heights = append(lay.heights, h)
	}
	for _, row := range t.spec.Rows {
		cells, h, err := wrapRow(row, false)
		if err != nil {
			return nil, err
		}
		lay.rows = append(lay.rows, cells)
		lay.heights = append(lay.heights, h)
	}
	for _, h := range lay.heights {
		lay.gridHeight += h
	}
	lay.height = lay.gridHeight
	if t.spec.Caption != "" {
		lay.caption = Text(t.m, st.Caption, t.spec.Caption)
		ch, err := lay.caption.Measure(width)
		if err != nil {
			return nil, err
		}
		lay.captionH = ch + st.CaptionGap.ToMM()
		lay.height += lay.captionH
	}
	return lay, nil
}

func (t *TableBlock) cellFont(col int, header bool) FontRef {
	st := t.spec.Style
	if header {
		return st.HeaderFont
	}
	f := st.BodyFont
	if col < len(t.spec.ColumnFonts) && t.spec.ColumnFonts[col] != "" {
		f.Name = t.spec.ColumnFonts[col]
	}
	return f
}

func (t *TableBlock) Measure(width float64) (float64, error) {
	lay, err := t.layout(width)
	if err != nil {
		return 0, err
	}
	return lay.height, nil
}

func (t *TableBlock) Splittable() bool { return false }

func (t *TableBlock) Place(pw *PageWriter, x, y, width float64) error {
	lay, err := t.layout(width)
	if err != nil {
		return err
	}
	st := t.spec.Style
	if t.spec.Anchor != "" {
		pw.Anchor(t.spec.Anchor, y)
	}
	gridY := y
	if lay.caption != nil && !st.CaptionBelow {
		if err := lay.caption.Place(pw, x, y, width); err != nil {
			return err
		}
		gridY += lay.captionH
	}

	t.drawFills(pw, lay, x, gridY, width)
	t.drawGrid(pw, lay, x, gridY, width)
	if err := t.drawCells(pw, lay, x, gridY); err != nil {
		return err
	}

	if lay.caption != nil && st.CaptionBelow {
		capY := gridY + lay.gridHeight + st.CaptionGap.ToMM()
		if err := lay.caption.Place(pw, x, capY, width); err != nil {
			return err
		}
	}
	return nil
}

func (t *TableBlock) drawFills(pw *PageWriter, lay *tableLayout, x, y, width float64) {
	st := t.spec.Style
	radius := st.Radius.ToMM()
	hasHeader := lay.header != nil
	bodyRows := len(lay.rows)
	cursor := y
	for i, h := range lay.heights {
		header := hasHeader && i == 0
		bodyIdx := i
		if hasHeader {
			bodyIdx--
		}
		last := i == len(lay.heights)-1
		var fill *Color
		switch {
		case header:
			fill = colorPtr(st.HeaderFill)
		case st.Zebra && bodyIdx%2 == 1:
			fill = colorPtr(st.ZebraFill)
		case radius > 0:
			fill = colorPtr(Color{R: 255, G: 255, B: 255})
		}
		if fill == nil {
			cursor += h
			continue
		}
		switch {
		case radius <= 0:
			pw.Rect(Rect{X: x, Y: cursor, Width: width, Height: h, FillColor: fill})
		case header && bodyRows > 0:
			// 表头只需要上方两个圆角，下方被第一行的填充覆盖
			pw.Rect(Rect{X: x, Y: cursor, Width: width, Height: min(h+radius, lay.gridHeight), Radius: radius, FillColor: fill})
		case last && i == 0:
			pw.Rect(Rect{X: x, Y: cursor, Width: width, Height: h, Radius: radius, FillColor: fill})
		case last:
			r := min(radius, h/2)
			pw.Rect(Rect{X: x, Y: cursor, Width: width, Height: h - r, FillColor: fill})
			pw.Rect(Rect{X: x, Y: cursor + h - 2*r, Width: width, Height: 2 * r, Radius: r, FillColor: fill})
		default:
			pw.Rect(Rect{X: x, Y: cursor, Width: width, Height: h, FillColor: fill})
		}
		cursor += h
	}
}

func (t *TableBlock) drawGrid(pw *PageWriter, lay *tableLayout, x, y, width float64) {
	st := t.spec.Style
	bw := st.BorderWidth.ToMM()
	bottom := y + lay.gridHeight
	if st.Radius.ToMM() > 0 {
		pw.Rect(Rect{X: x, Y: y, Width: width, Height: lay.gridHeight, Radius: st.Radius.ToMM(),
			StrokeColor: colorPtr(st.BorderColor), StrokeWidth: bw})
		cursor := y
		for _, h := range lay.heights[:len(lay.heights)-1] {
			cursor += h
			pw.Line(Line{X1: x, Y1: cursor, X2: x + width, Y2: cursor, Color: st.BorderColor, Width: bw})
		}
		return
	}
	cursor := y
	pw.Line(Line{X1: x, Y1: cursor, X2: x + width, Y2: cursor, Color: st.BorderColor, Width: bw})
	for _, h := range lay.heights {
		cursor += h
		pw.Line(Line{X1: x, Y1: cursor, X2: x + width, Y2: cursor, Color: st.BorderColor, Width: bw})
	}
	cx := x
	pw.Line(Line{X1: cx, Y1: y, X2: cx, Y2: bottom, Color: st.BorderColor, Width: bw})
	for _, w := range lay.widths {
		cx += w
		pw.Line(Line{X1: cx, Y1: y, X2: cx, Y2: bottom, Color: st.BorderColor, Width: bw})
	}
}

func (t *TableBlock) drawCells(pw *PageWriter, lay *tableLayout, x, y float64) error {
	st := t.spec.Style
	padX, padY := st.CellPadding.ToMM(), st.CellPaddingY.ToMM()
	lh := st.Leading.Resolve(PT(st.BodyFont.Size), UnitMM)
	rows := lay.rows
	if lay.header != nil {
		rows = append([][][]string{lay.header}, rows...)
	}
	cursor := y
	for r, cells := range rows {
		header := lay.header != nil && r == 0
		cx := x
		for c, lines := range cells {
			font := t.cellFont(c, header)
			color := st.TextColor
			align := "left"
			if header {
				color = st.HeaderColor
				align = "center"
			} else {
				if c < len(t.spec.ColumnColors) && t.spec.ColumnColors[c] != nil {
					color = *t.spec.ColumnColors[c]
				}
				if c < len(t.spec.Align) && t.spec.Align[c] != "" {
					align = t.spec.Align[c]
				}
			}
			inner := lay.widths[c] - 2*padX
			offset := padX
			if inner <= 0 {
				inner, offset = lay.widths[c], 0
			}
			for k, line := range lines {
				if line == "" {
					continue
				}
				lw, err := font.width(t.m, line)
				if err != nil {
					return err
				}
				lx := cx + offset
				switch align {
				case "center":
					lx += (inner - lw) / 2
				case "right":
					lx += inner - lw
				}
				pw.Text(TextRun{
					Content:    line,
					X:          lx,
					Y:          cursor + padY + float64(k)*lh,
					Width:      lw,
					LineHeight: lh,
					Font:       font.Name,
					FontSize:   font.Size,
					Color:      color,
				})
			}
			cx += lay.widths[c]
		}
		cursor += lay.heights[r]
	}
	return nil
}
