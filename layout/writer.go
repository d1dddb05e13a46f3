package layout

// PageWriter 收集一页的绘制指令，块在 Place 时通过它输出内容。
type PageWriter struct {
	ops []Op
}

// NewPageWriter 返回一个空的指令收集器，测试或自定义后端可直接使用。
func NewPageWriter() *PageWriter { return &PageWriter{} }

// Ops 返回目前为止收集的指令。
func (pw *PageWriter) Ops() []Op { return pw.ops }

// Text 输出一行文本。
func (pw *PageWriter) Text(t TextRun) {
	pw.ops = append(pw.ops, Op{Kind: OpText, Text: &t})
}

// Rect 输出矩形（可圆角、可填充、可半透明）。
func (pw *PageWriter) Rect(r Rect) {
	pw.ops = append(pw.ops, Op{Kind: OpRect, Rect: &r})
}

// Line 输出线段。
func (pw *PageWriter) Line(l Line) {
	pw.ops = append(pw.ops, Op{Kind: OpLine, Line: &l})
}

// Image 输出图片。
func (pw *PageWriter) Image(img ImageBox) {
	pw.ops = append(pw.ops, Op{Kind: OpImage, Image: &img})
}

// Link 输出指向 target 锚点的可点击区域。
func (pw *PageWriter) Link(l Link) {
	pw.ops = append(pw.ops, Op{Kind: OpLink, Link: &l})
}

// Anchor 在当前页的 y 处放置链接目标。
func (pw *PageWriter) Anchor(name string, y float64) {
	pw.ops = append(pw.ops, Op{Kind: OpAnchor, Anchor: &Anchor{Name: name, Y: y}})
}

// Extent 返回从 from 开始的指令覆盖的纵向范围；没有可见指令时 ok 为 false。
func (pw *PageWriter) Extent(from int) (top, bottom float64, ok bool) {
	for _, op := range pw.ops[from:] {
		t, b, visible := op.extent()
		if !visible {
			continue
		}
		if !ok {
			top, bottom, ok = t, b, true
			continue
		}
		top = min(top, t)
		bottom = max(bottom, b)
	}
	return top, bottom, ok
}

func colorPtr(c Color) *Color { return &c }
