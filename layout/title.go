package layout

// TitleBlock 是标题：先在 [MinSize, Style.Size] 内自动缩小字号争取单行，仍放不下时按最小字号换行。
type TitleBlock struct {
	m       TextMetrics
	style   TextStyle
	minSize float64
	text    string
	anchor  string
}

// NewTitle 构造标题块；minSize 大于样式字号时返回 ConfigError。
func NewTitle(m TextMetrics, style TextStyle, minSize float64, text string) (*TitleBlock, error) {
	if minSize <= 0 {
		minSize = style.Size
	}
	if minSize > style.Size {
		return nil, ConfigError("title", "标题最小字号 %.1f 大于最大字号 %.1f", minSize, style.Size)
	}
	return &TitleBlock{m: m, style: style, minSize: minSize, text: text}, nil
}

// paragraph 返回 width 下实际使用的段落，行高随字号等比缩放。
func (t *TitleBlock) paragraph(width float64) (*Paragraph, error) {
	avail := width - t.style.Indent.ToMM() - t.style.RightIndent.ToMM()
	size, err := AutoFitSize(t.m, t.text, t.style.Font, avail, t.style.Size, t.minSize)
	if err != nil {
		return nil, err
	}
	st := t.style
	if size != st.Size {
		st.Leading = Factor(st.LineHeight() / Pt(st.Size))
		st.Size = size
	}
	p := Text(t.m, st, t.text)
	p.anchor = t.anchor
	return p, nil
}

// Size 返回 width 下选定的字号。
func (t *TitleBlock) Size(width float64) (float64, error) {
	p, err := t.paragraph(width)
	if err != nil {
		return 0, err
	}
	return p.style.Size, nil
}

func (t *TitleBlock) Measure(width float64) (float64, error) {
	p, err := t.paragraph(width)
	if err != nil {
		return 0, err
	}
	return p.Measure(width)
}

func (t *TitleBlock) Place(pw *PageWriter, x, y, width float64) error {
	p, err := t.paragraph(width)
	if err != nil {
		return err
	}
	return p.Place(pw, x, y, width)
}

func (t *TitleBlock) Splittable() bool { return false }
