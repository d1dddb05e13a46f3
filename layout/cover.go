package layout

// CoverSpec 描述封面内容。
type CoverSpec struct {
	Title     string
	Subtitle  string
	MetaLeft  string
	MetaRight string
	Image     string
	Logo      string
	// OffsetMode 为 "points" 时 OffsetX/OffsetY 以 pt 为单位，否则按溢出部分的比例偏移。
	OffsetMode string
	OffsetX    float64
	OffsetY    float64
	Darken     *float64
}

// CoverSheet 是占满整页的封面：铺满页面的背景图、半透明信息面板和左上角徽标。
type CoverSheet struct {
	m     TextMetrics
	style CoverStyle
	spec  CoverSpec
	pageW float64
	pageH float64
	bg    imageInfo
	logo  imageInfo
}

type imageInfo struct {
	w, h int
	ok   bool
}

// NewCoverSheet 构造封面块。背景或徽标图片不可用时返回 ResourceError，封面本身仍可使用。
func NewCoverSheet(m TextMetrics, images ImageSource, style CoverStyle, spec CoverSpec, pageW, pageH float64) (*CoverSheet, []error) {
	c := &CoverSheet{m: m, style: style, spec: spec, pageW: pageW, pageH: pageH}
	var errs []error
	probe := func(src string) imageInfo {
		if src == "" || images == nil {
			return imageInfo{}
		}
		w, h, err := images.ImageSize(src)
		if err != nil || w <= 0 || h <= 0 {
			if err != nil {
				errs = append(errs, err)
			}
			return imageInfo{}
		}
		return imageInfo{w: w, h: h, ok: true}
	}
	c.bg = probe(spec.Image)
	c.logo = probe(spec.Logo)
	return c, errs
}

func (c *CoverSheet) Measure(float64) (float64, error) { return c.pageH, nil }

func (c *CoverSheet) Splittable() bool { return false }

func (c *CoverSheet) darken() float64 {
	if c.spec.Darken != nil {
		return min(max(*c.spec.Darken, 0), 1)
	}
	return c.style.Darken
}

// backgroundBox 计算铺满页面的图片位置，偏移不改变缩放比例。
func (c *CoverSheet) backgroundBox() (x, y, w, h float64) {
	aspect := float64(c.bg.h) / float64(c.bg.w)
	h = c.pageH
	w = h / aspect
	if w < c.pageW {
		w = c.pageW
		h = w * aspect
	}
	x = (c.pageW - w) / 2
	y = (c.pageH - h) / 2
	if c.spec.OffsetMode == "points" {
		x += Pt(c.spec.OffsetX)
		y -= Pt(c.spec.OffsetY)
	} else {
		x += c.spec.OffsetX * max(0, w-c.pageW)
		y -= c.spec.OffsetY * max(0, h-c.pageH)
	}
	return x, y, w, h
}

func (c *CoverSheet) Place(pw *PageWriter, x, y, _ float64) error {
	st := c.style
	if c.bg.ok {
		bx, by, bw, bh := c.backgroundBox()
		pw.Image(ImageBox{Path: c.spec.Image, X: x + bx, Y: y + by, Width: bw, Height: bh, Opacity: 1})
		if d := c.darken(); d > 0 {
			pw.Rect(Rect{X: x, Y: y, Width: c.pageW, Height: c.pageH, FillColor: colorPtr(Color{}), Opacity: d})
		}
	} else {
		pw.Rect(Rect{X: x, Y: y, Width: c.pageW, Height: c.pageH, FillColor: colorPtr(st.Background)})
	}
	if err := c.placePanel(pw, x, y); err != nil {
		return err
	}
	if c.logo.ok {
		lw := st.LogoWidth.ToMM()
		lh := lw * float64(c.logo.h) / float64(c.logo.w)
		pw.Image(ImageBox{Path: c.spec.Logo, X: x + st.LogoMarginX.ToMM(), Y: y + st.LogoMarginY.ToMM(), Width: lw, Height: lh, Opacity: 1})
	}
	return nil
}

func (c *CoverSheet) placePanel(pw *PageWriter, x, y float64) error {
	st := c.style
	pad := st.PanelPadding.ToMM()
	gap := st.LineGap.ToMM()
	panelW := min(c.pageW*st.PanelRatio, c.pageW-Inch(2))
	inner := panelW - 2*pad

	size, err := AutoFitSize(c.m, c.spec.Title, st.TitleFont, inner, st.TitleMax, st.TitleMin)
	if err != nil {
		return err
	}
	titleH := Pt(size)
	subLines, err := Wrap(c.m, c.spec.Subtitle, st.Subtitle.Ref(), inner)
	if err != nil {
		return err
	}
	subLH := st.Subtitle.LineHeight()
	metaLH := st.Meta.LineHeight()
	panelH := 2*pad + titleH + gap + float64(len(subLines))*subLH + gap + 2*metaLH

	px := x + st.PanelLeft.ToMM()
	py := y + c.pageH - st.PanelBottom.ToMM() - panelH
	pw.Rect(Rect{X: px, Y: py, Width: panelW, Height: panelH, Radius: st.PanelRadius.ToMM(),
		FillColor: colorPtr(st.PanelColor), Opacity: st.PanelOpacity})

	cursor := py + pad
	titleW, err := c.m.TextWidth(c.spec.Title, st.TitleFont, size)
	if err != nil {
		return err
	}
	pw.Text(TextRun{Content: c.spec.Title, X: px + pad, Y: cursor, Width: titleW, LineHeight: titleH,
		Font: st.TitleFont, FontSize: size, Color: st.TitleColor})
	cursor += titleH + gap
	for _, line := range subLines {
		lw, err := st.Subtitle.Ref().width(c.m, line)
		if err != nil {
			return err
		}
		pw.Text(TextRun{Content: line, X: px + pad, Y: cursor, Width: lw, LineHeight: subLH,
			Font: st.Subtitle.Font, FontSize: st.Subtitle.Size, Color: st.Subtitle.Color})
		cursor += subLH
	}
	metaY := py + panelH - pad - 2*metaLH
	for _, line := range []string{c.spec.MetaLeft, c.spec.MetaRight} {
		if line != "" {
			pw.Text(TextRun{Content: line, X: px + pad, Y: metaY, Width: inner, LineHeight: metaLH,
				Font: st.Meta.Font, FontSize: st.Meta.Size, Color: st.Meta.Color, Align: "right"})
		}
		metaY += metaLH
	}
	return nil
}
