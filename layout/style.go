package layout

// 该文件定义排版用的样式结构体及默认值，TOML 样式文件在此基础上覆盖。

// TextStyle 描述一种段落样式。Size 单位 pt。
type TextStyle struct {
	Font        string         `toml:"font"`
	Size        float64        `toml:"size"`
	Leading     LineHeightSpec `toml:"leading"`
	Color       Color          `toml:"color"`
	Align       string         `toml:"align"`
	SpaceBefore Length         `toml:"space_before"`
	SpaceAfter  Length         `toml:"space_after"`
	// FirstLineIndent 叠加在首行上，负值表示悬挂缩进。
	Indent          Length `toml:"indent"`
	RightIndent     Length `toml:"right_indent"`
	FirstLineIndent Length `toml:"first_line_indent"`
}

// Ref 返回该样式对应的字体引用。
func (s TextStyle) Ref() FontRef { return FontRef{Name: s.Font, Size: s.Size} }

// LineHeight 返回行高（mm）。
func (s TextStyle) LineHeight() float64 { return s.Leading.Resolve(PT(s.Size), UnitMM) }

// WithFont 返回换了字体的副本。
func (s TextStyle) WithFont(font string) TextStyle {
	s.Font = font
	return s
}

// PageStyle 描述纸张与版心。
type PageStyle struct {
	Width        Length `toml:"width"`
	Height       Length `toml:"height"`
	MarginLeft   Length `toml:"margin_left"`
	MarginRight  Length `toml:"margin_right"`
	MarginTop    Length `toml:"margin_top"`
	MarginBottom Length `toml:"margin_bottom"`
	Gutter       Length `toml:"gutter"`
}

// TableStyle 描述表格外观与列宽计算参数。
type TableStyle struct {
	HeaderFont     FontRef        `toml:"header_font"`
	BodyFont       FontRef        `toml:"body_font"`
	Leading        LineHeightSpec `toml:"leading"`
	MinColumnWidth Length         `toml:"min_column_width"`
	CellPadding    Length         `toml:"cell_padding"`
	CellPaddingY   Length         `toml:"cell_padding_y"`
	Radius         Length         `toml:"radius"`
	BorderWidth    Length         `toml:"border_width"`
	BorderColor    Color          `toml:"border_color"`
	HeaderFill     Color          `toml:"header_fill"`
	HeaderColor    Color          `toml:"header_color"`
	TextColor      Color          `toml:"text_color"`
	Zebra          bool           `toml:"zebra"`
	ZebraFill      Color          `toml:"zebra_fill"`
	CaptionBelow   bool           `toml:"caption_below"`
	CaptionGap     Length         `toml:"caption_gap"`
	Caption        TextStyle      `toml:"caption"`
}

// CoverStyle 描述封面。
type CoverStyle struct {
	TitleFont    string    `toml:"title_font"`
	TitleMax     float64   `toml:"title_max"`
	TitleMin     float64   `toml:"title_min"`
	TitleColor   Color     `toml:"title_color"`
	Subtitle     TextStyle `toml:"subtitle"`
	Meta         TextStyle `toml:"meta"`
	Background   Color     `toml:"background"`
	Darken       float64   `toml:"darken"`
	PanelColor   Color     `toml:"panel_color"`
	PanelOpacity float64   `toml:"panel_opacity"`
	PanelRadius  Length    `toml:"panel_radius"`
	PanelPadding Length    `toml:"panel_padding"`
	PanelRatio   float64   `toml:"panel_ratio"`
	PanelLeft    Length    `toml:"panel_left"`
	PanelBottom  Length    `toml:"panel_bottom"`
	LineGap      Length    `toml:"line_gap"`
	LogoWidth    Length    `toml:"logo_width"`
	LogoMarginX  Length    `toml:"logo_margin_x"`
	LogoMarginY  Length    `toml:"logo_margin_y"`
}

// WidgetStyle 描述仪表盘卡片。
type WidgetStyle struct {
	Fill         Color            `toml:"fill"`
	Opacity      float64          `toml:"opacity"`
	Radius       Length           `toml:"radius"`
	Padding      Length           `toml:"padding"`
	BarWidth     Length           `toml:"bar_width"`
	Title        TextStyle        `toml:"title"`
	Body         TextStyle        `toml:"body"`
	Button       TextStyle        `toml:"button"`
	ButtonFill   Color            `toml:"button_fill"`
	ButtonRadius Length           `toml:"button_radius"`
	Square       TextStyle        `toml:"square"`
	SquareSize   Length           `toml:"square_size"`
	Severity     map[string]Color `toml:"severity"`
}

// Style 汇总整篇文档的排版参数。
type Style struct {
	Page          PageStyle   `toml:"page"`
	Title         TextStyle   `toml:"title"`
	TitleMin      float64     `toml:"title_min"`
	AuthorName    TextStyle   `toml:"author_name"`
	AuthorInfo    TextStyle   `toml:"author_info"`
	AuthorColumns int         `toml:"author_columns"`
	Abstract      TextStyle   `toml:"abstract"`
	Body          TextStyle   `toml:"body"`
	Heading       TextStyle   `toml:"heading"`
	Reference     TextStyle   `toml:"reference"`
	Caption       TextStyle   `toml:"caption"`
	Header        TextStyle   `toml:"header"`
	Footer        TextStyle   `toml:"footer"`
	Sources       TextStyle   `toml:"sources"`
	Table         TableStyle  `toml:"table"`
	Report        TableStyle  `toml:"report_table"`
	Cover         CoverStyle  `toml:"cover"`
	Widget        WidgetStyle `toml:"widget"`

	EmphasisFont     string `toml:"emphasis_font"`
	LinkColor        Color  `toml:"link_color"`
	RuleColor        Color  `toml:"rule_color"`
	PlaceholderColor Color  `toml:"placeholder_color"`
	SectionBreak     Length `toml:"section_break"`
	TableBreak       Length `toml:"table_break"`
	SectionGap       Length `toml:"section_gap"`
	BlockGap         Length `toml:"block_gap"`
	BandGap          Length `toml:"band_gap"`
	ReferenceGap     Length `toml:"reference_gap"`

	HeaderTemplate string `toml:"header_template"`
	FooterTemplate string `toml:"footer_template"`
	HeaderY        Length `toml:"header_y"`
	HeaderRuleY    Length `toml:"header_rule_y"`
	FooterY        Length `toml:"footer_y"`
}

// DefaultStyle 返回 Letter 纸、双栏论文版式的默认样式。
func DefaultStyle() Style {
	dark := Hex("#111827")
	mediumDark := Hex("#374151")
	body := TextStyle{Font: "Times-Roman", Size: 10, Leading: Leading(12), Color: dark, Align: "left"}
	padded := body
	padded.Indent = PT(6)
	padded.RightIndent = PT(6)

	caption := body
	caption.Font = "Times-Italic"
	caption.Size = 9
	caption.Leading = Leading(11)
	caption.Align = "center"

	abstract := body
	abstract.Indent = IN(0.25)
	abstract.RightIndent = IN(0.25)

	reference := body
	reference.Size = 9
	reference.Leading = Leading(11)
	reference.Indent = IN(0.25)
	reference.FirstLineIndent = IN(-0.25)

	header := TextStyle{Font: "Times-Roman", Size: 9, Leading: Leading(11), Color: dark}
	footer := header
	footer.Align = "center"

	white := Hex("#FFFFFF")
	return Style{
		Page: PageStyle{
			Width:        IN(8.5),
			Height:       IN(11),
			MarginLeft:   IN(0.75),
			MarginRight:  IN(0.75),
			MarginTop:    IN(1),
			MarginBottom: IN(1),
			Gutter:       IN(0.25),
		},
		Title:         TextStyle{Font: "Times-Bold", Size: 22, Leading: Leading(26), Color: dark, Align: "center"},
		TitleMin:      16,
		AuthorName:    TextStyle{Font: "Times-Roman", Size: 11, Leading: Leading(14), Color: dark, Align: "center"},
		AuthorInfo:    TextStyle{Font: "Times-Roman", Size: 9, Leading: Leading(12), Color: mediumDark, Align: "center"},
		AuthorColumns: 3,
		Abstract:      abstract,
		Body:          padded,
		Heading: TextStyle{Font: "Times-Roman", Size: 12, Leading: Leading(14), Color: dark,
			SpaceBefore: PT(12), SpaceAfter: PT(6)},
		Reference: reference,
		Caption:   caption,
		Header:    header,
		Footer:    footer,
		Sources:   reference,
		Table: TableStyle{
			HeaderFont:     FontRef{Name: "Times-Bold", Size: 9},
			BodyFont:       FontRef{Name: "Times-Roman", Size: 9},
			Leading:        Leading(11),
			MinColumnWidth: PT(36),
			CellPadding:    PT(4),
			CellPaddingY:   PT(3),
			BorderWidth:    PT(0.25),
			BorderColor:    Hex("#E5E7EB"),
			HeaderFill:     Hex("#DBEAFE"),
			HeaderColor:    dark,
			TextColor:      dark,
			Zebra:          true,
			ZebraFill:      Hex("#F3F4F6"),
			CaptionGap:     PT(6),
			Caption:        caption,
		},
		Report: TableStyle{
			HeaderFont:     FontRef{Name: "Helvetica-Bold", Size: 11},
			BodyFont:       FontRef{Name: "Helvetica", Size: 10},
			Leading:        Factor(1.2),
			MinColumnWidth: PT(36),
			CellPadding:    PT(6),
			CellPaddingY:   PT(6),
			Radius:         PT(8),
			BorderWidth:    PT(0.5),
			BorderColor:    Hex("#E5E7EB"),
			HeaderFill:     Hex("#163B8A"),
			HeaderColor:    white,
			TextColor:      dark,
			Zebra:          true,
			ZebraFill:      Hex("#F3F4F6"),
			CaptionBelow:   true,
			CaptionGap:     PT(12),
			Caption: TextStyle{Font: "Helvetica", Size: 9, Leading: Factor(1.2),
				Color: Hex("#6B7280"), Align: "left"},
		},
		Cover: CoverStyle{
			TitleFont:    "Helvetica-Bold",
			TitleMax:     52,
			TitleMin:     28,
			TitleColor:   white,
			Subtitle:     TextStyle{Font: "Helvetica", Size: 22, Leading: Factor(1.15), Color: Hex("#EAEAEA")},
			Meta:         TextStyle{Font: "Helvetica", Size: 10, Leading: Factor(1.2), Color: Hex("#D0D0D0"), Align: "right"},
			Background:   Hex("#1C1C1E"),
			Darken:       0.35,
			PanelColor:   Hex("#05070B"),
			PanelOpacity: 0.42,
			PanelRadius:  PT(14),
			PanelPadding: PT(18),
			PanelRatio:   0.65,
			PanelLeft:    IN(1),
			PanelBottom:  IN(0.9),
			LineGap:      PT(10),
			LogoWidth:    IN(1.2),
			LogoMarginX:  IN(0.6),
			LogoMarginY:  IN(0.6),
		},
		Widget: WidgetStyle{
			Fill:         Hex("#1E1E24"),
			Opacity:      0.85,
			Radius:       PT(8),
			Padding:      IN(0.2),
			BarWidth:     PT(10),
			Title:        TextStyle{Font: "Helvetica-Bold", Size: 14, Leading: Factor(1.2), Color: white},
			Body:         TextStyle{Font: "Helvetica", Size: 10, Leading: Factor(1.4), Color: Hex("#D3D3D3")},
			Button:       TextStyle{Font: "Helvetica", Size: 9, Leading: Factor(1), Color: white},
			ButtonFill:   Hex("#333338"),
			ButtonRadius: PT(5),
			Square:       TextStyle{Font: "Helvetica", Size: 12, Leading: Factor(1.2), Color: white, Align: "center"},
			SquareSize:   IN(2),
			Severity: map[string]Color{
				"red":    Hex("#FF5A5F"),
				"yellow": Hex("#FFB400"),
				"grey":   Hex("#B0B0B0"),
			},
		},
		EmphasisFont:     "Times-Bold",
		LinkColor:        Hex("#163B8A"),
		RuleColor:        dark,
		PlaceholderColor: Hex("#1C1C1E"),
		SectionBreak:     IN(0.8),
		TableBreak:       IN(1.2),
		SectionGap:       IN(0.06),
		BlockGap:         IN(0.08),
		BandGap:          IN(0.15),
		ReferenceGap:     PT(4),
		HeaderTemplate:   "${journal}, Vol. ${volume}, No. ${issue}, ${date}",
		FooterTemplate:   "Page ${page}",
		HeaderY:          IN(0.5),
		HeaderRuleY:      IN(0.55),
		FooterY:          IN(0.5),
	}
}

// Geometry 由页面样式推导出版心，非法几何返回 ConfigError。
func (p PageStyle) Geometry() (PageGeometry, error) {
	w, h := p.Width.ToMM(), p.Height.ToMM()
	content := Frame{
		X:      p.MarginLeft.ToMM(),
		Y:      p.MarginTop.ToMM(),
		Width:  w - p.MarginLeft.ToMM() - p.MarginRight.ToMM(),
		Height: h - p.MarginTop.ToMM() - p.MarginBottom.ToMM(),
	}
	if w <= 0 || h <= 0 {
		return PageGeometry{}, ConfigError("page", "页面尺寸非法: %.2fx%.2fmm", w, h)
	}
	if content.Width <= 0 || content.Height <= 0 {
		return PageGeometry{}, ConfigError("page", "页边距过大，版心为 %.2fx%.2fmm", content.Width, content.Height)
	}
	gutter := p.Gutter.ToMM()
	if gutter >= content.Width {
		return PageGeometry{}, ConfigError("page", "栏间距 %.2fmm 不小于版心宽度 %.2fmm", gutter, content.Width)
	}
	return PageGeometry{Width: w, Height: h, Content: content, Gutter: gutter}, nil
}

// PageGeometry 是解析后的页面几何（mm）。
type PageGeometry struct {
	Width   float64
	Height  float64
	Content Frame
	Gutter  float64
}

// ColumnWidth 返回双栏版式中单栏的宽度。
func (g PageGeometry) ColumnWidth() float64 { return (g.Content.Width - g.Gutter) / 2 }
