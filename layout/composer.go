package layout

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/cite"
	"github.com/ByLCY/folio/content"
)

// 常驻模板名称。
const (
	TemplateCover  = "CoverSheet"
	TemplateFirst  = "First"
	TemplateTwoCol = "TwoCol"
)

// RefAnchor 返回第 n 条参考文献的锚点名。
func RefAnchor(n int) string { return fmt.Sprintf("ref_%d", n) }

// Composer 把文档转换为指令流并按指令分页。
// 一个 Composer 只服务于一份文档：Story 会按文档内容重新定义常驻模板的页眉页脚。
type Composer struct {
	m      TextMetrics
	images ImageSource
	style  Style
	geo    PageGeometry
	reg    *Registry
	logger *log.Logger
	debug  DebugOptions

	// coverPages 是封面页数，页脚页码不计封面。
	coverPages int
	header     map[string]any
}

// NewComposer 校验样式与页面几何并创建 Composer。
func NewComposer(opts BuildOptions) (*Composer, error) {
	if opts.Metrics == nil {
		return nil, ConfigError("compose", "缺少文本测量实现")
	}
	style := opts.style()
	geo, err := style.Page.Geometry()
	if err != nil {
		return nil, err
	}
	return &Composer{
		m:      opts.Metrics,
		images: opts.Images,
		style:  style,
		geo:    geo,
		reg:    NewRegistry(),
		logger: opts.logger(),
		debug:  opts.Debug,
	}, nil
}

// Geometry 返回页面几何。
func (c *Composer) Geometry() PageGeometry { return c.geo }

// Registry 返回模板注册表。
func (c *Composer) Registry() *Registry { return c.reg }

func (c *Composer) defineTemplates() error {
	full := Frame{Width: c.geo.Width, Height: c.geo.Height}
	for _, t := range []Template{
		SingleColumn(TemplateCover, full, nil),
		SingleColumn(TemplateFirst, c.geo.Content, c.decorate),
		TwoColumns(TemplateTwoCol, c.geo.Content, c.geo.Gutter, c.decorate),
	} {
		if err := c.reg.Define(t); err != nil {
			return err
		}
	}
	return nil
}

// decorate 绘制页眉（第二页起）与居中页码。
func (c *Composer) decorate(pw *PageWriter, info PageInfo) error {
	st := c.style
	page := info.Number - c.coverPages
	x, w := info.Content.X, info.Content.Width
	if page > 1 && st.HeaderTemplate != "" {
		lh := st.Header.LineHeight()
		text := binding.Interpolate(st.HeaderTemplate, c.header)
		if err := Text(c.m, st.Header, text).Place(pw, x, st.HeaderY.ToMM()-lh, w); err != nil {
			return err
		}
		ruleY := st.HeaderRuleY.ToMM()
		pw.Line(Line{X1: x, Y1: ruleY, X2: x + w, Y2: ruleY, Color: st.RuleColor, Width: Pt(0.5)})
	}
	if st.FooterTemplate != "" {
		text := binding.Interpolate(st.FooterTemplate, map[string]any{"page": page})
		y := info.Height - st.FooterY.ToMM()
		if err := Text(c.m, st.Footer, text).Place(pw, x, y, w); err != nil {
			return err
		}
	}
	return nil
}

// Story 按文档顺序生成块与指令。
func (c *Composer) Story(ctx context.Context, doc *content.Document) (*Story, error) {
	if doc == nil {
		return nil, ContentError("compose", "文档为空")
	}
	if err := c.defineTemplates(); err != nil {
		return nil, err
	}
	meta := doc.Metadata
	c.header = headerData(meta)
	b := &storyBuilder{
		c:      c,
		story:  &Story{Start: TemplateFirst, Meta: documentMeta(meta)},
		linker: cite.Linker{Max: len(doc.References)},
		seen:   map[string]bool{},
	}
	if meta.Cover != nil {
		b.cover(meta)
	}
	if err := b.front(meta); err != nil {
		return nil, err
	}
	b.add(SwitchTemplate(TemplateTwoCol), PageBreak())
	for _, item := range doc.Body {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.item(item); err != nil {
			return nil, err
		}
	}
	b.back(doc.References)
	if err := c.premeasure(ctx, b.tables); err != nil {
		return nil, err
	}
	return b.story, nil
}

// premeasure 并发地在栏宽与版心宽度下测量表格，结果缓存在各表格内。
func (c *Composer) premeasure(ctx context.Context, tables []*TableBlock) error {
	if len(tables) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, t := range tables {
		for _, w := range []float64{c.geo.ColumnWidth(), c.geo.Content.Width} {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				_, err := t.Measure(w)
				return err
			})
		}
	}
	return g.Wait()
}

func headerData(meta content.Metadata) map[string]any {
	info := meta.PublicationInfo
	return map[string]any{
		"journal": info.Journal,
		"volume":  info.Volume.String(),
		"issue":   info.Issue.String(),
		"date":    info.Date,
		"title":   meta.Title,
	}
}

func documentMeta(meta content.Metadata) DocumentMeta {
	names := make([]string, 0, len(meta.Authors))
	for _, a := range meta.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return DocumentMeta{
		Title:    meta.Title,
		Author:   strings.Join(names, ", "),
		Subject:  meta.Summary,
		Creator:  "folio",
		Keywords: strings.Join(meta.Tags, ", "),
	}
}

type storyBuilder struct {
	c      *Composer
	story  *Story
	linker cite.Linker

	sections int
	tableNo  int
	figureNo int
	tables   []*TableBlock
	sources  []Source
	seen     map[string]bool
}

func (b *storyBuilder) add(ds ...Directive) {
	b.story.Directives = append(b.story.Directives, ds...)
}

func (b *storyBuilder) warn(err error) {
	b.c.logger.Warn(err.Error(), "kind", KindOf(err))
}

// runs 把引用标记改写为链接，无法识别的标记按原文保留。
func (b *storyBuilder) runs(text string) []Run {
	segs, _, errs := b.linker.Link(text)
	for _, err := range errs {
		b.warn(ContentError("cite", "%v", err))
	}
	link := b.c.style.LinkColor
	out := make([]Run, 0, len(segs))
	for _, s := range segs {
		if s.Target > 0 {
			out = append(out, Run{Text: s.Text, Color: &link, Target: RefAnchor(s.Target)})
			continue
		}
		out = append(out, Run{Text: s.Text})
	}
	return out
}

func (b *storyBuilder) cover(meta content.Metadata) {
	c := b.c
	cv := meta.Cover
	title := cv.Title
	if title == "" {
		title = meta.Title
	}
	sheet, errs := NewCoverSheet(c.m, c.images, c.style.Cover, CoverSpec{
		Title:      title,
		Subtitle:   cv.Subtitle,
		MetaLeft:   cv.Author,
		MetaRight:  cv.Date,
		Image:      cv.Image,
		Logo:       cv.Logo,
		OffsetMode: cv.OffsetMode,
		OffsetX:    cv.OffsetX,
		OffsetY:    cv.OffsetY,
		Darken:     cv.Darken,
	}, c.geo.Width, c.geo.Height)
	for _, err := range errs {
		b.warn(err)
	}
	b.story.Start = TemplateCover
	c.coverPages = 1
	b.add(Append(sheet), SwitchTemplate(TemplateFirst), PageBreak())
}

// front 生成首页：标题、作者、摘要与关键词。
func (b *storyBuilder) front(meta content.Metadata) error {
	c := b.c
	st := c.style
	title, err := NewTitle(c.m, st.Title, st.TitleMin, meta.Title)
	if err != nil {
		return err
	}
	b.add(Append(title), Append(&Spacer{Height: Inch(0.25)}))
	if len(meta.Authors) > 0 {
		authors := make([]Author, len(meta.Authors))
		for i, a := range meta.Authors {
			authors[i] = Author{Name: a.Name, Institution: a.Institution, Contact: a.Contact}
		}
		b.add(Append(NewAuthorGrid(c.m, st.AuthorName, st.AuthorInfo, st.AuthorColumns, authors)),
			Append(&Spacer{Height: Inch(0.2)}))
	}
	if meta.Summary != "" {
		runs := append([]Run{{Text: "Abstract— ", Font: st.EmphasisFont}}, b.runs(meta.Summary)...)
		b.add(Append(NewParagraph(c.m, st.Abstract, runs...)), Append(&Spacer{Height: Inch(0.1)}))
	}
	if len(meta.Tags) > 0 {
		b.add(Append(NewParagraph(c.m, st.Abstract,
			Run{Text: "Keywords— ", Font: st.EmphasisFont},
			Run{Text: strings.Join(meta.Tags, ", ")})))
	}
	return nil
}

func (b *storyBuilder) item(item content.Item) error {
	switch it := item.(type) {
	case *content.Section:
		return b.section(it)
	case *content.Table:
		return b.table(it)
	case *content.Image:
		b.image(it)
	case *content.Widget:
		b.widget(it)
	default:
		b.warn(ContentError("compose", "未知的内容类型 %q，已跳过", item.Kind()))
	}
	return nil
}

// section 输出带罗马数字编号的标题，标题与前两段保持在同一区域。
func (b *storyBuilder) section(s *content.Section) error {
	c := b.c
	st := c.style
	b.sections++
	numeral, err := ToRoman(b.sections)
	if err != nil {
		return err
	}
	heading := Text(c.m, st.Heading, numeral+". "+strings.ToUpper(s.Title))
	paras := make([]Block, 0, len(s.Content))
	for _, text := range s.Content {
		if strings.TrimSpace(text) == "" {
			continue
		}
		paras = append(paras, NewParagraph(c.m, st.Body, b.runs(text)...))
	}
	lead := min(2, len(paras))
	b.add(CondBreak(st.SectionBreak.ToMM()), Append(Keep(append([]Block{heading}, paras[:lead]...)...)))
	for _, p := range paras[lead:] {
		b.add(Append(p))
	}
	b.add(Append(&Spacer{Height: st.SectionGap.ToMM()}))
	return nil
}

func (b *storyBuilder) table(t *content.Table) error {
	c := b.c
	b.tableNo++
	ts := c.style.Table
	if strings.EqualFold(t.Style, "report") {
		ts = c.style.Report
	}
	caption := t.Caption
	if caption == "" {
		caption = strings.TrimSpace(fmt.Sprintf("Table %d. %s", b.tableNo, t.Title))
	}
	widths := make([]float64, len(t.ColWidths))
	for i, w := range t.ColWidths {
		widths[i] = Pt(w)
	}
	colors := make([]*Color, len(t.Colors))
	for i, s := range t.Colors {
		if s == "" {
			continue
		}
		col, err := ParseColor(s)
		if err != nil {
			b.warn(ContentError("table", "第 %d 列颜色 %q 无效: %v", i+1, s, err))
			continue
		}
		colors[i] = &col
	}
	block, err := NewTable(c.m, TableSpec{
		Headers:      t.HeaderStrings(),
		Rows:         t.RowStrings(),
		ColumnWidths: widths,
		Align:        t.Align,
		ColumnColors: colors,
		ColumnFonts:  t.Fonts,
		Caption:      caption,
		Anchor:       fmt.Sprintf("table_%d", b.tableNo),
		Style:        ts,
	})
	if err != nil {
		return err
	}
	b.tables = append(b.tables, block)
	if content.IsFullWidth(t.Placement) {
		b.add(AppendFullWidth(block))
		return nil
	}
	b.add(CondBreak(c.style.TableBreak.ToMM()), Append(block), Append(&Spacer{Height: c.style.BlockGap.ToMM()}))
	return nil
}

func (b *storyBuilder) image(img *content.Image) {
	c := b.c
	b.figureNo++
	text := fmt.Sprintf("Fig. %d.", b.figureNo)
	if img.Caption != "" {
		text += " " + img.Caption
	}
	block, err := NewImage(c.images, img.Src, ImageOptions{
		Scale:       img.Width,
		Caption:     Text(c.m, c.style.Caption, text),
		CaptionGap:  Pt(6),
		Placeholder: c.style.PlaceholderColor,
	})
	if err != nil {
		b.warn(err)
	}
	if content.IsFullWidth(img.Placement) {
		b.add(AppendFullWidth(block))
		return
	}
	b.add(Append(block), Append(&Spacer{Height: c.style.BlockGap.ToMM()}))
}

func (b *storyBuilder) widget(w *content.Widget) {
	c := b.c
	sources := make([]Source, len(w.Sources))
	for i, s := range w.Sources {
		sources[i] = Source{ID: s.ID, Label: s.Label, Details: s.Details}
		if s.ID != "" && !b.seen[s.ID] {
			b.seen[s.ID] = true
			b.sources = append(b.sources, sources[i])
		}
	}
	block := NewWidget(c.m, c.style.Widget, WidgetSpec{
		Square:   strings.EqualFold(w.Shape, "square"),
		Title:    w.Title,
		Text:     w.Text,
		Severity: strings.ToLower(w.Severity),
		Sources:  sources,
	})
	if content.IsFullWidth(w.Placement) {
		b.add(AppendFullWidth(block))
		return
	}
	b.add(Append(block), Append(&Spacer{Height: c.style.BlockGap.ToMM()}))
}

// back 生成单栏的参考文献与资料列表。
func (b *storyBuilder) back(refs []content.Reference) {
	if len(refs) == 0 && len(b.sources) == 0 {
		return
	}
	c := b.c
	st := c.style
	b.add(SwitchTemplate(TemplateFirst), PageBreak())
	if len(refs) > 0 {
		b.add(Append(Text(c.m, st.Heading, "REFERENCES")))
		for _, r := range refs {
			p := Text(c.m, st.Reference, fmt.Sprintf("[%d] %s", r.Index, r.Text)).WithAnchor(RefAnchor(r.Index))
			b.add(Append(p), Append(&Spacer{Height: st.ReferenceGap.ToMM()}))
		}
	}
	if len(b.sources) > 0 {
		b.add(CondBreak(st.SectionBreak.ToMM()), Append(Text(c.m, st.Heading, "SOURCES")))
		for _, s := range b.sources {
			label := s.Label
			if label == "" {
				label = s.ID
			}
			runs := []Run{{Text: label, Font: st.EmphasisFont}}
			if s.Details != "" {
				runs = append(runs, Run{Text: " " + s.Details})
			}
			p := NewParagraph(c.m, st.Sources, runs...).WithAnchor(SourceAnchor(s.ID))
			b.add(Append(p), Append(&Spacer{Height: st.ReferenceGap.ToMM()}))
		}
	}
}

// Run 执行指令流并返回分页结果。
func (c *Composer) Run(ctx context.Context, story *Story) (*Result, error) {
	if story == nil {
		return nil, ContentError("paginate", "指令流为空")
	}
	p := &paginator{
		reg:     c.reg,
		geo:     c.geo,
		bandGap: c.style.BandGap.ToMM(),
		logger:  c.logger,
		frames:  c.debug.Frames,
	}
	return p.run(ctx, story)
}
