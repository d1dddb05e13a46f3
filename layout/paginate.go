package layout

import (
	"context"

	"github.com/charmbracelet/log"
)

// pageAccumulator 收集一页的绘制指令。
type pageAccumulator struct {
	tpl    *Template
	pw     *PageWriter
	placed bool
}

// paginator 按顺序执行指令：逐个区域填充内容，放不下时拆分、整组移动或生成通栏页。
type paginator struct {
	reg     *Registry
	geo     PageGeometry
	bandGap float64
	logger  *log.Logger
	frames  bool

	pages  []*pageAccumulator
	frame  int
	cursor float64
	// next 是下一页使用的模板名。
	next string
}

func (p *paginator) run(ctx context.Context, story *Story) (*Result, error) {
	if story.Start == "" {
		return nil, ConfigError("paginate", "未指定起始模板")
	}
	p.next = story.Start
	if err := p.newPage(); err != nil {
		return nil, err
	}
	for i, d := range story.Directives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.exec(d); err != nil {
			p.logger.Debug("指令执行失败", "index", i, "directive", d.Kind)
			return nil, err
		}
	}
	// 末尾的空白页不输出
	if n := len(p.pages); n > 1 && !p.pages[n-1].placed {
		p.pages = p.pages[:n-1]
	}
	return p.result(story.Meta)
}

func (p *paginator) exec(d Directive) error {
	switch d.Kind {
	case DirAppend:
		if d.Block == nil {
			return nil
		}
		return p.place(d.Block, d.Placement)
	case DirSwitchTemplate:
		if !p.reg.Has(d.Template) {
			return ConfigError("paginate", "未定义的页面模板 %q", d.Template)
		}
		p.next = d.Template
		return nil
	case DirPageBreak:
		if !p.curr().placed {
			return p.retemplate(p.next)
		}
		return p.newPage()
	case DirCondBreak:
		if !p.atTop() && p.remaining() < d.MinSpace {
			return p.nextFrame()
		}
		return nil
	default:
		return ConfigError("paginate", "未知指令 %v", d.Kind)
	}
}

func (p *paginator) curr() *pageAccumulator { return p.pages[len(p.pages)-1] }

func (p *paginator) currFrame() Frame { return p.curr().tpl.Frames[p.frame] }

func (p *paginator) remaining() float64 { return p.currFrame().Bottom() - p.cursor }

func (p *paginator) atTop() bool { return p.cursor <= p.currFrame().Y+epsilon }

func (p *paginator) multiColumn() bool { return len(p.curr().tpl.Frames) > 1 }

// newPage 用 next 模板开始新页；一次性模板取用后即失效。
func (p *paginator) newPage() error {
	tpl, err := p.reg.Acquire(p.next)
	if err != nil {
		return err
	}
	p.pages = append(p.pages, &pageAccumulator{tpl: tpl, pw: NewPageWriter()})
	p.frame = 0
	p.cursor = tpl.Frames[0].Y
	return nil
}

// retemplate 让尚无内容的当前页改用 name 模板，避免留下空白页。
func (p *paginator) retemplate(name string) error {
	tpl, err := p.reg.Acquire(name)
	if err != nil {
		return err
	}
	p.curr().tpl = tpl
	p.frame = 0
	p.cursor = tpl.Frames[0].Y
	return nil
}

// nextFrame 移到下一个高度非零的区域，没有时换页。
func (p *paginator) nextFrame() error {
	for p.frame+1 < len(p.curr().tpl.Frames) {
		p.frame++
		if f := p.currFrame(); f.Height > epsilon {
			p.cursor = f.Y
			return nil
		}
	}
	return p.newPage()
}

// put 在当前区域的光标处放置已测量的块。
func (p *paginator) put(b Block, h float64) error {
	f := p.currFrame()
	if err := b.Place(p.curr().pw, f.X, p.cursor, f.Width); err != nil {
		return err
	}
	p.cursor += h
	p.curr().placed = true
	return nil
}

func (p *paginator) place(b Block, placement Placement) error {
	if placement == PlaceFullWidth && p.multiColumn() {
		return p.band(b)
	}
	for {
		f := p.currFrame()
		if _, ok := b.(*Spacer); ok && p.atTop() {
			return nil
		}
		h, err := b.Measure(f.Width)
		if err != nil {
			return err
		}
		if h <= p.remaining()+epsilon {
			return p.put(b, h)
		}
		// 放不下的空白只结束当前区域，到了下一区域顶部即被丢弃
		if _, ok := b.(*Spacer); ok {
			return p.nextFrame()
		}
		if s, ok := b.(Splitter); ok && b.Splittable() {
			head, tail, err := s.Split(f.Width, p.remaining())
			if err != nil {
				return err
			}
			if head == nil && p.atTop() {
				p.logger.Warn("内容高于整个区域，超出部分溢出", "height", h, "frame", f.Height)
				return p.put(b, h)
			}
			if head != nil {
				hh, err := head.Measure(f.Width)
				if err != nil {
					return err
				}
				if err := p.put(head, hh); err != nil {
					return err
				}
			}
			if tail == nil {
				return nil
			}
			b = tail
			if err := p.nextFrame(); err != nil {
				return err
			}
			continue
		}
		if g, ok := b.(*Group); ok {
			if !p.atTop() {
				p.logger.Debug("保持组整体移到下一区域", "height", h, "remaining", p.remaining())
				if err := p.nextFrame(); err != nil {
					return err
				}
				continue
			}
			p.logger.Debug("保持组高于整个区域，逐个排入成员", "height", h)
			for _, m := range g.Blocks {
				if err := p.place(m, PlaceInline); err != nil {
					return err
				}
			}
			return nil
		}
		if p.multiColumn() {
			return p.band(b)
		}
		if !p.atTop() {
			if err := p.nextFrame(); err != nil {
				return err
			}
			continue
		}
		p.logger.Warn("内容高于整个区域，超出部分溢出", "height", h, "frame", f.Height)
		return p.put(b, h)
	}
}

// band 按块在版心宽度下的高度生成一次性通栏模板，块放入通栏，之后在下方双栏继续排版。
func (p *paginator) band(b Block) error {
	width := p.geo.Content.Width
	h, err := b.Measure(width)
	if err != nil {
		return err
	}
	name, err := p.reg.OneShot(BandTemplate("band", h+p.bandGap, p.geo.Content, p.geo.Gutter, p.curr().tpl.Decorate))
	if err != nil {
		return err
	}
	p.logger.Debug("生成通栏页", "template", name, "height", h)
	if p.curr().placed {
		pending := p.next
		p.next = name
		err = p.newPage()
		p.next = pending
	} else {
		err = p.retemplate(name)
	}
	if err != nil {
		return err
	}
	if h > p.currFrame().Height+epsilon {
		p.logger.Warn("通栏内容高于版心，超出部分溢出", "height", h, "content", p.geo.Content.Height)
	}
	if err := p.put(b, h); err != nil {
		return err
	}
	return p.nextFrame()
}

func (p *paginator) result(meta DocumentMeta) (*Result, error) {
	res := &Result{Meta: meta, Pages: make([]Page, 0, len(p.pages))}
	for i, acc := range p.pages {
		info := PageInfo{
			Number:   i + 1,
			Template: acc.tpl.Name,
			Width:    p.geo.Width,
			Height:   p.geo.Height,
			Content:  p.geo.Content,
		}
		if acc.tpl.Decorate != nil {
			if err := acc.tpl.Decorate(acc.pw, info); err != nil {
				return nil, err
			}
		}
		if p.frames {
			outline := Hex("#FF0000")
			for _, f := range acc.tpl.Frames {
				acc.pw.Rect(Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height, StrokeColor: &outline, StrokeWidth: Pt(0.5)})
			}
		}
		res.Pages = append(res.Pages, Page{
			Number:   info.Number,
			Template: info.Template,
			Width:    info.Width,
			Height:   info.Height,
			Ops:      acc.pw.Ops(),
		})
	}
	return res, nil
}
