package layout

import (
	"math"
	"strings"
	"unicode"
)

// Run 是段落中样式一致的一段文字。Font 为空时使用段落字体，Color 为空时使用段落颜色。
// Target 非空时该段文字成为指向同名锚点的链接。
type Run struct {
	Text   string
	Font   string
	Color  *Color
	Target string
}

type piece struct {
	text   string
	font   string
	color  Color
	target string
}

func (p piece) sameStyle(o piece) bool {
	return p.font == o.font && p.color == o.color && p.target == o.target
}

type word []piece

// Paragraph 是按贪心算法换行的富文本段落，可在行边界拆分。
type Paragraph struct {
	m      TextMetrics
	style  TextStyle
	words  []word
	anchor string
	// cont 表示这是被拆分段落的后续部分，首行缩进与段前距不再生效。
	cont bool
	// head 表示这是被拆分段落的前半部分，段后距不生效。
	head bool
}

// NewParagraph 由若干文本段构造段落。
func NewParagraph(m TextMetrics, style TextStyle, runs ...Run) *Paragraph {
	return &Paragraph{m: m, style: style, words: splitWords(style, runs)}
}

// Text 构造单一样式的段落。
func Text(m TextMetrics, style TextStyle, text string) *Paragraph {
	return NewParagraph(m, style, Run{Text: text})
}

// WithAnchor 在段落顶部放置名为 name 的链接目标。
func (p *Paragraph) WithAnchor(name string) *Paragraph {
	p.anchor = name
	return p
}

// Words 返回段落的单词序列（用于测试与调试）。
func (p *Paragraph) Words() []string {
	out := make([]string, len(p.words))
	for i, w := range p.words {
		var b strings.Builder
		for _, pc := range w {
			b.WriteString(pc.text)
		}
		out[i] = b.String()
	}
	return out
}

func splitWords(style TextStyle, runs []Run) []word {
	var (
		words   []word
		current word
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, current)
			current = nil
		}
	}
	for _, r := range runs {
		pc := piece{font: style.Font, color: style.Color, target: r.Target}
		if r.Font != "" {
			pc.font = r.Font
		}
		if r.Color != nil {
			pc.color = *r.Color
		}
		for _, ch := range r.Text {
			if unicode.IsSpace(ch) {
				flush()
				continue
			}
			if n := len(current); n > 0 && current[n-1].sameStyle(pc) {
				current[n-1].text += string(ch)
				continue
			}
			next := pc
			next.text = string(ch)
			current = append(current, next)
		}
	}
	flush()
	return words
}

type paraLine struct {
	start, end int
	width      float64
}

func (p *Paragraph) space() piece {
	return piece{text: " ", font: p.style.Font, color: p.style.Color}
}

// segments 把一行内的单词连同空格按样式合并。
func (p *Paragraph) segments(words []word) []piece {
	var segs []piece
	add := func(pc piece) {
		if n := len(segs); n > 0 && segs[n-1].sameStyle(pc) {
			segs[n-1].text += pc.text
			return
		}
		segs = append(segs, pc)
	}
	for i, w := range words {
		if i > 0 {
			add(p.space())
		}
		for _, pc := range w {
			add(pc)
		}
	}
	return segs
}

// lineWidth 按字体分组测量，单一字体的行等价于整行测量一次。
func (p *Paragraph) lineWidth(words []word) (float64, error) {
	total := 0.0
	var (
		font string
		buf  strings.Builder
	)
	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		w, err := p.m.TextWidth(buf.String(), font, p.style.Size)
		if err != nil {
			return err
		}
		total += w
		buf.Reset()
		return nil
	}
	for _, seg := range p.segments(words) {
		if seg.font != font {
			if err := flush(); err != nil {
				return 0, err
			}
			font = seg.font
		}
		buf.WriteString(seg.text)
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

func (p *Paragraph) firstIndent(i int) float64 {
	if i == 0 && !p.cont {
		return p.style.FirstLineIndent.ToMM()
	}
	return 0
}

func (p *Paragraph) limit(width float64, i int) float64 {
	return width - p.style.Indent.ToMM() - p.style.RightIndent.ToMM() - p.firstIndent(i)
}

func (p *Paragraph) wrap(width float64) ([]paraLine, error) {
	if len(p.words) == 0 {
		return nil, nil
	}
	if p.limit(width, 0) <= 0 || p.limit(width, 1) <= 0 {
		return nil, ConfigError("paragraph", "段落可用宽度必须大于 0，当前为 %.2f", width)
	}
	var lines []paraLine
	start := 0
	w, err := p.lineWidth(p.words[:1])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(p.words); i++ {
		cand, err := p.lineWidth(p.words[start : i+1])
		if err != nil {
			return nil, err
		}
		if cand <= p.limit(width, len(lines)) {
			w = cand
			continue
		}
		lines = append(lines, paraLine{start: start, end: i, width: w})
		start = i
		if w, err = p.lineWidth(p.words[i : i+1]); err != nil {
			return nil, err
		}
	}
	return append(lines, paraLine{start: start, end: len(p.words), width: w}), nil
}

func (p *Paragraph) spaceBefore() float64 {
	if p.cont {
		return 0
	}
	return p.style.SpaceBefore.ToMM()
}

func (p *Paragraph) spaceAfter() float64 {
	if p.head {
		return 0
	}
	return p.style.SpaceAfter.ToMM()
}

// Lines 返回在 width 下的换行结果。
func (p *Paragraph) Lines(width float64) ([]string, error) {
	lines, err := p.wrap(width)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(lines))
	for i, ln := range lines {
		var b strings.Builder
		for _, seg := range p.segments(p.words[ln.start:ln.end]) {
			b.WriteString(seg.text)
		}
		out[i] = b.String()
	}
	return out, nil
}

func (p *Paragraph) Measure(width float64) (float64, error) {
	lines, err := p.wrap(width)
	if err != nil {
		return 0, err
	}
	return p.spaceBefore() + float64(len(lines))*p.style.LineHeight() + p.spaceAfter(), nil
}

func (p *Paragraph) Place(pw *PageWriter, x, y, width float64) error {
	lines, err := p.wrap(width)
	if err != nil {
		return err
	}
	if p.anchor != "" {
		pw.Anchor(p.anchor, y)
	}
	lh := p.style.LineHeight()
	y += p.spaceBefore()
	for i, ln := range lines {
		lineX := x + p.style.Indent.ToMM() + p.firstIndent(i)
		switch p.style.Align {
		case "center":
			lineX += (p.limit(width, i) - ln.width) / 2
		case "right":
			lineX += p.limit(width, i) - ln.width
		}
		for _, seg := range p.segments(p.words[ln.start:ln.end]) {
			segW, err := p.m.TextWidth(seg.text, seg.font, p.style.Size)
			if err != nil {
				return err
			}
			pw.Text(TextRun{
				Content:    seg.text,
				X:          lineX,
				Y:          y,
				Width:      segW,
				LineHeight: lh,
				Font:       seg.font,
				FontSize:   p.style.Size,
				Color:      seg.color,
			})
			if seg.target != "" {
				pw.Link(Link{X: lineX, Y: y, Width: segW, Height: lh, Target: seg.target})
			}
			lineX += segW
		}
		y += lh
	}
	return nil
}

func (p *Paragraph) Splittable() bool { return true }

// Split 在行边界拆分段落。
func (p *Paragraph) Split(width, avail float64) (Block, Block, error) {
	lines, err := p.wrap(width)
	if err != nil {
		return nil, nil, err
	}
	lh := p.style.LineHeight()
	n := int(math.Floor((avail - p.spaceBefore() + epsilon) / lh))
	if n <= 0 {
		return nil, p, nil
	}
	if n >= len(lines) {
		return p, nil, nil
	}
	cut := lines[n].start
	head := &Paragraph{m: p.m, style: p.style, words: p.words[:cut], anchor: p.anchor, cont: p.cont, head: true}
	tail := &Paragraph{m: p.m, style: p.style, words: p.words[cut:], cont: true, head: p.head}
	return head, tail, nil
}

// epsilon 吸收浮点累计误差，避免刚好放得下的内容被挤到下一栏。
const epsilon = 1e-6
