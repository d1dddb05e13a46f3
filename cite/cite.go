// Package cite 识别正文中的 [n]、[n, m]、[n-m] 引用标记，并把每个编号拆成可链接的片段。
package cite

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// RangeDash 是展开后相邻编号之间的连接符（en dash）。
const RangeDash = "–"

// MaxSpan 是单个区间最多展开的编号数，Max 为 0 时以此限制区间长度。
const MaxSpan = 1000

var (
	groupPattern = regexp.MustCompile(`\[([0-9,\-\x{2013}\x{2014}\s]+)\]`)

	partLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Dash", Pattern: `[-\x{2013}\x{2014}]`},
	})

	partParser = participle.MustBuild[Part](
		participle.Lexer(partLexer),
		participle.Elide("Whitespace"),
	)
)

// Part 是引用组中以逗号分隔的一项：单个编号或一个区间。
type Part struct {
	From int  `parser:"@Int"`
	To   *int `parser:"( Dash @Int )?"`
}

// Numbers 展开区间，方向由两端大小决定，步长为 ±1。
func (p *Part) Numbers() []int {
	if p.To == nil {
		return []int{p.From}
	}
	step := 1
	if p.From > *p.To {
		step = -1
	}
	out := make([]int, 0, abs(*p.To-p.From)+1)
	for n := p.From; ; n += step {
		out = append(out, n)
		if n == *p.To {
			break
		}
	}
	return out
}

// ParsePart 解析引用组中的一项。
func ParsePart(s string) (*Part, error) {
	return partParser.ParseString("", s)
}

// Segment 是改写后文本的一段；Target > 0 时该段是指向第 Target 条参考文献的链接。
type Segment struct {
	Text   string
	Target int
}

// SyntaxError 表示无法解析的引用项，该项按原文输出。
type SyntaxError struct {
	Token string
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("无法解析引用 %q: %v", e.Token, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Linker 把正文拆成普通片段与链接片段。
type Linker struct {
	// Max 为参考文献条数，大于 0 时超出 [1, Max] 的编号按原文输出。
	Max int
}

// Link 改写 text 中的全部引用组，返回片段序列、按出现顺序排列的链接目标，以及所有按原文处理的错误。
func (l Linker) Link(text string) ([]Segment, []int, []error) {
	var (
		segs    []Segment
		targets []int
		errs    []error
		plain   strings.Builder
	)
	emit := func(s string, target int) {
		if target == 0 {
			plain.WriteString(s)
			return
		}
		if plain.Len() > 0 {
			segs = append(segs, Segment{Text: plain.String()})
			plain.Reset()
		}
		segs = append(segs, Segment{Text: s, Target: target})
		targets = append(targets, target)
	}

	last := 0
	for _, loc := range groupPattern.FindAllStringSubmatchIndex(text, -1) {
		emit(text[last:loc[0]], 0)
		last = loc[1]
		inside := text[loc[2]:loc[3]]
		var parts []string
		for _, p := range strings.Split(inside, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			emit(text[loc[0]:loc[1]], 0)
			continue
		}
		emit("[", 0)
		for i, raw := range parts {
			if i > 0 {
				emit(", ", 0)
			}
			nums, err := l.resolve(raw)
			if err != nil {
				errs = append(errs, err)
				emit(raw, 0)
				continue
			}
			for j, n := range nums {
				if j > 0 {
					emit(RangeDash, 0)
				}
				emit(strconv.Itoa(n), n)
			}
		}
		emit("]", 0)
	}
	emit(text[last:], 0)
	if plain.Len() > 0 {
		segs = append(segs, Segment{Text: plain.String()})
	}
	return segs, targets, errs
}

func (l Linker) resolve(raw string) ([]int, error) {
	part, err := ParsePart(raw)
	if err != nil {
		return nil, &SyntaxError{Token: raw, Err: err}
	}
	ends := []int{part.From}
	if part.To != nil {
		ends = append(ends, *part.To)
	}
	for _, n := range ends {
		if n < 1 {
			return nil, &SyntaxError{Token: raw, Err: fmt.Errorf("编号 %d 无效", n)}
		}
		if l.Max > 0 && n > l.Max {
			return nil, &SyntaxError{Token: raw, Err: fmt.Errorf("编号 %d 不在参考文献范围 1-%d 内", n, l.Max)}
		}
	}
	if part.To != nil && abs(*part.To-part.From) >= MaxSpan {
		return nil, &SyntaxError{Token: raw, Err: fmt.Errorf("区间 %d-%d 超过 %d 项", part.From, *part.To, MaxSpan)}
	}
	return part.Numbers(), nil
}

// Targets 返回 text 中全部引用的目标编号。
func Targets(text string) []int {
	_, targets, _ := Linker{}.Link(text)
	return targets
}

// Text 把片段重新拼成纯文本。
func Text(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
