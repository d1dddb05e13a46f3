package layout

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// box 是固定高度、不可拆分的测试块，放置时先输出同名锚点再输出矩形。
type box struct {
	id string
	h  float64
}

func (b *box) Measure(float64) (float64, error) { return b.h, nil }

func (b *box) Place(pw *PageWriter, x, y, width float64) error {
	pw.Anchor(b.id, y)
	pw.Rect(Rect{X: x, Y: y, Width: width, Height: b.h})
	return nil
}

func (b *box) Splittable() bool { return false }

// 页面 100x120，版心 (10,10) 80x100，栏间距 10，单栏宽 35。
var testGeometry = PageGeometry{
	Width:   100,
	Height:  120,
	Content: Frame{X: 10, Y: 10, Width: 80, Height: 100},
	Gutter:  10,
}

func newTestPaginator(t *testing.T) *paginator {
	t.Helper()
	reg := NewRegistry()
	for _, tpl := range []Template{
		SingleColumn("One", testGeometry.Content, nil),
		TwoColumns("Two", testGeometry.Content, testGeometry.Gutter, nil),
	} {
		if err := reg.Define(tpl); err != nil {
			t.Fatalf("Define error: %v", err)
		}
	}
	return &paginator{reg: reg, geo: testGeometry, bandGap: 2, logger: log.New(io.Discard)}
}

func paginate(t *testing.T, p *paginator, start string, ds ...Directive) *Result {
	t.Helper()
	res, err := p.run(context.Background(), &Story{Start: start, Directives: ds})
	if err != nil {
		t.Fatalf("paginate error: %v", err)
	}
	return res
}

type location struct {
	page        int
	x, y, width float64
}

// locate 返回 box 的页码（从 0 开始）与放置位置。
func locate(t *testing.T, res *Result, id string) location {
	t.Helper()
	for i, page := range res.Pages {
		for k, op := range page.Ops {
			if op.Kind != OpAnchor || op.Anchor.Name != id {
				continue
			}
			rc := page.Ops[k+1].Rect
			return location{page: i, x: rc.X, y: rc.Y, width: rc.Width}
		}
	}
	t.Fatalf("未找到块 %s", id)
	return location{}
}

func expectAt(t *testing.T, res *Result, id string, page int, x, y float64) {
	t.Helper()
	loc := locate(t, res, id)
	if loc.page != page || !near(loc.x, x) || !near(loc.y, y) {
		t.Fatalf("%s 位置错误: got page=%d (%g, %g) want page=%d (%g, %g)", id, loc.page, loc.x, loc.y, page, x, y)
	}
}

// TestPaginateSplitsParagraphAcrossColumns 段落在栏底按行拆分，依次流入右栏和下一页。
func TestPaginateSplitsParagraphAcrossColumns(t *testing.T) {
	// 每个单词宽 30mm，单栏 35mm 只能放一个单词
	words := make([]string, 50)
	for i := range words {
		words[i] = strings.Repeat("w", 30)
	}
	p := newTestPaginator(t)
	res := paginate(t, p, "Two", Append(Text(monoMetrics{}, plainStyle, strings.Join(words, " "))))
	if len(res.Pages) != 2 {
		t.Fatalf("期望 2 页，实际 %d", len(res.Pages))
	}
	perColumn := int((100 + epsilon) / plainStyle.LineHeight())
	columns := map[float64]int{}
	for _, op := range res.Pages[0].Ops {
		if op.Kind == OpText {
			columns[op.Text.X]++
		}
	}
	if columns[10] != perColumn || columns[55] != perColumn || len(columns) != 2 {
		t.Fatalf("第一页两栏各应有 %d 行: %v", perColumn, columns)
	}
	rest := 0
	for _, op := range res.Pages[1].Ops {
		if op.Kind == OpText {
			rest++
			if op.Text.Y > 10+100 {
				t.Fatalf("文字超出版心: %+v", op.Text)
			}
		}
	}
	if rest != 50-2*perColumn {
		t.Fatalf("第二页应有 %d 行，实际 %d", 50-2*perColumn, rest)
	}
}

// TestPaginateGroupMovesWhole 放不下的保持组整体移到下一栏。
func TestPaginateGroupMovesWhole(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "Two",
		Append(&box{id: "a", h: 70}),
		Append(Keep(&box{id: "g1", h: 20}, &box{id: "g2", h: 20})),
	)
	expectAt(t, res, "a", 0, 10, 10)
	expectAt(t, res, "g1", 0, 55, 10)
	expectAt(t, res, "g2", 0, 55, 30)
}

// 高于整个区域的保持组退化为逐个排入成员。
func TestPaginateOversizedGroupFlowsMembers(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "One", Append(Keep(&box{id: "m1", h: 60}, &box{id: "m2", h: 60})))
	expectAt(t, res, "m1", 0, 10, 10)
	expectAt(t, res, "m2", 1, 10, 10)
}

// TestPaginateBandForOversizedBlock 双栏中放不下的不可拆分块进入按其高度生成的通栏页，之后恢复常驻模板。
func TestPaginateBandForOversizedBlock(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "Two",
		Append(&box{id: "a", h: 10}),
		Append(&box{id: "big", h: 95}),
		Append(&box{id: "below", h: 2}),
		PageBreak(),
		Append(&box{id: "next", h: 10}),
	)
	if len(res.Pages) != 3 {
		t.Fatalf("期望 3 页，实际 %d", len(res.Pages))
	}
	if !strings.HasPrefix(res.Pages[1].Template, "band-") {
		t.Fatalf("第二页应使用通栏模板，实际 %q", res.Pages[1].Template)
	}
	if res.Pages[2].Template != "Two" {
		t.Fatalf("通栏页之后应恢复 Two 模板，实际 %q", res.Pages[2].Template)
	}
	big := locate(t, res, "big")
	if big.page != 1 || !near(big.y, 10) || !near(big.width, 80) {
		t.Fatalf("通栏块应在第二页顶部占满版心宽度: %+v", big)
	}
	// 通栏高 95+2，下方两栏从 107 开始
	expectAt(t, res, "below", 1, 10, 107)
	expectAt(t, res, "next", 2, 10, 10)
	if p.reg.Pending() != 0 {
		t.Fatalf("一次性模板用后应被丢弃，剩余 %d", p.reg.Pending())
	}
}

// 空白页上的通栏块直接改用通栏模板，不额外产生空白页。
func TestPaginateFullWidthOnEmptyPage(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "Two",
		AppendFullWidth(&box{id: "wide", h: 30}),
		Append(&box{id: "left", h: 5}),
	)
	if len(res.Pages) != 1 {
		t.Fatalf("期望 1 页，实际 %d", len(res.Pages))
	}
	wide := locate(t, res, "wide")
	if !near(wide.width, 80) {
		t.Fatalf("通栏块应占满版心宽度: %+v", wide)
	}
	expectAt(t, res, "left", 0, 10, 42)
	if locate(t, res, "left").width != 35 {
		t.Fatalf("通栏下方应是双栏")
	}
}

// 单栏模板中的通栏块按普通块处理。
func TestPaginateFullWidthInSingleColumn(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "One", Append(&box{id: "a", h: 5}), AppendFullWidth(&box{id: "wide", h: 30}))
	if len(res.Pages) != 1 || res.Pages[0].Template != "One" {
		t.Fatalf("单栏模板不应生成通栏页: %+v", res.Pages)
	}
	expectAt(t, res, "wide", 0, 10, 15)
}

func TestPaginateCondBreak(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "Two",
		CondBreak(500),
		Append(&box{id: "top", h: 80}),
		CondBreak(30),
		Append(&box{id: "moved", h: 5}),
		CondBreak(10),
		Append(&box{id: "stays", h: 5}),
	)
	expectAt(t, res, "top", 0, 10, 10)
	expectAt(t, res, "moved", 0, 55, 10)
	expectAt(t, res, "stays", 0, 55, 15)
}

// TestPaginatePageBreak 空白页上的换页只切换模板；有内容时开始新页。
func TestPaginatePageBreak(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "One",
		SwitchTemplate("Two"),
		PageBreak(),
		Append(&box{id: "a", h: 5}),
		SwitchTemplate("One"),
		PageBreak(),
		Append(&box{id: "b", h: 5}),
		PageBreak(),
	)
	if len(res.Pages) != 2 {
		t.Fatalf("期望 2 页（末尾空白页被丢弃），实际 %d", len(res.Pages))
	}
	if res.Pages[0].Template != "Two" || res.Pages[1].Template != "One" {
		t.Fatalf("模板顺序错误: %q %q", res.Pages[0].Template, res.Pages[1].Template)
	}
	if locate(t, res, "a").width != 35 || locate(t, res, "b").width != 80 {
		t.Fatalf("块宽度应跟随模板")
	}
}

// 位于区域顶部的空白被丢弃。
func TestPaginateDropsSpacerAtTop(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "One",
		Append(&box{id: "full", h: 100}),
		Append(&Spacer{Height: 5}),
		Append(&box{id: "after", h: 5}),
	)
	expectAt(t, res, "after", 1, 10, 10)
}

// 栏底放不下的空白只换到下一栏，不生成通栏页。
func TestPaginateSpacerAtColumnBottom(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "Two",
		Append(&box{id: "a", h: 99}),
		Append(&Spacer{Height: 1.5}),
		Append(&box{id: "b", h: 10}),
	)
	if len(res.Pages) != 1 || res.Pages[0].Template != "Two" {
		t.Fatalf("应只有一页双栏，实际 %d 页，首页模板 %s", len(res.Pages), res.Pages[0].Template)
	}
	expectAt(t, res, "b", 0, 55, 10)

	// 右栏底部的空白换到下一页，同样不生成通栏页
	p = newTestPaginator(t)
	res = paginate(t, p, "Two",
		Append(&box{id: "left", h: 100}),
		CondBreak(1),
		Append(&box{id: "right", h: 99}),
		Append(&Spacer{Height: 1.5}),
		Append(&box{id: "next", h: 10}),
	)
	expectAt(t, res, "right", 0, 55, 10)
	expectAt(t, res, "next", 1, 10, 10)
	for _, page := range res.Pages {
		if page.Template != "Two" {
			t.Fatalf("不应出现通栏页: %s", page.Template)
		}
	}
}

func TestPaginateOverflowAtTop(t *testing.T) {
	p := newTestPaginator(t)
	res := paginate(t, p, "One", Append(&box{id: "huge", h: 150}))
	if len(res.Pages) != 1 {
		t.Fatalf("超高块应在空白页上溢出放置，实际 %d 页", len(res.Pages))
	}
	expectAt(t, res, "huge", 0, 10, 10)
}

func TestPaginateErrors(t *testing.T) {
	p := newTestPaginator(t)
	if _, err := p.run(context.Background(), &Story{Start: "One", Directives: []Directive{SwitchTemplate("Nope")}}); !IsConfig(err) {
		t.Fatalf("未定义模板应返回 ConfigError，实际 %v", err)
	}
	p = newTestPaginator(t)
	if _, err := p.run(context.Background(), &Story{}); !IsConfig(err) {
		t.Fatalf("缺少起始模板应返回 ConfigError，实际 %v", err)
	}
	p = newTestPaginator(t)
	bad := Text(monoMetrics{}, TextStyle{Font: "Missing", Size: 10, Leading: Leading(12)}, "hello")
	if _, err := p.run(context.Background(), &Story{Start: "One", Directives: []Directive{Append(bad)}}); !IsConfig(err) {
		t.Fatalf("未知字体应返回 ConfigError，实际 %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p = newTestPaginator(t)
	if _, err := p.run(ctx, &Story{Start: "One", Directives: []Directive{Append(&box{id: "a", h: 1})}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("取消后应返回 context.Canceled，实际 %v", err)
	}
}

// TestPaginateDecorateAndFrames 装饰回调收到正确页码，调试模式绘制区域边框。
func TestPaginateDecorateAndFrames(t *testing.T) {
	reg := NewRegistry()
	var seen []int
	decorate := func(pw *PageWriter, info PageInfo) error {
		seen = append(seen, info.Number)
		pw.Line(Line{X1: 0, Y1: 1, X2: info.Width, Y2: 1})
		return nil
	}
	if err := reg.Define(TwoColumns("Two", testGeometry.Content, testGeometry.Gutter, decorate)); err != nil {
		t.Fatalf("Define error: %v", err)
	}
	p := &paginator{reg: reg, geo: testGeometry, logger: log.New(io.Discard), frames: true}
	res := paginate(t, p, "Two",
		Append(&box{id: "a", h: 90}),
		Append(&box{id: "b", h: 90}),
		Append(&box{id: "c", h: 90}),
	)
	if len(res.Pages) != 2 || len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("装饰回调页码错误: pages=%d seen=%v", len(res.Pages), seen)
	}
	outlines := 0
	for _, op := range res.Pages[0].Ops {
		if op.Kind == OpRect && op.Rect.StrokeColor != nil {
			outlines++
		}
	}
	if outlines != 2 {
		t.Fatalf("双栏页应绘制 2 个区域边框，实际 %d", outlines)
	}
}
