package layout

import (
	"math"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"
)

// monoMetrics 是测试用的等宽测量：每个字符宽 size×0.1mm，字号 10 时恰好 1mm。
// 以 Missing 开头的字体视为未注册。
type monoMetrics struct{}

func (monoMetrics) TextWidth(text, font string, size float64) (float64, error) {
	if font == "" || strings.HasPrefix(font, "Missing") {
		return 0, ConfigError("metrics", "未知字体 %q", font)
	}
	return float64(utf8.RuneCountInString(text)) * size * 0.1, nil
}

var mono10 = FontRef{Name: "Times-Roman", Size: 10}

// TestWrapGreedy 验证贪心换行：能放下就并入当前行，否则另起一行。
func TestWrapGreedy(t *testing.T) {
	lines, err := Wrap(monoMetrics{}, "The quick brown fox jumps", mono10, 15)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	want := []string{"The quick brown", "fox jumps"}
	if !slices.Equal(lines, want) {
		t.Fatalf("换行结果错误: got=%q want=%q", lines, want)
	}
}

// TestWrapLongWordOverflows 验证超宽单词单独成行，不做字符级拆分。
func TestWrapLongWordOverflows(t *testing.T) {
	word := strings.Repeat("W", 50)
	font := FontRef{Name: "Times-Roman", Size: 100}
	w, _ := monoMetrics{}.TextWidth(word, font.Name, font.Size)
	if math.Abs(w-500) > 1e-9 {
		t.Fatalf("测试前提错误: 单词宽度 %g", w)
	}
	lines, err := Wrap(monoMetrics{}, word, font, 100)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if len(lines) != 1 || lines[0] != word {
		t.Fatalf("超宽单词应单独成一行，实际 %q", lines)
	}

	lines, err = Wrap(monoMetrics{}, "ab "+word+" cd", font, 100)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if want := []string{"ab", word, "cd"}; !slices.Equal(lines, want) {
		t.Fatalf("超宽单词前后应各自换行: got=%q want=%q", lines, want)
	}
}

// TestWrapKeepsWordSequence 验证各行拼接后与原文的单词序列一致，且多词行不超宽。
func TestWrapKeepsWordSequence(t *testing.T) {
	text := "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
	for _, width := range []float64{5, 12, 20, 33.3, 80, 500} {
		lines, err := Wrap(monoMetrics{}, text, mono10, width)
		if err != nil {
			t.Fatalf("Wrap(%g) error: %v", width, err)
		}
		if got := strings.Fields(strings.Join(lines, " ")); !slices.Equal(got, strings.Fields(text)) {
			t.Fatalf("width=%g 单词序列被改变: %q", width, lines)
		}
		for _, ln := range lines {
			if !strings.Contains(ln, " ") {
				continue
			}
			w, _ := mono10.width(monoMetrics{}, ln)
			if w > width {
				t.Fatalf("width=%g 行 %q 宽 %g 超出", width, ln, w)
			}
		}
	}
}

func TestWrapEdgeCases(t *testing.T) {
	lines, err := Wrap(monoMetrics{}, "   \n\t ", mono10, 10)
	if err != nil || len(lines) != 0 {
		t.Fatalf("空白文本应返回空切片: lines=%q err=%v", lines, err)
	}
	cell, err := WrapCell(monoMetrics{}, "", mono10, 10)
	if err != nil || len(cell) != 1 || cell[0] != "" {
		t.Fatalf("空单元格应返回一个空行: lines=%q err=%v", cell, err)
	}
	if _, err := Wrap(monoMetrics{}, "abc", mono10, 0); !IsConfig(err) {
		t.Fatalf("宽度为 0 应返回 ConfigError，实际 %v", err)
	}
	if _, err := Wrap(monoMetrics{}, "abc", FontRef{Name: "Missing-Font", Size: 10}, 10); !IsConfig(err) {
		t.Fatalf("未知字体应返回 ConfigError，实际 %v", err)
	}
}

func TestWrapTextHeight(t *testing.T) {
	wt, err := WrapText(monoMetrics{}, "The quick brown fox jumps", mono10, 15, 4)
	if err != nil {
		t.Fatalf("WrapText error: %v", err)
	}
	if len(wt.Lines) != 2 || wt.Height != 8 {
		t.Fatalf("期望 2 行、高 8mm，实际 %d 行、%g", len(wt.Lines), wt.Height)
	}
}

// TestAutoFitSize 验证字号从上限逐步减小，选中的字号随可用宽度单调不减。
func TestAutoFitSize(t *testing.T) {
	// "Title" 宽度为 0.5×size
	size, err := AutoFitSize(monoMetrics{}, "Title", "Times-Bold", 10, 30, 12)
	if err != nil {
		t.Fatalf("AutoFitSize error: %v", err)
	}
	if size != 20 {
		t.Fatalf("期望 20pt，实际 %g", size)
	}
	if size, _ := AutoFitSize(monoMetrics{}, "Title", "Times-Bold", 1, 30, 12); size != 12 {
		t.Fatalf("放不下时应返回最小字号，实际 %g", size)
	}
	if size, _ := AutoFitSize(monoMetrics{}, "Title", "Times-Bold", 100, 30, 12); size != 30 {
		t.Fatalf("放得下时应返回最大字号，实际 %g", size)
	}

	prev := 0.0
	for width := 1.0; width <= 20; width += 0.5 {
		size, err := AutoFitSize(monoMetrics{}, "A longer title", "Times-Bold", width, 28, 8)
		if err != nil {
			t.Fatalf("AutoFitSize error: %v", err)
		}
		if size < prev {
			t.Fatalf("宽度 %g 的字号 %g 小于更窄宽度的 %g", width, size, prev)
		}
		prev = size
	}

	if _, err := AutoFitSize(monoMetrics{}, "Title", "Times-Bold", 10, 8, 12); !IsConfig(err) {
		t.Fatalf("最大字号小于最小字号应返回 ConfigError，实际 %v", err)
	}
}

func TestTitleShrinksThenWraps(t *testing.T) {
	style := TextStyle{Font: "Times-Bold", Size: 22, Leading: Leading(26), Align: "center"}
	title, err := NewTitle(monoMetrics{}, style, 16, "Ten chars!")
	if err != nil {
		t.Fatalf("NewTitle error: %v", err)
	}
	// 10 个字符在 18pt 时宽 18mm
	if size, _ := title.Size(18); size != 18 {
		t.Fatalf("期望缩小到 18pt，实际 %g", size)
	}
	if size, _ := title.Size(5); size != 16 {
		t.Fatalf("放不下时应使用最小字号，实际 %g", size)
	}
	if _, err := NewTitle(monoMetrics{}, style, 30, "x"); !IsConfig(err) {
		t.Fatalf("最小字号大于样式字号应返回 ConfigError，实际 %v", err)
	}
}
