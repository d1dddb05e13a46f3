package layout

import (
	"strings"
)

// TextMetrics 返回文本在指定字体与字号（pt）下的渲染宽度（mm）。
// 实现必须是确定性的，宽度随字号单调不减；未知字体返回 ConfigError。
type TextMetrics interface {
	TextWidth(text, font string, size float64) (float64, error)
}

// FontRef 是字体的逻辑名与字号（pt）。
type FontRef struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

func (f FontRef) width(m TextMetrics, text string) (float64, error) {
	return m.TextWidth(text, f.Name, f.Size)
}

// WrappedText 是某一宽度下的换行结果。宽度改变后必须重新计算。
type WrappedText struct {
	Lines      []string `json:"lines"`
	Font       FontRef  `json:"font"`
	LineHeight float64  `json:"lineHeight"`
	Height     float64  `json:"height"`
}

// Wrap 按贪心算法把 text 拆成不超过 maxWidth 的行。
// 空文本返回空切片；单个超宽单词单独成行，不做字符级拆分。
func Wrap(m TextMetrics, text string, font FontRef, maxWidth float64) ([]string, error) {
	if maxWidth <= 0 {
		return nil, ConfigError("wrap", "换行宽度必须大于 0，当前为 %.2f", maxWidth)
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	lines := make([]string, 0, 4)
	current := words[0]
	// 先校验一次字体，保证未知字体在单词输入时同样报错
	if _, err := font.width(m, current); err != nil {
		return nil, err
	}
	for _, word := range words[1:] {
		candidate := current + " " + word
		w, err := font.width(m, candidate)
		if err != nil {
			return nil, err
		}
		if w <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current), nil
}

// WrapCell 与 Wrap 相同，但空文本返回一个空行，供表格单元格使用。
func WrapCell(m TextMetrics, text string, font FontRef, maxWidth float64) ([]string, error) {
	lines, err := Wrap(m, text, font, maxWidth)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []string{""}, nil
	}
	return lines, nil
}

// WrapText 换行并计算总高度（行数 × 行高）。
func WrapText(m TextMetrics, text string, font FontRef, maxWidth, lineHeight float64) (WrappedText, error) {
	lines, err := Wrap(m, text, font, maxWidth)
	if err != nil {
		return WrappedText{}, err
	}
	return WrappedText{
		Lines:      lines,
		Font:       font,
		LineHeight: lineHeight,
		Height:     float64(len(lines)) * lineHeight,
	}, nil
}

// AutoFitSize 从 sizeMax 开始每次减 1pt，返回第一个单行宽度不超过 maxWidth 的字号；
// 都放不下时返回 sizeMin。
func AutoFitSize(m TextMetrics, text, font string, maxWidth, sizeMax, sizeMin float64) (float64, error) {
	if sizeMax < sizeMin {
		return 0, ConfigError("autofit", "最大字号 %.1f 小于最小字号 %.1f", sizeMax, sizeMin)
	}
	for size := sizeMax; size >= sizeMin; size-- {
		w, err := m.TextWidth(text, font, size)
		if err != nil {
			return 0, err
		}
		if w <= maxWidth {
			return size, nil
		}
	}
	return sizeMin, nil
}
