package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义布局结果，供布局计算、渲染后端与调试 JSON 共用。
// 坐标原点位于页面左上角，Y 轴向下，单位毫米；字号单位为 pt。

// Result 保存布局后的页面与文档元信息。
type Result struct {
	Pages []Page       `json:"pages"`
	Meta  DocumentMeta `json:"meta"`
}

// Page 记录页面尺寸、所用模板以及按顺序执行的绘制指令。
// 后端必须严格按 Ops 顺序绘制（先背景后文字）。
type Page struct {
	Number   int     `json:"number"`
	Template string  `json:"template"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Ops      []Op    `json:"ops"`
}

// OpKind 标识绘制指令的类型。
type OpKind string

const (
	OpText   OpKind = "text"
	OpRect   OpKind = "rect"
	OpLine   OpKind = "line"
	OpImage  OpKind = "image"
	OpLink   OpKind = "link"
	OpAnchor OpKind = "anchor"
)

// Op 是绘制指令的带标签联合体，Kind 决定哪一个字段有效。
type Op struct {
	Kind   OpKind    `json:"kind"`
	Text   *TextRun  `json:"text,omitempty"`
	Rect   *Rect     `json:"rect,omitempty"`
	Line   *Line     `json:"line,omitempty"`
	Image  *ImageBox `json:"image,omitempty"`
	Link   *Link     `json:"link,omitempty"`
	Anchor *Anchor   `json:"anchor,omitempty"`
}

// extent 返回指令占用的纵向范围，锚点与链接没有高度，ok 为 false。
func (o Op) extent() (top, bottom float64, ok bool) {
	switch o.Kind {
	case OpText:
		return o.Text.Y, o.Text.Y + o.Text.LineHeight, true
	case OpRect:
		return o.Rect.Y, o.Rect.Y + o.Rect.Height, true
	case OpImage:
		return o.Image.Y, o.Image.Y + o.Image.Height, true
	case OpLine:
		return min(o.Line.Y1, o.Line.Y2), max(o.Line.Y1, o.Line.Y2), true
	default:
		return 0, 0, false
	}
}

// TextRun 是单行文本。Y 为行框顶部，基线由后端按字体上升部计算。
// Align 非 left 时，文本在 [X, X+Width] 内对齐。
type TextRun struct {
	Content    string  `json:"content"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	LineHeight float64 `json:"lineHeight"`
	Font       string  `json:"font"`
	FontSize   float64 `json:"fontSize"`
	Color      Color   `json:"color"`
	Align      string  `json:"align,omitempty"`
}

// ImageBox 用于描述图片位置与尺寸。Placeholder 表示资源缺失时的替代色块。
type ImageBox struct {
	Path        string  `json:"path"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Opacity     float64 `json:"opacity"`
	Placeholder *Color  `json:"placeholder,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 将 #RRGGBB / #RGB 解析为颜色，失败时 panic，仅用于常量。
func Hex(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA（忽略透明度）。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return hexColor(r, g, b)
	case 6, 8:
		return hexColor(value[0:2], value[2:4], value[4:6])
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func hexColor(r, g, b string) (Color, error) {
	var out [3]int
	for i, s := range []string{r, g, b} {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色分量 %s 无法解析", s)
		}
		out[i] = int(v)
	}
	return Color{R: out[0], G: out[1], B: out[2]}, nil
}

func (c Color) String() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Rect 表示矩形，Radius > 0 时为圆角矩形。StrokeColor 为空表示不描边，FillColor 为空表示不填充。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Radius      float64 `json:"radius,omitempty"`
	StrokeColor *Color  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	FillColor   *Color  `json:"fillColor,omitempty"`
	Opacity     float64 `json:"opacity"` // 0 视为 1
}

// Link 是指向文档内锚点的可点击区域。
type Link struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Target string  `json:"target"`
}

// Anchor 是链接目标，位于所在页面的 Y 处。
type Anchor struct {
	Name string  `json:"name"`
	Y    float64 `json:"y"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Creator  string `json:"creator"`
	Keywords string `json:"keywords"`
}
