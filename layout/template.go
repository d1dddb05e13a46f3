package layout

import (
	"github.com/google/uuid"
)

// Frame 是页面上的一块矩形排版区域（左上角原点，mm）。
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bottom 返回区域底边的 Y 坐标。
func (f Frame) Bottom() float64 { return f.Y + f.Height }

// PageInfo 是页面装饰回调可见的页面信息。
type PageInfo struct {
	Number   int
	Template string
	Width    float64
	Height   float64
	Content  Frame
}

// DecorateFunc 绘制页眉、页脚等页面装饰。
type DecorateFunc func(pw *PageWriter, info PageInfo) error

// Template 是一组有序的区域加上页面装饰回调。
type Template struct {
	Name     string
	Frames   []Frame
	Decorate DecorateFunc
	// OneShot 为真时模板只用于一页，取用后即从注册表移除。
	OneShot bool
}

func (t *Template) validate() error {
	if len(t.Frames) == 0 {
		return ConfigError("template", "模板 %s 没有任何区域", t.Name)
	}
	for i, f := range t.Frames {
		if f.Width < 0 || f.Height < 0 {
			return ConfigError("template", "模板 %s 的第 %d 个区域尺寸为负: %.2fx%.2f", t.Name, i, f.Width, f.Height)
		}
	}
	return nil
}

// Registry 保存常驻模板与一次性模板。
// 排版是单线程的，注册表只被分页器顺序写入，因此不加锁。
type Registry struct {
	standing map[string]*Template
	oneShot  map[string]*Template
}

// NewRegistry 创建空的模板注册表。
func NewRegistry() *Registry {
	return &Registry{
		standing: map[string]*Template{},
		oneShot:  map[string]*Template{},
	}
}

// Define 注册或覆盖一个常驻模板。
func (r *Registry) Define(t Template) error {
	if t.Name == "" {
		return ConfigError("template", "常驻模板缺少名称")
	}
	t.OneShot = false
	if err := t.validate(); err != nil {
		return err
	}
	r.standing[t.Name] = &t
	return nil
}

// OneShot 注册一次性模板并返回生成的唯一名称。
func (r *Registry) OneShot(t Template) (string, error) {
	t.Name = t.Name + "-" + uuid.NewString()
	t.OneShot = true
	if err := t.validate(); err != nil {
		return "", err
	}
	r.oneShot[t.Name] = &t
	return t.Name, nil
}

// Has 报告 name 是否已注册。
func (r *Registry) Has(name string) bool {
	if _, ok := r.standing[name]; ok {
		return true
	}
	_, ok := r.oneShot[name]
	return ok
}

// Acquire 取出模板；一次性模板在取出后即被丢弃。
func (r *Registry) Acquire(name string) (*Template, error) {
	if t, ok := r.standing[name]; ok {
		return t, nil
	}
	if t, ok := r.oneShot[name]; ok {
		delete(r.oneShot, name)
		return t, nil
	}
	return nil, ConfigError("template", "未定义的页面模板 %q", name)
}

// Pending 返回尚未被取用的一次性模板数量。
func (r *Registry) Pending() int { return len(r.oneShot) }

// SingleColumn 返回只有一个区域的模板。
func SingleColumn(name string, content Frame, decorate DecorateFunc) Template {
	return Template{Name: name, Frames: []Frame{content}, Decorate: decorate}
}

// TwoColumns 返回左右双栏模板。
func TwoColumns(name string, content Frame, gutter float64, decorate DecorateFunc) Template {
	return Template{Name: name, Frames: columnFrames(content, content.Y, content.Height, gutter), Decorate: decorate}
}

// BandTemplate 生成顶部通栏 + 下方双栏的模板。
// 通栏高度被限制在 [0, content.Height]，两栏高度为剩余高度，因此两者之和始终等于版心高度。
func BandTemplate(name string, h float64, content Frame, gutter float64, decorate DecorateFunc) Template {
	band := min(max(h, 0), content.Height)
	frames := []Frame{{X: content.X, Y: content.Y, Width: content.Width, Height: band}}
	frames = append(frames, columnFrames(content, content.Y+band, content.Height-band, gutter)...)
	return Template{Name: name, Frames: frames, Decorate: decorate}
}

func columnFrames(content Frame, y, height, gutter float64) []Frame {
	colW := max((content.Width-gutter)/2, 0)
	height = max(height, 0)
	return []Frame{
		{X: content.X, Y: y, Width: colW, Height: height},
		{X: content.X + colW + gutter, Y: y, Width: colW, Height: height},
	}
}
