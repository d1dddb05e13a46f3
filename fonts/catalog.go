package fonts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/folio/layout"
)

var _ layout.TextMetrics = (*Catalog)(nil)

type fontEntry struct {
	data   []byte
	family *canvas.FontFamily
}

// Catalog 是按名称索引的字体表，同时实现 layout.TextMetrics。可并发使用。
type Catalog struct {
	mu     sync.Mutex
	logger *log.Logger
	fonts  map[string]*fontEntry
}

// Option 配置 Catalog。
type Option func(*Catalog)

// WithLogger 指定记录字体回退的日志器。
func WithLogger(l *log.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// NewCatalog 创建包含全部内置字体的字体表。
func NewCatalog(opts ...Option) *Catalog {
	c := &Catalog{logger: log.Default(), fonts: map[string]*fontEntry{}}
	for _, opt := range opts {
		opt(c)
	}
	for name, data := range builtin {
		c.fonts[name] = &fontEntry{data: data}
	}
	return c
}

// Register 以 name 注册字体数据，同名字体会被覆盖。
func (c *Catalog) Register(name string, data []byte) error {
	if name == "" {
		return layout.ConfigError("font", "字体名称为空")
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return layout.ResourceError("font", fmt.Errorf("解析字体 %s 失败: %w", name, err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fonts[name] = &fontEntry{data: data, family: family}
	return nil
}

// RegisterFile 从文件注册字体。文件缺失或无法解析时，name 改为指向 Fallback，
// 记录警告并返回 ResourceError，排版可以继续。
func (c *Catalog) RegisterFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err == nil {
		err = c.Register(name, data)
	} else {
		err = layout.ResourceError("font", fmt.Errorf("读取字体 %s 失败: %w", path, err))
	}
	if err == nil {
		return nil
	}
	c.logger.Warn("字体不可用，使用内置字体代替", "font", name, "fallback", Fallback, "err", err)
	c.mu.Lock()
	c.fonts[name] = c.fonts[Fallback]
	c.mu.Unlock()
	return err
}

// RegisterDir 注册目录下全部 .ttf/.otf 文件，字体名为去掉扩展名的文件名。
func (c *Catalog) RegisterDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, layout.ResourceError("font", fmt.Errorf("读取字体目录 %s 失败: %w", dir, err))
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		// 单个文件失败已回退并记录，不影响其余字体
		_ = c.RegisterFile(name, filepath.Join(dir, e.Name()))
		names = append(names, name)
	}
	return names, nil
}

// Names 返回已注册的字体名，按字母排序。
func (c *Catalog) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.fonts))
	for name := range c.fonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has 报告字体是否已注册。
func (c *Catalog) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.fonts[name]
	return ok
}

func (c *Catalog) lookup(name string) (*fontEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(name)
}

func (c *Catalog) lookupLocked(name string) (*fontEntry, error) {
	entry, ok := c.fonts[name]
	if !ok {
		return nil, layout.ConfigError("font", "未知字体 %q", name)
	}
	if entry.family == nil {
		family := canvas.NewFontFamily(name)
		if err := family.LoadFont(entry.data, 0, canvas.FontRegular); err != nil {
			return nil, layout.ConfigError("font", "无法加载字体 %q: %v", name, err)
		}
		entry.family = family
	}
	return entry, nil
}

// Bytes 返回字体文件数据，供需要自行嵌入字体的后端使用。
func (c *Catalog) Bytes(name string) ([]byte, error) {
	entry, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return entry.data, nil
}

// Face 返回 size（pt）号的字体面。
func (c *Catalog) Face(name string, size float64, col color.Color) (*canvas.FontFace, error) {
	entry, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, layout.ConfigError("font", "字号必须大于 0，当前为 %.2f", size)
	}
	return entry.family.Face(size, col, canvas.FontRegular, canvas.FontNormal), nil
}

// measure 在锁内创建字体面并计算，字形缓存不支持并发访问。
func (c *Catalog) measure(font string, size float64, fn func(*canvas.FontFace) float64) (float64, error) {
	if size <= 0 {
		return 0, layout.ConfigError("font", "字号必须大于 0，当前为 %.2f", size)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, err := c.lookupLocked(font)
	if err != nil {
		return 0, err
	}
	return fn(entry.family.Face(size, canvas.Black, canvas.FontRegular, canvas.FontNormal)), nil
}

// TextWidth 返回 text 以 size（pt）号 font 字体排出的宽度（mm）。
func (c *Catalog) TextWidth(text, font string, size float64) (float64, error) {
	return c.measure(font, size, func(face *canvas.FontFace) float64 { return face.TextWidth(text) })
}

// Ascent 返回字体上升部高度（mm），用于由行框顶部推算基线。
func (c *Catalog) Ascent(font string, size float64) (float64, error) {
	return c.measure(font, size, func(face *canvas.FontFace) float64 { return face.Metrics().Ascent })
}
