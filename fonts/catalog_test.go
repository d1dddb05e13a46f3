package fonts

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/ByLCY/folio/layout"
)

func quietCatalog() *Catalog {
	return NewCatalog(WithLogger(log.New(io.Discard)))
}

func TestBuiltinFonts(t *testing.T) {
	c := quietCatalog()
	for _, name := range Builtin() {
		if !c.Has(name) {
			t.Fatalf("内置字体 %s 未注册", name)
		}
		w, err := c.TextWidth("Hello", name, 12)
		if err != nil {
			t.Fatalf("TextWidth(%s) error: %v", name, err)
		}
		if w <= 0 {
			t.Fatalf("%s 宽度应为正数，实际 %g", name, w)
		}
	}
	if !slices.Contains(c.Names(), Fallback) {
		t.Fatalf("字体表应包含回退字体 %s", Fallback)
	}
	if _, err := Load("Comic-Sans"); err == nil {
		t.Fatalf("未知内置字体应返回错误")
	}
}

// 宽度随字号单调增大，且对相同输入确定。
func TestTextWidthMonotonic(t *testing.T) {
	c := quietCatalog()
	prev := 0.0
	for size := 6.0; size <= 48; size += 2 {
		w, err := c.TextWidth("The quick brown fox", "Times-Roman", size)
		if err != nil {
			t.Fatalf("TextWidth error: %v", err)
		}
		if w < prev {
			t.Fatalf("字号 %g 的宽度 %g 小于更小字号的 %g", size, w, prev)
		}
		prev = w
	}
	a, _ := c.TextWidth("same", "Helvetica", 10)
	b, _ := c.TextWidth("same", "Helvetica", 10)
	if a != b {
		t.Fatalf("相同输入的测量结果应一致: %g != %g", a, b)
	}
	bold, _ := c.TextWidth("Widths differ", "Times-Bold", 10)
	regular, _ := c.TextWidth("Widths differ", "Times-Roman", 10)
	if bold == regular {
		t.Fatalf("粗体与常规体宽度不应完全相同")
	}
}

func TestUnknownFontIsConfigError(t *testing.T) {
	c := quietCatalog()
	if _, err := c.TextWidth("x", "NoSuchFont", 10); !layout.IsConfig(err) {
		t.Fatalf("未知字体应返回 ConfigError，实际 %v", err)
	}
	if _, err := c.Bytes("NoSuchFont"); !layout.IsConfig(err) {
		t.Fatalf("未知字体应返回 ConfigError，实际 %v", err)
	}
	if _, err := c.TextWidth("x", "Times-Roman", 0); !layout.IsConfig(err) {
		t.Fatalf("字号为 0 应返回 ConfigError，实际 %v", err)
	}
	if _, err := c.Ascent("Times-Roman", 10); err != nil {
		t.Fatalf("Ascent error: %v", err)
	}
}

// 字体文件缺失时改用回退字体，返回 ResourceError 但不中断。
func TestRegisterFileFallback(t *testing.T) {
	c := quietCatalog()
	err := c.RegisterFile("Brand", filepath.Join(t.TempDir(), "missing.ttf"))
	if !layout.IsResource(err) {
		t.Fatalf("缺失字体文件应返回 ResourceError，实际 %v", err)
	}
	got, err := c.TextWidth("Hello", "Brand", 12)
	if err != nil {
		t.Fatalf("回退后的字体应可测量: %v", err)
	}
	want, _ := c.TextWidth("Hello", Fallback, 12)
	if got != want {
		t.Fatalf("回退字体宽度应与 %s 一致: %g != %g", Fallback, got, want)
	}

	bad := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.RegisterFile("Broken", bad); !layout.IsResource(err) {
		t.Fatalf("无法解析的字体应返回 ResourceError，实际 %v", err)
	}
	if !c.Has("Broken") {
		t.Fatalf("无法解析的字体名应指向回退字体")
	}
}

func TestRegisterDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Mono.ttf"), gomono.TTF, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := quietCatalog()
	names, err := c.RegisterDir(dir)
	if err != nil {
		t.Fatalf("RegisterDir error: %v", err)
	}
	if !slices.Equal(names, []string{"Mono"}) {
		t.Fatalf("只应注册字体文件: %v", names)
	}
	data, err := c.Bytes("Mono")
	if err != nil || len(data) != len(gomono.TTF) {
		t.Fatalf("Bytes 应返回原始字体数据: len=%d err=%v", len(data), err)
	}
	if _, err := c.RegisterDir(filepath.Join(dir, "nope")); !layout.IsResource(err) {
		t.Fatalf("目录不存在应返回 ResourceError，实际 %v", err)
	}
	if err := c.Register("", gomono.TTF); !layout.IsConfig(err) {
		t.Fatalf("空字体名应返回 ConfigError，实际 %v", err)
	}
}

func TestConcurrentMeasure(t *testing.T) {
	c := quietCatalog()
	want, _ := c.TextWidth("concurrent", "Helvetica", 11)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := c.TextWidth("concurrent", "Helvetica", 11)
			if err == nil && w != want {
				err = layout.RenderError("test", os.ErrInvalid)
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("并发测量失败: %v", err)
	}
}
