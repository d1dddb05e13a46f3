// Package fonts 管理排版与渲染共用的字体：内置字体与从文件注册的 TrueType/OpenType 字体。
package fonts

import (
	"fmt"
	"sort"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Fallback 是文件字体无法加载时使用的内置字体。
const Fallback = "Times-Roman"

// 内置字体按 PDF 标准字体名命名：Times 系列由 Latin Modern Roman 提供，Helvetica 与 Courier 由 Go 字体提供。
var builtin = map[string][]byte{
	"Times-Roman":           lmroman10regular.TTF,
	"Times-Bold":            lmroman10bold.TTF,
	"Times-Italic":          lmroman10italic.TTF,
	"Times-BoldItalic":      lmroman10bolditalic.TTF,
	"Helvetica":             goregular.TTF,
	"Helvetica-Bold":        gobold.TTF,
	"Helvetica-Oblique":     goitalic.TTF,
	"Helvetica-BoldOblique": gobolditalic.TTF,
	"Courier":               gomono.TTF,
}

// Load 返回内置字体的字节数据。
func Load(name string) ([]byte, error) {
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// Builtin 返回全部内置字体名，按字母排序。
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
