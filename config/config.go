// Package config 从 TOML 文件读取排版样式，未出现的键保留默认值。
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/folio/layout"
)

// Load 读取 path 指向的样式文件；path 为空时返回默认样式。
func Load(path string) (layout.Style, error) {
	if path == "" {
		return layout.DefaultStyle(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Style{}, layout.ConfigError("style", "读取样式文件 %s 失败: %v", path, err)
	}
	return Parse(data)
}

// Parse 在默认样式上覆盖 data 中的设置。未知的键视为配置错误。
func Parse(data []byte) (layout.Style, error) {
	style := layout.DefaultStyle()
	md, err := toml.Decode(string(data), &style)
	if err != nil {
		return layout.Style{}, layout.ConfigError("style", "解析样式失败: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return layout.Style{}, layout.ConfigError("style", "未知的样式项: %s", strings.Join(keys, ", "))
	}
	if err := validate(style); err != nil {
		return layout.Style{}, err
	}
	return style, nil
}

func validate(s layout.Style) error {
	if s.TitleMin > s.Title.Size {
		return layout.ConfigError("style", "title_min %.1f 大于标题字号 %.1f", s.TitleMin, s.Title.Size)
	}
	if s.Cover.TitleMin > s.Cover.TitleMax {
		return layout.ConfigError("style", "封面标题字号范围非法: %.1f-%.1f", s.Cover.TitleMin, s.Cover.TitleMax)
	}
	if s.AuthorColumns < 0 {
		return layout.ConfigError("style", "author_columns 不能为负: %d", s.AuthorColumns)
	}
	for name, ts := range map[string]layout.TextStyle{
		"title": s.Title, "body": s.Body, "heading": s.Heading, "reference": s.Reference, "caption": s.Caption,
	} {
		if ts.Size <= 0 {
			return layout.ConfigError("style", "%s 字号必须大于 0", name)
		}
	}
	if _, err := s.Page.Geometry(); err != nil {
		return fmt.Errorf("页面设置: %w", err)
	}
	return nil
}
