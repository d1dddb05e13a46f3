package layout

import (
	"github.com/charmbracelet/log"
)

// BuildOptions 配置布局阶段所需的依赖。
type BuildOptions struct {
	// Metrics 提供文本测量，必填。
	Metrics TextMetrics
	// Images 提供图片尺寸；为空时所有图片按缺失处理。
	Images ImageSource
	// Style 为零值时使用 DefaultStyle。
	Style  *Style
	Logger *log.Logger
	Debug  DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	Frames bool // 在每页绘制区域边框
}

func (o BuildOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o BuildOptions) style() Style {
	if o.Style != nil {
		return *o.Style
	}
	return DefaultStyle()
}
