package layout

import (
	"errors"
	"fmt"
)

// Kind 区分排版过程中的错误类别，决定调用方是中止还是降级继续。
type Kind int

const (
	// KindConfig 配置错误：未知字体、非法页面几何、零列表格、章节编号越界。致命。
	KindConfig Kind = iota + 1
	// KindContent 内容错误：引用语法错误、内容项缺少必填字段。记录日志后按字面文本继续。
	KindContent
	// KindResource 资源错误：图片或字体文件缺失。使用替代品并给出警告。
	KindResource
	// KindRender 渲染错误：后端无法输出最终文件。致命。
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindContent:
		return "content"
	case KindResource:
		return "resource"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// Error 为带类别的排版错误。
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.Err }

// ConfigError 构造配置类错误。
func ConfigError(op string, format string, args ...any) error {
	return &Error{Kind: KindConfig, Op: op, Err: fmt.Errorf(format, args...)}
}

// ContentError 构造内容类错误。
func ContentError(op string, format string, args ...any) error {
	return &Error{Kind: KindContent, Op: op, Err: fmt.Errorf(format, args...)}
}

// ResourceError 构造资源类错误，err 通常来自文件系统。
func ResourceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindResource, Op: op, Err: err}
}

// RenderError 构造渲染类错误。
func RenderError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindRender, Op: op, Err: err}
}

// KindOf 返回 err 链上第一个 *Error 的类别，找不到时返回 0。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// hasKind 报告错误链上任意一层 *Error 是否属于 k，渲染错误可能包着配置错误。
func hasKind(err error, k Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == k {
			return true
		}
		err = e.Err
	}
	return false
}

func IsConfig(err error) bool   { return hasKind(err, KindConfig) }
func IsContent(err error) bool  { return hasKind(err, KindContent) }
func IsResource(err error) bool { return hasKind(err, KindResource) }
func IsRender(err error) bool   { return hasKind(err, KindRender) }
