package layout

import (
	"context"

	"github.com/ByLCY/folio/content"
)

// Build 将文档排版为按页组织的绘制指令。
// 配置错误立即返回；内容与资源问题记录日志后以原文或占位内容继续。
func Build(ctx context.Context, doc *content.Document, opts BuildOptions) (*Result, error) {
	c, err := NewComposer(opts)
	if err != nil {
		return nil, err
	}
	story, err := c.Story(ctx, doc)
	if err != nil {
		return nil, err
	}
	res, err := c.Run(ctx, story)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("排版完成", "pages", len(res.Pages), "directives", len(story.Directives))
	return res, nil
}
