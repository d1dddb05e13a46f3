package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/content"
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/folio/renderer/fpdf"
)

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type loggerKey struct{}

func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func loggerFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "folio",
		Short:        "folio 将 JSON 描述的论文、报告排版为 PDF",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, newLogger(verbose)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	root.AddCommand(newBuildCmd(), newFontsCmd())
	return root
}

// options 汇总 build 命令的参数。
type options struct {
	input       string
	output      string
	stylePath   string
	fontsDir    string
	backend     string
	debugPath   string
	debugFrames bool
}

func newBuildCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "build <input.json>",
		Short: "排版文档并输出 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			if opts.output == "" {
				opts.output = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + ".pdf"
			}
			logger := loggerFrom(cmd.Context())
			path, err := run(cmd.Context(), opts, logger)
			if err != nil {
				logger.Error("生成 PDF 失败", "err", err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PDF 输出路径（默认与输入同名）")
	cmd.Flags().StringVar(&opts.stylePath, "style", "", "TOML 样式文件")
	cmd.Flags().StringVar(&opts.fontsDir, "fonts-dir", "", "额外字体目录（.ttf/.otf，按文件名注册）")
	cmd.Flags().StringVar(&opts.backend, "backend", "fpdf", "渲染后端：fpdf 或 canvas")
	cmd.Flags().StringVar(&opts.debugPath, "debug", "", "布局调试 JSON 输出路径")
	cmd.Flags().BoolVar(&opts.debugFrames, "debug-frames", false, "在页面上绘制排版区域边框")
	return cmd
}

func newFontsCmd() *cobra.Command {
	var fontsDir string
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "列出可用字体",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := fonts.NewCatalog(fonts.WithLogger(loggerFrom(cmd.Context())))
			if fontsDir != "" {
				if _, err := cat.RegisterDir(fontsDir); err != nil {
					return err
				}
			}
			for _, name := range cat.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fontsDir, "fonts-dir", "", "额外字体目录")
	return cmd
}

// run 串联读取、布局与渲染，返回输出文件的绝对路径。
func run(ctx context.Context, opts options, logger *log.Logger) (string, error) {
	doc, err := content.Load(opts.input)
	if err != nil {
		return "", err
	}
	style, err := config.Load(opts.stylePath)
	if err != nil {
		return "", err
	}

	cat := fonts.NewCatalog(fonts.WithLogger(logger))
	if opts.fontsDir != "" {
		names, err := cat.RegisterDir(opts.fontsDir)
		if err != nil {
			logger.Warn("跳过字体目录", "dir", opts.fontsDir, "err", err)
		}
		logger.Debug("已注册字体", "fonts", names)
	}
	assets := renderer.NewAssets(filepath.Dir(opts.input))

	r, err := newRenderer(opts.backend, cat, assets)
	if err != nil {
		return "", err
	}

	result, err := layout.Build(ctx, doc, layout.BuildOptions{
		Metrics: cat,
		Images:  assets,
		Style:   &style,
		Logger:  logger,
		Debug:   layout.DebugOptions{Frames: opts.debugFrames},
	})
	if err != nil {
		return "", fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Info("排版完成", "pages", len(result.Pages))

	if opts.debugPath != "" {
		if err := writeDebug(result, opts.debugPath); err != nil {
			return "", err
		}
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return "", fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return writeOutput(opts.output, pdfBytes)
}

func newRenderer(backend string, cat *fonts.Catalog, assets *renderer.Assets) (renderer.Renderer, error) {
	switch strings.ToLower(backend) {
	case "", "fpdf":
		return fpdfrenderer.NewRenderer(cat, assets), nil
	case "canvas":
		return canvasrenderer.NewRenderer(cat, assets), nil
	default:
		return nil, layout.ConfigError("backend", "未知的渲染后端 %q", backend)
	}
}

// writeOutput 先写临时文件再改名，失败时不留下残缺的 PDF。
func writeOutput(path string, data []byte) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".folio-*.pdf")
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return abs, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
