package renderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/folio/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF 或图像。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

var _ layout.ImageSource = (*Assets)(nil)

// Assets 按 BaseDir 解析相对路径并读取图片，解码结果会被缓存。
type Assets struct {
	BaseDir string

	mu    sync.Mutex
	cache map[string]*asset
}

type asset struct {
	data   []byte
	img    image.Image
	format string
	err    error
}

// NewAssets 创建以 baseDir 为根目录的资源表。
func NewAssets(baseDir string) *Assets {
	return &Assets{BaseDir: baseDir, cache: map[string]*asset{}}
}

// Resolve 返回资源的实际路径。
func (a *Assets) Resolve(src string) string {
	if filepath.IsAbs(src) || a.BaseDir == "" {
		return src
	}
	return filepath.Join(a.BaseDir, src)
}

func (a *Assets) load(src string) *asset {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cache == nil {
		a.cache = map[string]*asset{}
	}
	if cached, ok := a.cache[src]; ok {
		return cached
	}
	res := &asset{}
	if src == "" {
		res.err = layout.ResourceError("image", fmt.Errorf("图片路径为空"))
	} else if data, err := os.ReadFile(a.Resolve(src)); err != nil {
		res.err = layout.ResourceError("image", fmt.Errorf("读取图片 %s 失败: %w", src, err))
	} else if img, format, err := image.Decode(bytes.NewReader(data)); err != nil {
		res.err = layout.ResourceError("image", fmt.Errorf("解码图片 %s 失败: %w", src, err))
	} else {
		res.data, res.img, res.format = data, img, format
	}
	a.cache[src] = res
	return res
}

// ImageSize 返回图片像素尺寸。
func (a *Assets) ImageSize(src string) (int, int, error) {
	res := a.load(src)
	if res.err != nil {
		return 0, 0, res.err
	}
	b := res.img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// Image 返回解码后的图片。
func (a *Assets) Image(src string) (image.Image, error) {
	res := a.load(src)
	return res.img, res.err
}

// Raw 返回图片原始数据与格式名（png、jpeg、gif、webp、bmp、tiff）。
func (a *Assets) Raw(src string) ([]byte, string, error) {
	res := a.load(src)
	return res.data, res.format, res.err
}
