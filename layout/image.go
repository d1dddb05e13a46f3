package layout

import "fmt"

// ImageSource 返回图片的像素尺寸，文件缺失或无法解码时返回 ResourceError。
type ImageSource interface {
	ImageSize(src string) (w, h int, err error)
}

// placeholderAspect 是图片缺失时占位块的高宽比。
const placeholderAspect = 0.6

// ImageBlock 是按宽度等比缩放的图片，可带图注。
type ImageBlock struct {
	src         string
	scale       float64
	aspect      float64
	missing     bool
	placeholder Color
	caption     *Paragraph
	gap         float64
}

// ImageOptions 配置图片块。
type ImageOptions struct {
	// Scale 是图片宽度占可用宽度的比例，(0, 1]，0 视为 1。
	Scale       float64
	Caption     *Paragraph
	CaptionGap  float64
	Placeholder Color
}

// NewImage 查询图片尺寸并构造块。图片不可用时仍返回可用的占位块，同时返回 ResourceError 供调用方记录。
func NewImage(images ImageSource, src string, opts ImageOptions) (*ImageBlock, error) {
	b := &ImageBlock{
		src:         src,
		scale:       opts.Scale,
		aspect:      placeholderAspect,
		placeholder: opts.Placeholder,
		caption:     opts.Caption,
		gap:         opts.CaptionGap,
	}
	if b.scale <= 0 || b.scale > 1 {
		b.scale = 1
	}
	if images == nil {
		b.missing = true
		return b, ResourceError("image", fmt.Errorf("未配置图片来源，无法读取 %s", src))
	}
	w, h, err := images.ImageSize(src)
	if err == nil && (w <= 0 || h <= 0) {
		err = ResourceError("image", fmt.Errorf("图片 %s 尺寸为 0", src))
	}
	if err != nil {
		b.missing = true
		if !IsResource(err) {
			err = ResourceError("image", err)
		}
		return b, err
	}
	b.aspect = float64(h) / float64(w)
	return b, nil
}

// Missing 报告图片是否以占位块代替。
func (b *ImageBlock) Missing() bool { return b.missing }

func (b *ImageBlock) box(width float64) (w, h float64) {
	w = width * b.scale
	return w, w * b.aspect
}

func (b *ImageBlock) Measure(width float64) (float64, error) {
	_, h := b.box(width)
	if b.caption != nil {
		ch, err := b.caption.Measure(width)
		if err != nil {
			return 0, err
		}
		h += b.gap + ch
	}
	return h, nil
}

func (b *ImageBlock) Place(pw *PageWriter, x, y, width float64) error {
	w, h := b.box(width)
	img := ImageBox{Path: b.src, X: x + (width-w)/2, Y: y, Width: w, Height: h, Opacity: 1}
	if b.missing {
		img.Placeholder = colorPtr(b.placeholder)
	}
	pw.Image(img)
	if b.caption != nil {
		return b.caption.Place(pw, x, y+h+b.gap, width)
	}
	return nil
}

func (b *ImageBlock) Splittable() bool { return false }
