package layout

// Block 是可测量、可放置的内容单元。
// Measure 必须无副作用且可重复调用；Place 在同一宽度下绘制的高度必须与 Measure 一致。
type Block interface {
	Measure(width float64) (float64, error)
	Place(pw *PageWriter, x, y, width float64) error
	Splittable() bool
}

// Splitter 由可跨栏拆分的块实现。
// Split 返回能放进 avail 高度的头部与剩余部分；头部为空表示一行也放不下，剩余为空表示整体都能放下。
type Splitter interface {
	Split(width, avail float64) (head, tail Block, err error)
}

// Spacer 是固定高度的空白；位于区域顶部时会被分页器丢弃。
type Spacer struct {
	Height float64
}

func (s *Spacer) Measure(float64) (float64, error) { return s.Height, nil }

func (s *Spacer) Place(*PageWriter, float64, float64, float64) error { return nil }

func (s *Spacer) Splittable() bool { return false }

// Group 把若干块绑定在一起，不允许在它们之间分页。
type Group struct {
	Blocks []Block
}

// Keep 返回一个保持在一起的块组。
func Keep(blocks ...Block) *Group { return &Group{Blocks: blocks} }

func (g *Group) Measure(width float64) (float64, error) {
	total := 0.0
	for _, b := range g.Blocks {
		h, err := b.Measure(width)
		if err != nil {
			return 0, err
		}
		total += h
	}
	return total, nil
}

func (g *Group) Place(pw *PageWriter, x, y, width float64) error {
	for _, b := range g.Blocks {
		h, err := b.Measure(width)
		if err != nil {
			return err
		}
		if err := b.Place(pw, x, y, width); err != nil {
			return err
		}
		y += h
	}
	return nil
}

func (g *Group) Splittable() bool { return false }

// Placement 决定块进入当前栏还是通栏。
type Placement int

const (
	PlaceInline Placement = iota
	PlaceFullWidth
)

// DirectiveKind 标识分页指令的类型。
type DirectiveKind int

const (
	DirAppend DirectiveKind = iota
	DirSwitchTemplate
	DirPageBreak
	DirCondBreak
)

func (k DirectiveKind) String() string {
	switch k {
	case DirAppend:
		return "append"
	case DirSwitchTemplate:
		return "switch-template"
	case DirPageBreak:
		return "page-break"
	case DirCondBreak:
		return "cond-break"
	default:
		return "unknown"
	}
}

// Directive 是分页器按顺序执行的一条指令。
type Directive struct {
	Kind      DirectiveKind
	Block     Block
	Placement Placement
	Template  string
	MinSpace  float64
}

// Append 把块追加到当前排版流。
func Append(b Block) Directive { return Directive{Kind: DirAppend, Block: b} }

// AppendFullWidth 把块放进按其高度生成的通栏页。
func AppendFullWidth(b Block) Directive {
	return Directive{Kind: DirAppend, Block: b, Placement: PlaceFullWidth}
}

// SwitchTemplate 指定下一页使用的模板。
func SwitchTemplate(name string) Directive { return Directive{Kind: DirSwitchTemplate, Template: name} }

// PageBreak 强制换页。
func PageBreak() Directive { return Directive{Kind: DirPageBreak} }

// CondBreak 在当前区域剩余高度小于 minSpace 时切到下一区域。
func CondBreak(minSpace float64) Directive { return Directive{Kind: DirCondBreak, MinSpace: minSpace} }

// Story 是块与指令的有序序列。
type Story struct {
	Start      string
	Directives []Directive
	Meta       DocumentMeta
}
