package layout

// Author 是作者栅格中的一项。
type Author struct {
	Name        string
	Institution string
	Contact     string
}

// AuthorGrid 按固定列数排列作者，每格依次为姓名、单位、联系方式，满一行后换行。
type AuthorGrid struct {
	m       TextMetrics
	name    TextStyle
	info    TextStyle
	columns int
	padding float64
	authors []Author
}

// NewAuthorGrid 构造作者栅格，columns <= 0 时按 3 列处理。
func NewAuthorGrid(m TextMetrics, name, info TextStyle, columns int, authors []Author) *AuthorGrid {
	if columns <= 0 {
		columns = 3
	}
	return &AuthorGrid{m: m, name: name, info: info, columns: columns, padding: Pt(4), authors: authors}
}

func (g *AuthorGrid) cell(a Author) *Group {
	blocks := []Block{Text(g.m, g.name, a.Name)}
	for _, line := range []string{a.Institution, a.Contact} {
		if line != "" {
			blocks = append(blocks, Text(g.m, g.info, line))
		}
	}
	return Keep(blocks...)
}

func (g *AuthorGrid) rows() [][]Author {
	var rows [][]Author
	for i := 0; i < len(g.authors); i += g.columns {
		rows = append(rows, g.authors[i:min(i+g.columns, len(g.authors))])
	}
	return rows
}

func (g *AuthorGrid) rowHeight(row []Author, cellW float64) (float64, error) {
	h := 0.0
	for _, a := range row {
		ch, err := g.cell(a).Measure(cellW - 2*g.padding)
		if err != nil {
			return 0, err
		}
		h = max(h, ch)
	}
	return h + 2*g.padding, nil
}

func (g *AuthorGrid) Measure(width float64) (float64, error) {
	cellW := width / float64(g.columns)
	total := 0.0
	for _, row := range g.rows() {
		h, err := g.rowHeight(row, cellW)
		if err != nil {
			return 0, err
		}
		total += h
	}
	return total, nil
}

func (g *AuthorGrid) Place(pw *PageWriter, x, y, width float64) error {
	cellW := width / float64(g.columns)
	for _, row := range g.rows() {
		h, err := g.rowHeight(row, cellW)
		if err != nil {
			return err
		}
		// 不满一行时整体居中
		offset := (width - cellW*float64(len(row))) / 2
		for i, a := range row {
			cx := x + offset + float64(i)*cellW + g.padding
			if err := g.cell(a).Place(pw, cx, y+g.padding, cellW-2*g.padding); err != nil {
				return err
			}
		}
		y += h
	}
	return nil
}

func (g *AuthorGrid) Splittable() bool { return false }
