package layout

// AllocateColumnWidths 根据表头与单元格内容计算列宽，返回值之和恰好等于 target。
// 每列取单行最大宽度加两侧内边距，再按 MinColumnWidth 下限截断；总和超出时整体等比缩小，
// 不放大。最后把剩余量补到最后一列以消除浮点误差，网格线按累计偏移绘制，不能有缝。
// 行可以长短不一，缺失的单元格视为空字符串。
func AllocateColumnWidths(m TextMetrics, headers []string, rows [][]string, target float64, style TableStyle) ([]float64, error) {
	cols := columnCount(headers, rows)
	if cols == 0 {
		return nil, ConfigError("columns", "表格没有任何列")
	}
	if target <= 0 {
		return nil, ConfigError("columns", "表格宽度必须大于 0，当前为 %.2f", target)
	}
	pad := 2 * style.CellPadding.ToMM()
	desired := make([]float64, cols)
	for i := 0; i < cols; i++ {
		if i < len(headers) {
			w, err := style.HeaderFont.width(m, headers[i])
			if err != nil {
				return nil, err
			}
			desired[i] = w
		}
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			w, err := style.BodyFont.width(m, row[i])
			if err != nil {
				return nil, err
			}
			desired[i] = max(desired[i], w)
		}
		desired[i] += pad
	}
	return fitWidths(desired, target, style.MinColumnWidth.ToMM()), nil
}

// fitWidths 对期望宽度执行下限截断、等比缩小与残差修正。调用方指定的列宽也走这里。
func fitWidths(desired []float64, target, minWidth float64) []float64 {
	out := make([]float64, len(desired))
	sum := 0.0
	for i, w := range desired {
		out[i] = max(w, minWidth)
		sum += out[i]
	}
	if sum > target {
		shrinkToFit(out, sum, target, minWidth)
	}
	total := 0.0
	for _, w := range out[:len(out)-1] {
		total += w
	}
	out[len(out)-1] = target - total
	return out
}

// shrinkToFit 等比缩小列宽。列数 × 下限超出 target 时所有列统一缩放（降级布局）；
// 否则被压到下限以下的列固定为下限，其余列按比例分摊剩余宽度。
// 没有列被固定时，结果与统一乘以 target/sum 相同。
func shrinkToFit(widths []float64, sum, target, minWidth float64) {
	if float64(len(widths))*minWidth >= target {
		scale := target / sum
		for i := range widths {
			widths[i] *= scale
		}
		return
	}
	pinned := make([]bool, len(widths))
	for {
		free, room := 0.0, target
		for i, w := range widths {
			if pinned[i] {
				room -= minWidth
				continue
			}
			free += w
		}
		scale := room / free
		changed := false
		for i := range widths {
			if pinned[i] {
				continue
			}
			if widths[i]*scale < minWidth {
				pinned[i] = true
				widths[i] = minWidth
				changed = true
			}
		}
		if !changed {
			for i := range widths {
				if !pinned[i] {
					widths[i] *= scale
				}
			}
			return
		}
	}
}

func columnCount(headers []string, rows [][]string) int {
	n := len(headers)
	for _, row := range rows {
		n = max(n, len(row))
	}
	return n
}
