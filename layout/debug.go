package layout

import (
	"encoding/json"
	"io"
	"os"
)

// debugDocument 在布局结果之外附带每页的指令统计与锚点，便于比对分页结果。
type debugDocument struct {
	*Result
	Summary []debugPage `json:"summary"`
}

type debugPage struct {
	Number   int            `json:"number"`
	Template string         `json:"template"`
	Ops      map[OpKind]int `json:"ops"`
	Anchors  []string       `json:"anchors,omitempty"`
}

func summarize(res *Result) []debugPage {
	out := make([]debugPage, 0, len(res.Pages))
	for _, page := range res.Pages {
		dp := debugPage{Number: page.Number, Template: page.Template, Ops: map[OpKind]int{}}
		for _, op := range page.Ops {
			dp.Ops[op.Kind]++
			if op.Kind == OpAnchor {
				dp.Anchors = append(dp.Anchors, op.Anchor.Name)
			}
		}
		out = append(out, dp)
	}
	return out
}

// EncodeDebug 把布局结果连同分页摘要以缩进 JSON 写入 w。
func EncodeDebug(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(debugDocument{Result: res, Summary: summarize(res)})
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebug(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
