package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{
  "metadata": {
    "title": "Sample",
    "authors": [{"name": "Ada", "institution": "Engines"}],
    "tags": ["a", "b"],
    "publication_info": {"journal": "J", "volume": 7, "issue": "2", "date": "May"}
  },
  "body_content": [
    {"type": "section", "title": "Intro", "content": ["one", "two"]},
    {"type": "TABLE", "headers": ["ID", 2], "rows": [[1, "x"], [2]], "col_widths": [40, 80], "placement": "fullwidth"},
    {"type": "image", "src": "a.png", "caption": "Chart", "width": 0.5},
    {"type": "widget", "shape": "square", "text": "42", "sources": [{"id": "s1", "label": "S1"}]},
    {"type": "video", "src": "a.mp4"}
  ],
  "references": [{"text": "First"}, {"text": "Second"}]
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if doc.Metadata.Title != "Sample" || len(doc.Metadata.Authors) != 1 {
		t.Fatalf("metadata 解析错误: %+v", doc.Metadata)
	}
	if v := doc.Metadata.PublicationInfo.Volume.String(); v != "7" {
		t.Fatalf("数字卷号应转为文本，实际 %q", v)
	}
	if len(doc.Body) != 5 {
		t.Fatalf("期望 5 个内容项，实际 %d", len(doc.Body))
	}
	wantKinds := []Kind{KindSection, KindTable, KindImage, KindWidget, "video"}
	for i, item := range doc.Body {
		if item.Kind() != wantKinds[i] {
			t.Fatalf("第 %d 项类型 %q，期望 %q", i, item.Kind(), wantKinds[i])
		}
	}

	sec := doc.Body[0].(*Section)
	if sec.Title != "Intro" || len(sec.Content) != 2 {
		t.Fatalf("section 解析错误: %+v", sec)
	}
	tbl := doc.Body[1].(*Table)
	if h := tbl.HeaderStrings(); h[0] != "ID" || h[1] != "2" {
		t.Fatalf("表头解析错误: %q", h)
	}
	rows := tbl.RowStrings()
	if len(rows) != 2 || rows[0][0] != "1" || len(rows[1]) != 1 {
		t.Fatalf("行解析错误: %q", rows)
	}
	if !IsFullWidth(tbl.Placement) || len(tbl.ColWidths) != 2 {
		t.Fatalf("表格属性解析错误: %+v", tbl)
	}
	img := doc.Body[2].(*Image)
	if img.Src != "a.png" || img.Width != 0.5 || IsFullWidth(img.Placement) {
		t.Fatalf("image 解析错误: %+v", img)
	}
	w := doc.Body[3].(*Widget)
	if w.Shape != "square" || len(w.Sources) != 1 || w.Sources[0].ID != "s1" {
		t.Fatalf("widget 解析错误: %+v", w)
	}
	if u := doc.Body[4].(*Unknown); u.Type != "video" || len(u.Raw) == 0 {
		t.Fatalf("未知类型应保留原始数据: %+v", u)
	}

	if len(doc.References) != 2 || doc.References[0].Index != 1 || doc.References[1].Index != 2 {
		t.Fatalf("参考文献应从 1 开始编号: %+v", doc.References)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(strings.NewReader("{")); err == nil {
		t.Fatalf("非法 JSON 应返回错误")
	}
	bad := `{"body_content": [{"type": "section", "title": 3}]}`
	_, err := Decode(strings.NewReader(bad))
	if err == nil || !strings.Contains(err.Error(), "body_content[0]") {
		t.Fatalf("错误应指明内容项位置，实际 %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"metadata": {"publication_info": {"volume": true}}}`)); err == nil {
		t.Fatalf("卷号既不是字符串也不是数字时应返回错误")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.Metadata.Title != "Sample" {
		t.Fatalf("Load 结果错误: %+v", doc.Metadata)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("文件不存在应返回错误")
	}
}
