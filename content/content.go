// Package content 读取论文、报告等文档的 JSON 描述。
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document 是一份待排版的文档。
type Document struct {
	Metadata   Metadata    `json:"metadata"`
	Body       []Item      `json:"-"`
	References []Reference `json:"references"`
}

// Metadata 保存标题、作者、摘要、关键词与出版信息。
type Metadata struct {
	Title           string          `json:"title"`
	Authors         []Author        `json:"authors"`
	Summary         string          `json:"summary"`
	Tags            []string        `json:"tags"`
	PublicationInfo PublicationInfo `json:"publication_info"`
	Cover           *Cover          `json:"cover,omitempty"`
}

// Author 是一位作者。
type Author struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Contact     string `json:"contact"`
}

// PublicationInfo 用于页眉。
type PublicationInfo struct {
	Journal string `json:"journal"`
	Volume  Text   `json:"volume"`
	Issue   Text   `json:"issue"`
	Date    string `json:"date"`
}

// Cover 描述封面页。
type Cover struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Author     string   `json:"author"`
	Date       string   `json:"date"`
	Image      string   `json:"image"`
	Logo       string   `json:"logo"`
	OffsetMode string   `json:"offset_mode"`
	OffsetX    float64  `json:"offset_x"`
	OffsetY    float64  `json:"offset_y"`
	Darken     *float64 `json:"darken,omitempty"`
}

// Reference 是一条参考文献，Index 从 1 开始，按出现顺序编号。
type Reference struct {
	Index int    `json:"-"`
	Text  string `json:"text"`
}

// Text 兼容 JSON 中的字符串与数字。
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("期望字符串或数字: %w", err)
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string { return string(t) }

// Kind 标识内容项类型。
type Kind string

const (
	KindSection Kind = "section"
	KindTable   Kind = "table"
	KindImage   Kind = "image"
	KindWidget  Kind = "widget"
)

// Item 是正文中的一项内容。
type Item interface {
	Kind() Kind
}

// Section 是带标题的若干段落。
type Section struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

func (*Section) Kind() Kind { return KindSection }

// Table 是一张表格。ColWidths 单位为 pt。
type Table struct {
	Title     string    `json:"title"`
	Headers   []Text    `json:"headers"`
	Rows      [][]Text  `json:"rows"`
	ColWidths []float64 `json:"col_widths"`
	Caption   string    `json:"caption"`
	Placement string    `json:"placement"`
	Align     []string  `json:"align"`
	Colors    []string  `json:"colors"`
	Fonts     []string  `json:"fonts"`
	Style     string    `json:"style"`
}

func (*Table) Kind() Kind { return KindTable }

// HeaderStrings 返回表头文本。
func (t *Table) HeaderStrings() []string { return texts(t.Headers) }

// RowStrings 返回各行文本，允许行长不一。
func (t *Table) RowStrings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = texts(r)
	}
	return out
}

// Image 是一张图片。Width 为占可用宽度的比例。
type Image struct {
	Src       string  `json:"src"`
	Caption   string  `json:"caption"`
	Width     float64 `json:"width"`
	Placement string  `json:"placement"`
}

func (*Image) Kind() Kind { return KindImage }

// Source 是卡片引用的资料。
type Source struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Details string `json:"details"`
}

// Widget 是仪表盘卡片，Shape 为 rect（默认）或 square。
type Widget struct {
	Shape     string   `json:"shape"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	Severity  string   `json:"severity"`
	Sources   []Source `json:"sources"`
	Placement string   `json:"placement"`
}

func (*Widget) Kind() Kind { return KindWidget }

// Unknown 保存无法识别类型的内容项，排版时跳过并记录。
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (u *Unknown) Kind() Kind { return Kind(u.Type) }

// IsFullWidth 报告 placement 是否要求通栏。
func IsFullWidth(placement string) bool {
	return strings.EqualFold(strings.TrimSpace(placement), "fullwidth")
}

type rawDocument struct {
	Metadata   Metadata          `json:"metadata"`
	Body       []json.RawMessage `json:"body_content"`
	References []Reference       `json:"references"`
}

// UnmarshalJSON 按 type 字段解码正文内容项。
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw rawDocument
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Metadata = raw.Metadata
	d.References = raw.References
	for i := range d.References {
		d.References[i].Index = i + 1
	}
	d.Body = make([]Item, 0, len(raw.Body))
	for i, msg := range raw.Body {
		item, err := decodeItem(msg)
		if err != nil {
			return fmt.Errorf("body_content[%d]: %w", i, err)
		}
		d.Body = append(d.Body, item)
	}
	return nil
}

func decodeItem(msg json.RawMessage) (Item, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return nil, err
	}
	var item Item
	switch Kind(strings.ToLower(head.Type)) {
	case KindSection:
		item = &Section{}
	case KindTable:
		item = &Table{}
	case KindImage:
		item = &Image{}
	case KindWidget:
		item = &Widget{}
	default:
		return &Unknown{Type: head.Type, Raw: msg}, nil
	}
	if err := json.Unmarshal(msg, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Decode 从 r 读取文档。
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("解析文档 JSON 失败: %w", err)
	}
	return &doc, nil
}

// Load 从文件读取文档。
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开文档 %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

func texts(in []Text) []string {
	out := make([]string, len(in))
	for i, t := range in {
		out[i] = string(t)
	}
	return out
}
