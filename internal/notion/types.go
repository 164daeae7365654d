package notion

import (
	"bytes"
	"encoding/json"
)

// RichText はNotion APIのリッチテキスト要素。
type RichText struct {
	Type        string      `json:"type"`
	PlainText   string      `json:"plain_text"`
	Href        *string     `json:"href"`
	Annotations Annotations `json:"annotations"`
}

// Annotations はリッチテキストの装飾。
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// ExternalFile は外部ホストのファイル参照。
type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile はNotionがホストするファイル参照。URLには有効期限がある。
type HostedFile struct {
	URL        string `json:"url"`
	ExpiryTime string `json:"expiry_time"`
}

// FileRef はカバー画像や画像ブロックのファイル参照。
type FileRef struct {
	Type     string        `json:"type"`
	External *ExternalFile `json:"external"`
	File     *HostedFile   `json:"file"`
}

// ExternalURL は外部ホストURLを返す。無い場合は空文字列。
func (f *FileRef) ExternalURL() string {
	if f == nil || f.External == nil {
		return ""
	}
	return f.External.URL
}

// FileURL はNotionホストURLを返す。無い場合は空文字列。
func (f *FileRef) FileURL() string {
	if f == nil || f.File == nil {
		return ""
	}
	return f.File.URL
}

// DataSourceRef はデータベースに紐づくデータソースの参照。
type DataSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Database はデータベースのメタデータ。
// API 2025-09-03以降、クエリはデータソースIDに対して行う。
type Database struct {
	ID          string          `json:"id"`
	Title       []RichText      `json:"title"`
	DataSources []DataSourceRef `json:"data_sources"`
}

// DataSourceID は最初のデータソースIDを返す。
// データソースを持たない構成ではfallbackを返す。
func (d *Database) DataSourceID(fallback string) string {
	if d == nil || len(d.DataSources) == 0 || d.DataSources[0].ID == "" {
		return fallback
	}
	return d.DataSources[0].ID
}

// Page はデータソースのクエリ結果の1ページ。
type Page struct {
	ID             string              `json:"id"`
	CreatedTime    string              `json:"created_time"`
	LastEditedTime string              `json:"last_edited_time"`
	Cover          *FileRef            `json:"cover"`
	URL            string              `json:"url"`
	Properties     map[string]Property `json:"properties"`
}

// UnmarshalJSON はページをフィールドごとにデコードする。
// 形が合わないフィールドはゼロ値のままにし、エラーは返さない。
// オブジェクトでない値はIDの無いページになる。
func (p *Page) UnmarshalJSON(data []byte) error {
	*p = Page{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	decodeArm(fields, "id", &p.ID)
	decodeArm(fields, "created_time", &p.CreatedTime)
	decodeArm(fields, "last_edited_time", &p.LastEditedTime)
	decodeArm(fields, "cover", &p.Cover)
	decodeArm(fields, "url", &p.URL)
	decodeArm(fields, "properties", &p.Properties)
	return nil
}

// DateValue はdateプロパティの値。
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

// SelectOption はselect/multi_selectの選択肢。
type SelectOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PropertyKind はプロパティ値の判別子。
type PropertyKind string

const (
	KindTitle       PropertyKind = "title"
	KindRichText    PropertyKind = "rich_text"
	KindCheckbox    PropertyKind = "checkbox"
	KindDate        PropertyKind = "date"
	KindSelect      PropertyKind = "select"
	KindMultiSelect PropertyKind = "multi_select"
	KindURL         PropertyKind = "url"
	// KindArray はプロパティ値そのものがJSON配列である場合。
	KindArray PropertyKind = "array"
	// KindUnknown は既知のどの形状にも当てはまらない場合。
	KindUnknown PropertyKind = ""
)

// Property はページプロパティのタグ付きユニオン。
// スキーマのバージョンや連携によって形状が揺れるため、
// 既知のアームを個別にデコードし、形が合わないアームは無視する。
type Property struct {
	ID          string
	Type        string
	Title       []RichText
	RichText    []RichText
	Checkbox    *bool
	Date        *DateValue
	Select      *SelectOption
	MultiSelect []SelectOption
	URL         *string
	// Array はプロパティ値がJSON配列だった場合の要素。
	Array []json.RawMessage
	// Raw はデコード前の値。
	Raw json.RawMessage
}

// UnmarshalJSON はプロパティ値をデコードする。
// 形状不正でもエラーは返さず、該当アームを空のままにする。
func (p *Property) UnmarshalJSON(data []byte) error {
	*p = Property{Raw: append(json.RawMessage(nil), data...)}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			if items == nil {
				items = []json.RawMessage{}
			}
			p.Array = items
		}
		return nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil
		}
		decodeArm(fields, "id", &p.ID)
		decodeArm(fields, "type", &p.Type)
		decodeArm(fields, "title", &p.Title)
		decodeArm(fields, "rich_text", &p.RichText)
		decodeArm(fields, "checkbox", &p.Checkbox)
		decodeArm(fields, "date", &p.Date)
		decodeArm(fields, "select", &p.Select)
		decodeArm(fields, "multi_select", &p.MultiSelect)
		decodeArm(fields, "url", &p.URL)
		return nil
	default:
		return nil
	}
}

// decodeArm はキーが存在する場合のみ値をデコードする。失敗したアームはゼロ値に戻す。
func decodeArm[T any](fields map[string]json.RawMessage, key string, dst *T) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var zero T
		*dst = zero
	}
}

// Kind はプロパティの判別子を返す。
// typeキーが無い場合は値が入っているアームから推定する。
func (p Property) Kind() PropertyKind {
	if p.Type != "" {
		return PropertyKind(p.Type)
	}
	switch {
	case p.Array != nil:
		return KindArray
	case p.Select != nil:
		return KindSelect
	case p.MultiSelect != nil:
		return KindMultiSelect
	case p.Title != nil:
		return KindTitle
	case p.RichText != nil:
		return KindRichText
	case p.Checkbox != nil:
		return KindCheckbox
	case p.Date != nil:
		return KindDate
	case p.URL != nil:
		return KindURL
	default:
		return KindUnknown
	}
}

// BlockPayload はブロックの種類名をキーとするペイロード。
type BlockPayload struct {
	RichText []RichText    `json:"rich_text"`
	Caption  []RichText    `json:"caption"`
	Language string        `json:"language"`
	Type     string        `json:"type"`
	External *ExternalFile `json:"external"`
	File     *HostedFile   `json:"file"`
}

// Block はページ本文のブロック。
type Block struct {
	ID          string
	Type        string
	HasChildren bool
	Payload     BlockPayload
}

// UnmarshalJSON はtypeの値をキーとするペイロードを取り出してデコードする。
// Pageと同じく形状不正でもエラーは返さない。
func (b *Block) UnmarshalJSON(data []byte) error {
	*b = Block{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	decodeArm(fields, "id", &b.ID)
	decodeArm(fields, "type", &b.Type)
	decodeArm(fields, "has_children", &b.HasChildren)
	if b.Type != "" {
		decodeArm(fields, b.Type, &b.Payload)
	}
	return nil
}
