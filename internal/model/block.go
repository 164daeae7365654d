package model

// BlockType は本文ブロックの種類を表す。
// 列挙外の種類はソースの型名をそのまま保持する。
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockQuote            BlockType = "quote"
	BlockCode             BlockType = "code"
	BlockImage            BlockType = "image"
	BlockDivider          BlockType = "divider"
)

// HeadingLevel は見出しブロックのレベル（1〜3）を返す。見出し以外は0。
func (t BlockType) HeadingLevel() int {
	switch t {
	case BlockHeading1:
		return 1
	case BlockHeading2:
		return 2
	case BlockHeading3:
		return 3
	default:
		return 0
	}
}

// Block は記事本文の1ブロックを表す。
// 親子関係は持たず、並び順はソースが返した順序とする。
type Block struct {
	ID   string
	Type BlockType
	// RichText はペイロードにrich_textキーが無い場合nil、空配列の場合は長さ0の非nilスライス。
	RichText []RichText
	Caption  []RichText
	// ImageURL は画像ブロックの解決済みURL。
	ImageURL string
	// Language はコードブロックの言語名。
	Language string
}

// HasRichText はブロックがrich_textペイロードを持つかを返す。
func (b Block) HasRichText() bool {
	return b.RichText != nil
}

// Annotations はリッチテキストの装飾フラグ。各フラグは独立しており組み合わせ可能。
type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Underline     bool `json:"underline"`
	Code          bool `json:"code"`
}

// RichText はスタイル付きテキストの1スパン。
type RichText struct {
	PlainText   string
	Annotations Annotations
	Href        string
}

// PlainText はスパン列のプレーンテキストを連結して返す。
func PlainText(spans []RichText) string {
	if len(spans) == 0 {
		return ""
	}
	if len(spans) == 1 {
		return spans[0].PlainText
	}
	n := 0
	for _, s := range spans {
		n += len(s.PlainText)
	}
	b := make([]byte, 0, n)
	for _, s := range spans {
		b = append(b, s.PlainText...)
	}
	return string(b)
}
