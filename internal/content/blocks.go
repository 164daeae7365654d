package content

import (
	"strings"

	"github.com/hitoshi/notionblog/internal/model"
	"github.com/hitoshi/notionblog/internal/notion"
)

// wordsPerMinute は読了時間の算出に使う1分あたりの語数。
const wordsPerMinute = 200

// ConvertBlocks はNotionのブロック列をモデルのブロック列に変換する。順序は保持する。
func ConvertBlocks(blocks []notion.Block) []model.Block {
	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, convertBlock(b))
	}
	return out
}

func convertBlock(b notion.Block) model.Block {
	block := model.Block{
		ID:       b.ID,
		Type:     model.BlockType(b.Type),
		RichText: convertRichText(b.Payload.RichText),
		Caption:  convertRichText(b.Payload.Caption),
		Language: b.Payload.Language,
	}
	if block.Type == model.BlockImage {
		block.ImageURL = imageURL(b.Payload)
	}
	return block
}

// imageURL はNotionホストのURLを優先し、無ければ外部URLを返す。
func imageURL(p notion.BlockPayload) string {
	if p.File != nil && p.File.URL != "" {
		return p.File.URL
	}
	if p.External != nil {
		return p.External.URL
	}
	return ""
}

// convertRichText はnilを保ったままスパン列を変換する。
func convertRichText(spans []notion.RichText) []model.RichText {
	if spans == nil {
		return nil
	}
	out := make([]model.RichText, 0, len(spans))
	for _, s := range spans {
		rt := model.RichText{
			PlainText: s.PlainText,
			Annotations: model.Annotations{
				Bold:          s.Annotations.Bold,
				Italic:        s.Annotations.Italic,
				Strikethrough: s.Annotations.Strikethrough,
				Underline:     s.Annotations.Underline,
				Code:          s.Annotations.Code,
			},
		}
		if s.Href != nil {
			rt.Href = *s.Href
		}
		out = append(out, rt)
	}
	return out
}

// ReadingMinutes は本文の語数から読了時間（分）を見積もる。最小値は1。
func ReadingMinutes(blocks []model.Block) int {
	words := 0
	for _, b := range blocks {
		words += len(strings.Fields(model.PlainText(b.RichText)))
		words += len(strings.Fields(model.PlainText(b.Caption)))
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
