package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hitoshi/notionblog/internal/model"
	"github.com/hitoshi/notionblog/internal/notion"
)

func mustBlocks(t *testing.T, raw string) []notion.Block {
	t.Helper()
	var blocks []notion.Block
	if err := json.Unmarshal([]byte(raw), &blocks); err != nil {
		t.Fatalf("failed to decode blocks: %v", err)
	}
	return blocks
}

func TestConvertBlocks(t *testing.T) {
	blocks := mustBlocks(t, `[
		{"id": "p", "type": "paragraph", "paragraph": {"rich_text": [
			{"plain_text": "link", "href": "https://example.com", "annotations": {"bold": true, "code": true}}
		]}},
		{"id": "d", "type": "divider", "divider": {}},
		{"id": "i1", "type": "image", "image": {"type": "external", "external": {"url": "https://ext.example.com/a.png"}, "caption": []}},
		{"id": "i2", "type": "image", "image": {"type": "file", "file": {"url": "https://files.example.com/b.png"}, "external": {"url": "https://ext.example.com/c.png"}}},
		{"id": "c", "type": "code", "code": {"rich_text": [{"plain_text": "fmt.Println()"}], "language": "go"}}
	]`)

	got := ConvertBlocks(blocks)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}

	p := got[0]
	if p.Type != model.BlockParagraph || len(p.RichText) != 1 {
		t.Fatalf("unexpected paragraph: %+v", p)
	}
	span := p.RichText[0]
	if span.Href != "https://example.com" || !span.Annotations.Bold || !span.Annotations.Code || span.Annotations.Italic {
		t.Errorf("unexpected span: %+v", span)
	}

	if got[1].HasRichText() {
		t.Error("divider should not carry rich text")
	}
	if got[2].ImageURL != "https://ext.example.com/a.png" {
		t.Errorf("external image URL = %q", got[2].ImageURL)
	}
	if got[3].ImageURL != "https://files.example.com/b.png" {
		t.Errorf("hosted image URL should win, got %q", got[3].ImageURL)
	}
	if got[4].Language != "go" {
		t.Errorf("Language = %q", got[4].Language)
	}
}

func TestConvertBlocks_Empty(t *testing.T) {
	got := ConvertBlocks(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("ConvertBlocks(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestReadingMinutes(t *testing.T) {
	para := func(text string) model.Block {
		return model.Block{Type: model.BlockParagraph, RichText: []model.RichText{{PlainText: text}}}
	}

	tests := []struct {
		name   string
		blocks []model.Block
		want   int
	}{
		{name: "本文なし", blocks: nil, want: 1},
		{name: "短い本文", blocks: []model.Block{para("just a few words")}, want: 1},
		{name: "200語ちょうど", blocks: []model.Block{para(strings.Repeat("word ", 200))}, want: 1},
		{name: "201語", blocks: []model.Block{para(strings.Repeat("word ", 150)), para(strings.Repeat("word ", 51))}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingMinutes(tt.blocks); got != tt.want {
				t.Errorf("ReadingMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}
