package notion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FormatID はNotionのID（ハイフン有無どちらも可）をハイフン付きの正規形に変換する。
// NotionのURLからコピーした32文字のIDをそのまま設定できるようにするため。
func FormatID(raw string) (string, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
	if len(clean) != 32 {
		return "", fmt.Errorf("invalid notion id: expected 32 hex characters, got %d", len(clean))
	}

	id, err := uuid.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("invalid notion id: %w", err)
	}
	return id.String(), nil
}
