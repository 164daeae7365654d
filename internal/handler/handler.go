// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/notionblog/internal/middleware"
	"github.com/hitoshi/notionblog/internal/model"
)

// timestampLayout はレスポンスのtimestampフィールドの形式（ミリ秒精度のUTC ISO 8601）。
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SourceStatus はコンテンツソースの設定状況を表す。デバッグ情報として返す。
type SourceStatus struct {
	HasToken      bool
	HasDatabaseID bool
}

// sourceDebugInfo はレスポンスに含めるコンテンツソースの設定状況。
type sourceDebugInfo struct {
	HasNotionToken    bool   `json:"hasNotionToken"`
	HasNotionDatabase bool   `json:"hasNotionDatabase"`
	Timestamp         string `json:"timestamp"`
}

// debugInfo は記事一覧に付与するデバッグ情報。
type debugInfo struct {
	TotalPosts int      `json:"totalPosts"`
	AllTags    []string `json:"allTags"`
	sourceDebugInfo
}

// formatTimestamp はtをレスポンス用のタイムスタンプ文字列に変換する。
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	middleware.WriteJSON(w, statusCode, v)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodePostNotFound, model.ErrCodeCategoryNotFound:
		return http.StatusNotFound
	case model.ErrCodeFetchFailed:
		return http.StatusBadGateway
	case model.ErrCodeInvalidSignature:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// uniqueTags は記事のタグを初出順に重複なしで返す。結果は常にnilではない。
func uniqueTags(posts []model.Post) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range posts {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}
