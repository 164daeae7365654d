package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// ConnectionChecker はコンテンツソースの接続診断インターフェース。
type ConnectionChecker interface {
	// CheckConnection はデータベースのメタデータ取得とクエリを試す。
	// 途中で失敗した場合も、それまでに得られた結果をエラーとともに返す。
	CheckConnection(ctx context.Context) (*connectionResult, error)
}

// connectionResult は接続診断の結果。
type connectionResult struct {
	Configured    bool
	DataSourceID  string
	DatabaseTitle string
	PropertyNames []string
	Count         int
}

type connectionDatabase struct {
	Title        string `json:"title"`
	DataSourceID string `json:"dataSourceId"`
}

type connectionResults struct {
	Count         int      `json:"count"`
	PropertyNames []string `json:"propertyNames"`
}

type connectionResponse struct {
	Success       bool                `json:"success"`
	Error         string              `json:"error,omitempty"`
	HasToken      bool                `json:"hasToken"`
	HasDatabaseID bool                `json:"hasDatabaseId"`
	Database      *connectionDatabase `json:"database,omitempty"`
	Results       *connectionResults  `json:"results,omitempty"`
}

// DebugHandler はヘルスチェックと接続診断のHTTPハンドラー。
type DebugHandler struct {
	checker ConnectionChecker
	status  SourceStatus
}

// NewDebugHandler はDebugHandlerを生成する。
func NewDebugHandler(checker ConnectionChecker, status SourceStatus) *DebugHandler {
	return &DebugHandler{checker: checker, status: status}
}

// Health はプロセスの稼働状態を返す。コンテンツソースには問い合わせない。
// GET /health
func (h *DebugHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Connection はコンテンツソースへの接続を診断する。
// GET /api/debug/connection
func (h *DebugHandler) Connection(w http.ResponseWriter, r *http.Request) {
	resp := connectionResponse{
		HasToken:      h.status.HasToken,
		HasDatabaseID: h.status.HasDatabaseID,
	}

	if !h.status.HasToken || !h.status.HasDatabaseID || h.checker == nil {
		resp.Error = "Missing environment variables"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	result, err := h.checker.CheckConnection(r.Context())
	if result != nil && result.DataSourceID != "" {
		resp.Database = &connectionDatabase{
			Title:        result.DatabaseTitle,
			DataSourceID: result.DataSourceID,
		}
	}
	if err != nil {
		slog.Error("content source connection check failed", slog.String("error", err.Error()))
		resp.Error = "Content source request failed"
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}
	if result == nil || !result.Configured {
		resp.Error = "Missing environment variables"
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Success = true
	resp.Results = &connectionResults{
		Count:         result.Count,
		PropertyNames: result.PropertyNames,
	}
	writeJSON(w, http.StatusOK, resp)
}
