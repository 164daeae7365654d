// Package notion はNotion REST APIのクライアントを提供する。
// ブログのコンテンツソースとして、データベースのメタデータ取得、
// データソースのクエリ、ブロック子要素の一覧取得のみを扱う。
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL はNotion APIのベースURL。
	DefaultBaseURL = "https://api.notion.com/v1"
	// DefaultVersion はNotion-Versionヘッダーの既定値。
	// データソースAPI（dataSources.query）が導入されたバージョン。
	DefaultVersion = "2025-09-03"
	// DefaultRequestsPerSecond はNotionの平均レート制限（3 req/s）。
	DefaultRequestsPerSecond = 3.0

	// pageSize は1リクエストあたりの最大取得件数。
	pageSize = 100
	// maxErrorBodySize はエラーレスポンスの読み取り上限。
	maxErrorBodySize = 64 * 1024
)

// Config はClientの設定。
type Config struct {
	Token             string
	Version           string
	BaseURL           string
	RequestsPerSecond float64
	// MaxRetries は429と5xxに対する再試行回数。0以下は再試行しない。
	MaxRetries int
	// RetryBackoff は指数バックオフの初回遅延。0は既定値。
	RetryBackoff time.Duration
}

// Client はNotion APIのクライアント。
// プロセス起動時に1回だけ生成し、以降は共有して使う。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	token      string
	version    string
	limiter    *rate.Limiter

	maxRetries   int
	retryBackoff time.Duration
}

// NewClient はClientの新しいインスタンスを生成する。
// 未指定の設定値には既定値を使う。
func NewClient(httpClient *http.Client, logger *slog.Logger, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		version:    cfg.Version,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),

		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
	}
}

// Filter はクエリのフィルタ条件。
type Filter struct {
	Property string          `json:"property"`
	Checkbox *CheckboxFilter `json:"checkbox,omitempty"`
}

// CheckboxFilter はcheckboxプロパティの条件。
type CheckboxFilter struct {
	Equals bool `json:"equals"`
}

// Sort はクエリのソート条件。
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// QueryRequest はデータソースのクエリ条件。
type QueryRequest struct {
	Filter *Filter `json:"filter,omitempty"`
	Sorts  []Sort  `json:"sorts,omitempty"`
}

// queryBody は実際に送信するクエリボディ（ページネーション付き）。
type queryBody struct {
	QueryRequest
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

// listResponse はNotionのページネーション付き一覧レスポンス。
type listResponse[T any] struct {
	Results    []T     `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// RetrieveDatabase はデータベースのメタデータを取得する。
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+pathID(databaseID), nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryDataSource はデータソースをクエリし、全ページを取得して返す。
// has_moreが立っている間はnext_cursorで続きを取得する。
func (c *Client) QueryDataSource(ctx context.Context, dataSourceID string, q QueryRequest) ([]Page, error) {
	path := "/data_sources/" + pathID(dataSourceID) + "/query"

	var pages []Page
	cursor := ""
	for {
		body := queryBody{QueryRequest: q, StartCursor: cursor, PageSize: pageSize}

		var resp listResponse[Page]
		if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
			return nil, err
		}
		for _, page := range resp.Results {
			if page.ID == "" {
				c.logger.Warn("skipping malformed page in query result",
					slog.String("data_source_id", dataSourceID),
				)
				continue
			}
			pages = append(pages, page)
		}

		next, ok := c.nextCursor(resp.HasMore, resp.NextCursor, cursor, path)
		if !ok {
			break
		}
		cursor = next
	}

	if pages == nil {
		pages = []Page{}
	}
	return pages, nil
}

// ListBlockChildren はブロック（ページ）直下の子ブロックを全件取得する。
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	base := "/blocks/" + pathID(blockID) + "/children"

	var blocks []Block
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(pageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}

		var resp listResponse[Block]
		if err := c.do(ctx, http.MethodGet, base+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		for _, block := range resp.Results {
			if block.ID == "" {
				c.logger.Warn("skipping malformed block in children list",
					slog.String("block_id", blockID),
				)
				continue
			}
			blocks = append(blocks, block)
		}

		next, ok := c.nextCursor(resp.HasMore, resp.NextCursor, cursor, base)
		if !ok {
			break
		}
		cursor = next
	}

	if blocks == nil {
		blocks = []Block{}
	}
	return blocks, nil
}

// nextCursor は続きを取得するためのカーソルを返す。
// 続きが無い場合と、直前と同じカーソルが返された場合はfalseを返す。
func (c *Client) nextCursor(hasMore bool, next *string, current, path string) (string, bool) {
	if !hasMore || next == nil || *next == "" {
		return "", false
	}
	if *next == current {
		c.logger.Warn("notion returned the same cursor again, stopping pagination",
			slog.String("path", path),
			slog.String("cursor", current),
		)
		return "", false
	}
	return *next, true
}

// do はAPIリクエストを実行し、成功時はoutにJSONをデコードする。
// 2xx以外のレスポンスは*Errorとして返す。429と5xxはmaxRetries回まで再試行する。
func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		err := c.send(ctx, method, path, payload, out)
		if err == nil || attempt >= c.maxRetries || !isRetryable(err) {
			return err
		}

		delay := c.retryDelay(err, attempt)
		c.logger.Warn("retrying notion request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Int64("delay_ms", delay.Milliseconds()),
		)
		if sleepErr := sleepContext(ctx, delay); sleepErr != nil {
			return err
		}
	}
}

// send はリクエストを1回だけ送信する。
func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("notion request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("notion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		c.logger.Warn("notion returned error status",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("code", apiErr.Code),
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode notion response: %w", err)
	}
	return nil
}

// decodeError はエラーレスポンスのボディを*Errorに変換する。
// ボディがNotionのエラー形式でない場合もステータスコードは保持する。
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.retryAfter, apiErr.hasRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	return apiErr
}

// pathID はIDをURLパスで使える形式にする。
// Notion IDとして解釈できる場合はハイフン付きの正規形に揃える。
func pathID(id string) string {
	if formatted, err := FormatID(id); err == nil {
		return formatted
	}
	return url.PathEscape(id)
}
