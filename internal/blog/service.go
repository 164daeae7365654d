// Package blog はコンテンツソースから記事一覧と本文を取得するサービスを提供する。
//
// リクエストごとに同期的に取得し、結果はキャッシュしない。
// コンテンツソースが未設定の場合はプレースホルダー記事を返す。
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/notionblog/internal/content"
	"github.com/hitoshi/notionblog/internal/metrics"
	"github.com/hitoshi/notionblog/internal/model"
	"github.com/hitoshi/notionblog/internal/notion"
	"github.com/hitoshi/notionblog/internal/render"
	"github.com/hitoshi/notionblog/internal/security"
)

const (
	// PublishedProperty は公開フラグのcheckboxプロパティ名。
	PublishedProperty = "Published"
	// PublishedDateProperty はソートに使う公開日プロパティ名。
	PublishedDateProperty = "Published Date"

	opRetrieveDatabase = "retrieve_database"
	opQuery            = "query"
	opListBlocks       = "list_blocks"
)

// Source はコンテンツソース（Notion）へのアクセスを抽象化する。
// *notion.Clientが実装する。
type Source interface {
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	QueryDataSource(ctx context.Context, dataSourceID string, q notion.QueryRequest) ([]notion.Page, error)
	ListBlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
}

// ServiceConfig はServiceの設定。
type ServiceConfig struct {
	DatabaseID string
}

// PostBody は記事本文のレンダリング結果。
type PostBody struct {
	Nodes          []*html.Node
	HTML           string
	Headings       []model.Heading
	ReadingMinutes int
	// Available は本文ブロックを1件以上取得できたかどうか。
	Available bool
}

// Service は記事の取得と正規化を行う。
// 生成後は状態を変更しないため、複数のリクエストから並行して使える。
type Service struct {
	source     Source
	databaseID string
	sanitizer  security.ContentSanitizerService
	metrics    metrics.MetricsCollector
	logger     *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
// sourceがnil、またはDatabaseIDが空の場合は未設定として扱う。
func NewService(source Source, cfg ServiceConfig, sanitizer security.ContentSanitizerService, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	if sanitizer == nil {
		sanitizer = security.NewContentSanitizer()
	}
	if collector == nil {
		collector = metrics.Nop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:     source,
		databaseID: cfg.DatabaseID,
		sanitizer:  sanitizer,
		metrics:    collector,
		logger:     logger,
	}
}

// Configured はコンテンツソースが設定済みかを返す。
func (s *Service) Configured() bool {
	return s.source != nil && s.databaseID != ""
}

// GetPublishedPosts は公開済み記事を公開日の新しい順で返す。
// ソート指定が拒否された場合はソートなしで1回だけ再クエリし、ソース順の結果を受け入れる。
// 未設定時はプレースホルダー記事を返し、エラーにしない。
func (s *Service) GetPublishedPosts(ctx context.Context) ([]model.Post, error) {
	if !s.Configured() {
		s.logger.Warn("content source is not configured, serving placeholder posts")
		s.metrics.RecordPlaceholderServed()
		return model.PlaceholderPosts(), nil
	}

	dataSourceID, err := s.resolveDataSourceID(ctx)
	if err != nil {
		return nil, model.NewFetchFailedError("could not read the blog database")
	}

	pages, err := s.queryPublished(ctx, dataSourceID)
	if err != nil {
		return nil, model.NewFetchFailedError("could not query published posts")
	}

	if len(pages) == 0 {
		s.logger.Warn("no published posts found", slog.String("data_source_id", dataSourceID))
	}

	posts := make([]model.Post, 0, len(pages))
	for _, page := range pages {
		posts = append(posts, content.Normalize(page))
	}
	s.metrics.RecordPostsNormalized(len(posts))

	if len(pages) > 0 {
		s.logger.Debug("first page properties", slog.Any("property_names", propertyNames(pages[0])))
	}
	return posts, nil
}

// GetPostBySlug はスラッグに一致する公開済み記事を返す。
// 一致する記事が無い場合はPOST_NOT_FOUNDを返し、取得失敗（FETCH_FAILED）と区別する。
func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	posts, err := s.GetPublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == slug {
			return &posts[i], nil
		}
	}
	return nil, model.NewPostNotFoundError(slug)
}

// GetPostBody は記事本文のブロックを取得してレンダリングする。
// 取得に失敗した場合や未設定の場合は空のブロック列として扱い、
// プレースホルダーのみの本文を返す。
func (s *Service) GetPostBody(ctx context.Context, postID string) *PostBody {
	blocks := s.fetchBlocks(ctx, postID)

	nodes := render.Render(blocks)
	rendered, err := render.HTML(nodes)
	if err != nil {
		s.logger.Error("failed to serialize post body",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
		nodes = []*html.Node{render.Placeholder()}
		rendered, _ = render.HTML(nodes)
	}

	return &PostBody{
		Nodes:          nodes,
		HTML:           s.sanitizer.Sanitize(rendered),
		Headings:       render.Headings(blocks),
		ReadingMinutes: content.ReadingMinutes(blocks),
		Available:      len(blocks) > 0,
	}
}

// ConnectionReport はコンテンツソース接続診断の結果。
type ConnectionReport struct {
	HasSource     bool
	HasDatabaseID bool
	DataSourceID  string
	DatabaseTitle string
	PropertyNames []string
	Count         int
}

// CheckConnection はデータベースのメタデータ取得とソートなしクエリを試し、結果を返す。
func (s *Service) CheckConnection(ctx context.Context) (*ConnectionReport, error) {
	report := &ConnectionReport{
		HasSource:     s.source != nil,
		HasDatabaseID: s.databaseID != "",
		PropertyNames: []string{},
	}
	if !s.Configured() {
		return report, nil
	}

	db, err := s.source.RetrieveDatabase(ctx, s.databaseID)
	if err != nil {
		return report, fmt.Errorf("failed to retrieve database: %w", err)
	}
	report.DataSourceID = db.DataSourceID(s.databaseID)
	for _, t := range db.Title {
		report.DatabaseTitle += t.PlainText
	}

	pages, err := s.source.QueryDataSource(ctx, report.DataSourceID, notion.QueryRequest{})
	if err != nil {
		return report, fmt.Errorf("failed to query data source: %w", err)
	}
	report.Count = len(pages)
	if len(pages) > 0 {
		report.PropertyNames = propertyNames(pages[0])
	}
	return report, nil
}

// resolveDataSourceID はデータベースに紐づく最初のデータソースIDを返す。
// データソースを持たない構成ではデータベースIDをそのまま使う。
func (s *Service) resolveDataSourceID(ctx context.Context) (string, error) {
	start := time.Now()
	db, err := s.source.RetrieveDatabase(ctx, s.databaseID)
	s.metrics.RecordSourceLatency(opRetrieveDatabase, time.Since(start))
	if err != nil {
		s.recordFailure(opRetrieveDatabase, err)
		s.logger.Error("failed to retrieve database",
			slog.String("database_id", s.databaseID),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	s.metrics.RecordSourceSuccess(opRetrieveDatabase)
	return db.DataSourceID(s.databaseID), nil
}

// queryPublished は公開日降順で公開済みページを取得する。
// 失敗した場合は同じ条件からソートのみを外して1回だけ再試行する。
func (s *Service) queryPublished(ctx context.Context, dataSourceID string) ([]notion.Page, error) {
	q := notion.QueryRequest{
		Filter: &notion.Filter{
			Property: PublishedProperty,
			Checkbox: &notion.CheckboxFilter{Equals: true},
		},
		Sorts: []notion.Sort{{Property: PublishedDateProperty, Direction: "descending"}},
	}

	pages, err := s.query(ctx, dataSourceID, q)
	if err == nil {
		return pages, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	s.logger.Warn("sorted query failed, retrying without sort",
		slog.String("data_source_id", dataSourceID),
		slog.Bool("validation_error", notion.IsValidationError(err)),
		slog.String("error", err.Error()),
	)
	s.metrics.RecordSortFallback()

	q.Sorts = nil
	pages, err = s.query(ctx, dataSourceID, q)
	if err != nil {
		s.logger.Error("unsorted query failed",
			slog.String("data_source_id", dataSourceID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return pages, nil
}

func (s *Service) query(ctx context.Context, dataSourceID string, q notion.QueryRequest) ([]notion.Page, error) {
	start := time.Now()
	pages, err := s.source.QueryDataSource(ctx, dataSourceID, q)
	s.metrics.RecordSourceLatency(opQuery, time.Since(start))
	if err != nil {
		s.recordFailure(opQuery, err)
		return nil, err
	}
	s.metrics.RecordSourceSuccess(opQuery)
	return pages, nil
}

func (s *Service) fetchBlocks(ctx context.Context, postID string) []model.Block {
	if !s.Configured() {
		s.logger.Warn("content source is not configured, post body is unavailable", slog.String("post_id", postID))
		return []model.Block{}
	}

	start := time.Now()
	blocks, err := s.source.ListBlockChildren(ctx, postID)
	s.metrics.RecordSourceLatency(opListBlocks, time.Since(start))
	if err != nil {
		s.recordFailure(opListBlocks, err)
		level := slog.LevelError
		if notion.IsNotFound(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "failed to fetch post body",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
		return []model.Block{}
	}
	s.metrics.RecordSourceSuccess(opListBlocks)
	return content.ConvertBlocks(blocks)
}

func (s *Service) recordFailure(operation string, err error) {
	reason := "request_failed"
	var apiErr *notion.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Code != "":
		reason = apiErr.Code
	case errors.As(err, &apiErr):
		reason = fmt.Sprintf("http_%d", apiErr.Status)
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, context.Canceled):
		reason = "canceled"
	}
	s.metrics.RecordSourceFailure(operation, reason)
}

func propertyNames(page notion.Page) []string {
	names := make([]string, 0, len(page.Properties))
	for name := range page.Properties {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
