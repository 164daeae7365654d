package handler

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/notionblog/internal/category"
	"github.com/hitoshi/notionblog/internal/feed"
	"github.com/hitoshi/notionblog/internal/metrics"
	"github.com/hitoshi/notionblog/internal/middleware"
	"github.com/hitoshi/notionblog/internal/security"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	// 転送ヘッダーを信頼するプロキシ。空なら接続元アドレスをそのまま使う。
	TrustedProxies []netip.Prefix

	// 記事
	PostService       PostServiceInterface
	ConnectionChecker ConnectionChecker
	SourceStatus      SourceStatus

	// カテゴリ
	Categories *category.Catalogue

	// 同期
	WebhookVerifier *security.WebhookVerifier
	Metrics         metrics.MetricsCollector

	// RSS
	Site feed.SiteInfo

	// /metrics で公開するハンドラー。nilの場合はルートを登録しない。
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → RealIP → Logging → Recovery → SecurityHeaders → CORS → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
// POST /api/sync には同期専用のレート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRealIPMiddleware(deps.TrustedProxies))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	blogHandler := NewBlogHandler(deps.PostService, deps.SourceStatus, logger)
	categoryHandler := NewCategoryHandler(deps.Categories, deps.PostService)
	syncHandler := NewSyncHandler(deps.PostService, deps.WebhookVerifier, deps.Metrics, logger)
	rssHandler := NewRSSHandler(deps.PostService, deps.Site)
	debugHandler := NewDebugHandler(deps.ConnectionChecker, deps.SourceStatus)

	// --- レート制限なし ---
	r.Get("/health", debugHandler.Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- レート制限あり ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/rss.xml", rssHandler.ServeFeed)

		r.Route("/api", func(r chi.Router) {
			r.Route("/blog", func(r chi.Router) {
				r.Get("/", blogHandler.ListPosts)
				r.Get("/{slug}", blogHandler.GetPost)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.ListCategories)
				r.Get("/{slug}", categoryHandler.GetCategory)
			})

			r.Route("/sync", func(r chi.Router) {
				r.Get("/", syncHandler.Status)
				if deps.RateLimiter != nil {
					r.With(deps.RateLimiter.SyncMiddleware()).Post("/", syncHandler.Webhook)
				} else {
					r.Post("/", syncHandler.Webhook)
				}
			})

			r.Get("/debug/connection", debugHandler.Connection)
		})
	})

	return r
}
