package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/notionblog/internal/blog"
	"github.com/hitoshi/notionblog/internal/category"
	"github.com/hitoshi/notionblog/internal/config"
	"github.com/hitoshi/notionblog/internal/feed"
	"github.com/hitoshi/notionblog/internal/handler"
	"github.com/hitoshi/notionblog/internal/logger"
	"github.com/hitoshi/notionblog/internal/metrics"
	"github.com/hitoshi/notionblog/internal/middleware"
	"github.com/hitoshi/notionblog/internal/notion"
	"github.com/hitoshi/notionblog/internal/security"
)

const (
	// shutdownTimeout はグレースフルシャットダウンの待ち時間の上限。
	shutdownTimeout = 30 * time.Second
	// postsCommandTimeout はpostsサブコマンド全体のタイムアウト。
	postsCommandTimeout = 60 * time.Second
	// feedLanguage はRSSフィードのlanguage要素。
	feedLanguage = "en"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ログレベルの反映。不明な値はinfoで続行する
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		slog.Warn("invalid LOG_LEVEL, falling back to info",
			slog.String("log_level", cfg.LogLevel),
		)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(healthcheckURL(port))
	}

	// postsはJSONを標準出力に書くため、ログは標準エラーに分ける
	logOut := w
	if cmd == CommandPosts {
		logOut = os.Stderr
	}

	cfg, err := Init(logOut)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("site_url", cfg.SiteURL),
		slog.Bool("notion_configured", cfg.NotionConfigured()),
	)

	a, err := newApplication(cfg, slog.Default(), prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.Close()

	switch cmd {
	case CommandPosts:
		ctx, cancel := context.WithTimeout(context.Background(), postsCommandTimeout)
		defer cancel()
		return runPosts(ctx, a.service, os.Stdout)
	default:
		return runServe(cfg, a)
	}
}

// application はワイヤリング済みの依存関係をまとめたもの。
type application struct {
	service     *blog.Service
	rateLimiter *middleware.RateLimiter
	router      http.Handler
}

// newApplication は設定から全依存関係をワイヤリングする。
// Notionのトークンとデータベースが揃っていない場合、コンテンツソースは未設定のまま
// プレースホルダー記事で動作する。
func newApplication(cfg *config.Config, log *slog.Logger, reg *prometheus.Registry) (*application, error) {
	// 1. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	if err := ssrfGuard.ValidateURL(cfg.NotionAPIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid NOTION_API_BASE_URL: %w", err)
	}
	sanitizer := security.NewContentSanitizer()
	verifier := security.NewWebhookVerifier(cfg.NotionWebhookSecret)

	// 2. メトリクス
	collector := metrics.NewCollector(reg)

	// 3. コンテンツソース
	// 未設定時はインターフェースをnilのまま渡す
	var source blog.Source
	if cfg.NotionConfigured() {
		source = notion.NewClient(ssrfGuard.NewSafeClient(cfg.NotionTimeout), log, notion.Config{
			Token:             cfg.NotionToken,
			Version:           cfg.NotionVersion,
			BaseURL:           cfg.NotionAPIBaseURL,
			RequestsPerSecond: cfg.NotionRequestsPerSecond,
			MaxRetries:        cfg.NotionMaxRetries,
		})
	} else {
		log.Warn("NOTION_TOKEN or NOTION_DATABASE_ID is not set, placeholder posts will be served")
	}

	// 4. ドメインサービスの初期化
	service := blog.NewService(source, blog.ServiceConfig{DatabaseID: cfg.NotionDatabaseID}, sanitizer, collector, log)
	categories, err := category.Load(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	// 5. ハンドラーアダプタの構築
	postService := handler.NewPostServiceAdapter(service)

	// 6. ルーターの構築
	// RATE_LIMIT_* はreq/min単位で、NewRateLimiterConfigがreq/secに変換する
	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitSync),
	)

	deps := &handler.RouterDeps{
		Logger:            log,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TrustedProxies:    trustedProxies,

		PostService:       postService,
		ConnectionChecker: postService,
		SourceStatus: handler.SourceStatus{
			HasToken:      cfg.NotionToken != "",
			HasDatabaseID: cfg.NotionDatabaseID != "",
		},

		Categories: categories,

		WebhookVerifier: verifier,
		Metrics:         collector,

		Site: feed.SiteInfo{
			Title:       cfg.SiteTitle,
			URL:         cfg.SiteURL,
			Description: cfg.SiteDescription,
			Language:    feedLanguage,
		},

		MetricsHandler: metrics.Handler(reg),
	}

	return &application{
		service:     service,
		rateLimiter: rateLimiter,
		router:      handler.NewRouter(deps),
	}, nil
}

// Close はバックグラウンドで動いている処理を停止する。
func (a *application) Close() {
	a.rateLimiter.Stop()
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config, a *application) error {
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, server, ln)
}

// serve はlnでHTTPサーバーを起動し、ctxが終了するとシャットダウンする。
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", ln.Addr().String()),
		)
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server listen error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runPosts は公開記事を取得し、整形したJSON配列としてoutに書き出す。
func runPosts(ctx context.Context, service *blog.Service, out io.Writer) error {
	posts, err := service.GetPublishedPosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch posts: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("failed to write posts: %w", err)
	}
	return nil
}

// healthcheckURL はローカルで動いているサーバーの/healthのURLを返す。
func healthcheckURL(port string) string {
	return fmt.Sprintf("http://localhost:%s/health", port)
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
