package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/notionblog/internal/metrics"
	"github.com/hitoshi/notionblog/internal/model"
	"github.com/hitoshi/notionblog/internal/security"
)

const (
	// signatureHeader はNotion Webhookの署名ヘッダー名。
	signatureHeader = "X-Notion-Signature"
	// maxWebhookBodyBytes はWebhookリクエストボディの上限。
	maxWebhookBodyBytes = 1 << 20
)

// Webhook処理結果（メトリクスのresultラベル）
const (
	webhookSynced           = "synced"
	webhookVerification     = "verification"
	webhookInvalidSignature = "invalid_signature"
	webhookInvalidRequest   = "invalid_request"
	webhookFailed           = "failed"
)

// SyncHandler はコンテンツ同期（Notion Webhookと手動確認）のHTTPハンドラー。
// サーバー側にキャッシュを持たないため、同期は最新記事の再取得と件数の報告で完了する。
type SyncHandler struct {
	posts    PostLister
	verifier *security.WebhookVerifier
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	now      func() time.Time
}

// NewSyncHandler はSyncHandlerを生成する。
// verifierがnilまたはシークレット未設定の場合、署名検証は行わない。
func NewSyncHandler(posts PostLister, verifier *security.WebhookVerifier, collector metrics.MetricsCollector, logger *slog.Logger) *SyncHandler {
	if collector == nil {
		collector = metrics.Nop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncHandler{
		posts:    posts,
		verifier: verifier,
		metrics:  collector,
		logger:   logger,
		now:      time.Now,
	}
}

// webhookPayload はWebhookボディのうち参照するフィールド。
type webhookPayload struct {
	VerificationToken string `json:"verification_token"`
	Type              string `json:"type"`
	Entity            struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"entity"`
}

type syncResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	PostsCount int    `json:"postsCount"`
	Timestamp  string `json:"timestamp"`
}

type verificationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type syncPostSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	PublishedDate string   `json:"publishedDate"`
	Tags          []string `json:"tags"`
}

type syncListResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Posts     []syncPostSummary `json:"posts"`
	Timestamp string            `json:"timestamp"`
}

type syncErrorResponse struct {
	Error string `json:"error"`
}

// Webhook はNotion Webhookを受け取り、記事を再取得する。
// POST /api/sync
//
// シークレットが設定されている場合は署名を必須とし、欠落または不一致なら401を返す。
// 購読作成時の検証リクエスト（verification_token）はシークレット確定前に届くため署名なしでも受け付け、
// 再取得せずに応答する。
func (h *SyncHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.metrics.RecordWebhook(webhookInvalidRequest)
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("could not read request body"))
		return
	}

	signature := r.Header.Get(signatureHeader)
	verified := false
	if signature != "" && h.verifier.Enabled() {
		if err := h.verifier.Verify(body, signature); err != nil {
			h.rejectSignature(w, err)
			return
		}
		verified = true
	}

	var payload webhookPayload
	var parseErr error
	if len(body) > 0 {
		parseErr = json.Unmarshal(body, &payload)
	}

	// シークレット設定後は、未署名で受け付けるのは検証リクエストのみ
	if h.verifier.Enabled() && !verified && (parseErr != nil || payload.VerificationToken == "") {
		h.rejectSignature(w, security.ErrMissingSignature)
		return
	}

	if parseErr != nil {
		h.metrics.RecordWebhook(webhookInvalidRequest)
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("body is not valid JSON"))
		return
	}

	if payload.VerificationToken != "" {
		h.metrics.RecordWebhook(webhookVerification)
		// トークンはレスポンスに含めず、ログにのみ出力する
		h.logger.Info("webhook verification token received",
			slog.String("verification_token", payload.VerificationToken),
		)
		writeJSON(w, http.StatusOK, verificationResponse{
			Success:   true,
			Message:   "Verification token received",
			Timestamp: formatTimestamp(h.now()),
		})
		return
	}

	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		h.metrics.RecordWebhook(webhookFailed)
		h.logger.Error("failed to sync content", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, syncErrorResponse{Error: "Failed to sync content"})
		return
	}

	h.metrics.RecordWebhook(webhookSynced)
	h.logger.Info("content synced",
		slog.String("event_type", payload.Type),
		slog.String("entity_id", payload.Entity.ID),
		slog.Int("posts_count", len(posts)),
	)
	writeJSON(w, http.StatusOK, syncResponse{
		Success:    true,
		Message:    "Content synced successfully",
		PostsCount: len(posts),
		Timestamp:  formatTimestamp(h.now()),
	})
}

// rejectSignature は署名検証の失敗を記録して401を返す。
func (h *SyncHandler) rejectSignature(w http.ResponseWriter, err error) {
	h.metrics.RecordWebhook(webhookInvalidSignature)
	h.logger.Warn("webhook signature rejected", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewInvalidSignatureError())
}

// Status は現在の公開済み記事の要約を返す。手動確認用。
// GET /api/sync
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch content", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, syncErrorResponse{Error: "Failed to fetch content"})
		return
	}

	summaries := make([]syncPostSummary, 0, len(posts))
	for _, p := range posts {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		summaries = append(summaries, syncPostSummary{
			ID:            p.ID,
			Title:         p.Title,
			Slug:          p.Slug,
			PublishedDate: p.PublishedDate,
			Tags:          tags,
		})
	}

	writeJSON(w, http.StatusOK, syncListResponse{
		Success:   true,
		Message:   "Content fetched successfully",
		Posts:     summaries,
		Timestamp: formatTimestamp(h.now()),
	})
}
