package notion

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultRetryBackoff は指数バックオフの初回遅延の既定値。
	DefaultRetryBackoff = 500 * time.Millisecond
	// maxRetryDelay は1回あたりの待ち時間の上限。Retry-Afterもこの値で切り詰める。
	maxRetryDelay = 10 * time.Second
)

// isRetryableStatus は時間をおけば成功し得るステータスかを判定する。
// 429（レート制限）と5xxが該当する。
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// isRetryable はエラーが再試行対象のNotionエラーかを判定する。
// 通信エラーは再試行しない。
func isRetryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return isRetryableStatus(apiErr.Status)
}

// calculateBackoff は再試行回数に基づいて指数バックオフ遅延を計算する。
// 初回はinitial、2倍ずつ増加し、maxRetryDelayで頭打ちになる。
func calculateBackoff(initial time.Duration, attempt int) time.Duration {
	delay := initial
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// parseRetryAfter はRetry-Afterヘッダー（秒数またはHTTP日付）を解釈する。
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return capDelay(time.Duration(secs) * time.Second), true
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return capDelay(d), true
	}
	return 0, false
}

func capDelay(d time.Duration) time.Duration {
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

// retryDelay は次の再試行までの待ち時間を返す。
// サーバーがRetry-Afterを指定した場合はそれを優先する。
func (c *Client) retryDelay(err error, attempt int) time.Duration {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.hasRetryAfter {
		return apiErr.retryAfter
	}
	return calculateBackoff(c.retryBackoff, attempt)
}

// sleepContext はdだけ待つ。ctxが先に終了した場合はそのエラーを返す。
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
