package security

import (
	"strings"
	"testing"
)

// TestSanitize_RendererOutput はレンダラーが生成するタグと属性が通過することを検証する。
func TestSanitize_RendererOutput(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "段落と装飾",
			input:        "<p><strong><em><del><u><code>x</code></u></del></em></strong></p>",
			wantContains: []string{"<p><strong><em><del><u><code>x</code></u></del></em></strong></p>"},
		},
		{
			name:         "見出しのアンカーid",
			input:        `<h2 id="hello-world">Hello, World!</h2>`,
			wantContains: []string{`<h2 id="hello-world">`},
		},
		{
			name:         "コードブロックの言語クラス",
			input:        `<pre><code class="language-go">package main</code></pre>`,
			wantContains: []string{`<pre><code class="language-go">package main</code></pre>`},
		},
		{
			name:         "画像とキャプション",
			input:        `<figure><img src="https://files.example.com/a.png" alt="図"/><figcaption>図</figcaption></figure>`,
			wantContains: []string{"<figure>", `src="https://files.example.com/a.png"`, `alt="図"`, "<figcaption>図</figcaption>"},
		},
		{
			name:         "区切り線",
			input:        "<hr/>",
			wantContains: []string{"<hr"},
		},
		{
			name:         "引用とリスト項目",
			input:        "<blockquote>引用</blockquote><li>項目</li>",
			wantContains: []string{"<blockquote>引用</blockquote>", "<li>項目</li>"},
		},
		{
			name:         "プレースホルダー",
			input:        `<div class="content-unavailable"><p>Content is currently unavailable.</p></div>`,
			wantContains: []string{`<div class="content-unavailable">`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, expected to contain %q", tt.input, got, want)
				}
			}
		})
	}
}

// TestSanitize_RemovesDangerousContent は危険なタグ・属性・URLが除去されることを検証する。
func TestSanitize_RemovesDangerousContent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	tests := []struct {
		name       string
		input      string
		wantAbsent []string
	}{
		{name: "scriptタグ", input: `<p>a</p><script>alert(1)</script>`, wantAbsent: []string{"<script", "alert(1)"}},
		{name: "iframeタグ", input: `<iframe src="https://evil.example.com"></iframe>`, wantAbsent: []string{"<iframe"}},
		{name: "styleタグ", input: `<style>p{}</style><p>a</p>`, wantAbsent: []string{"<style"}},
		{name: "onclick属性", input: `<p onclick="steal()">a</p>`, wantAbsent: []string{"onclick", "steal()"}},
		{name: "javascriptリンク", input: `<a href="javascript:alert(1)">x</a>`, wantAbsent: []string{"javascript:"}},
		{name: "javascript画像", input: `<img src="javascript:alert(1)" alt="x">`, wantAbsent: []string{"javascript:"}},
		{name: "任意のクラス", input: `<code class="evil">x</code>`, wantAbsent: []string{"evil"}},
		{name: "不正なid", input: `<h1 id="a b&quot;">x</h1>`, wantAbsent: []string{"id="}},
		{name: "任意のdivクラス", input: `<div class="article">x</div>`, wantAbsent: []string{"article"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Sanitize(tt.input)
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize(%q) = %q, should NOT contain %q", tt.input, got, absent)
				}
			}
		})
	}
}

// TestSanitize_ExternalLinks は外部リンクにtarget="_blank"とrelが付与されることを検証する。
func TestSanitize_ExternalLinks(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.Sanitize(`<a href="https://example.com" target="_self">リンク</a>`)

	for _, want := range []string{`href="https://example.com"`, `target="_blank"`, "noopener", "noreferrer", "リンク"} {
		if !strings.Contains(got, want) {
			t.Errorf("Sanitize() = %q, expected to contain %q", got, want)
		}
	}
	if strings.Contains(got, `target="_self"`) {
		t.Errorf("Sanitize() = %q, should NOT contain target=\"_self\"", got)
	}
}

// TestSanitize_RelativeLinkIsKept はNotion内部リンク（相対URL）が残ることを検証する。
func TestSanitize_RelativeLinkIsKept(t *testing.T) {
	sanitizer := NewContentSanitizer()

	got := sanitizer.Sanitize(`<a href="/0123456789abcdef0123456789abcdef">内部ページ</a>`)
	if !strings.Contains(got, `href="/0123456789abcdef0123456789abcdef"`) {
		t.Errorf("Sanitize() = %q, expected relative href to be kept", got)
	}
}

// TestSanitize_EmptyInput は空文字列の入力を安全に処理できることを検証する。
func TestSanitize_EmptyInput(t *testing.T) {
	sanitizer := NewContentSanitizer()

	if got := sanitizer.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, expected empty string", got)
	}
}

// TestSanitize_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewContentSanitizer()

	input := `<h1 id="title">タイトル</h1><p>本文<strong>太字</strong></p><a href="https://example.com">リンク</a>`

	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(first)
	if first != second {
		t.Errorf("二重サニタイズで結果が変わった: 1回目=%q, 2回目=%q", first, second)
	}
}

func TestContentSanitizerInterface(t *testing.T) {
	var _ ContentSanitizerService = NewContentSanitizer()
}
