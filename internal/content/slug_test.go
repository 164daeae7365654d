package content

import "testing"

func TestSlugifyTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello, World!", want: "hello-world"},
		{in: "  Leading and trailing  ", want: "leading-and-trailing"},
		{in: "Go 1.22 -- What's New?", want: "go-1-22-what-s-new"},
		{in: "!!!", want: ""},
		{in: "", want: ""},
		{in: "日本語タイトル", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SlugifyTitle(tt.in); got != tt.want {
				t.Errorf("SlugifyTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnchorSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello, World!", want: "hello-world"},
		{in: "Why   Go?", want: "why-go"},
		{in: "snake_case stays", want: "snake_case-stays"},
		{in: "a - b", want: "a-b"},
		{in: "--edge--", want: "edge"},
		{in: "???", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := AnchorSlug(tt.in); got != tt.want {
				t.Errorf("AnchorSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnchorSlug_Deterministic(t *testing.T) {
	if AnchorSlug("Same Heading") != AnchorSlug("Same Heading") {
		t.Error("identical text should produce identical slugs")
	}
}
