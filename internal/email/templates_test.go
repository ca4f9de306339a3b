package email

import (
	"strings"
	"testing"
	"time"
)

func TestLifecycleTemplates(t *testing.T) {
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tmpl     LifecycleTemplate
		contains []string
	}{
		{
			name:     "verification",
			tmpl:     VerificationEmail{Name: "Ada", VerifyURL: "https://example.com/verify?t=abc", ExpiresAt: expires},
			contains: []string{"Ada", "https://example.com/verify?t=abc"},
		},
		{
			name:     "welcome",
			tmpl:     WelcomeEmail{Name: "Ada", LoginURL: "https://example.com/login"},
			contains: []string{"Ada", "https://example.com/login"},
		},
		{
			name:     "password reset",
			tmpl:     PasswordResetEmail{Name: "Ada", ResetURL: "https://example.com/reset?t=xyz", ExpiresAt: expires},
			contains: []string{"Ada", "https://example.com/reset?t=xyz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := tt.tmpl.HTML()
			if err != nil {
				t.Fatalf("HTML() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("HTML() should contain %q, got: %s", want, html)
				}
			}
			if tt.tmpl.Subject() == "" {
				t.Error("Subject() should not be empty")
			}
		})
	}
}

func TestPlainTextFromHTML(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
		excludes []string
	}{
		{
			name:     "simple paragraph",
			html:     "<p>Hello, World!</p>",
			contains: []string{"Hello, World!"},
			excludes: []string{"<p>", "</p>"},
		},
		{
			name:     "line breaks",
			html:     "Line 1<br>Line 2<br/>Line 3<br />Line 4",
			contains: []string{"Line 1", "Line 2", "Line 3", "Line 4"},
			excludes: []string{"<br>", "<br/>", "<br />"},
		},
		{
			name:     "entities decoded",
			html:     "a &amp; b &lt;c&gt; &quot;d&quot;",
			contains: []string{"a & b <c> \"d\""},
			excludes: []string{"&amp;", "&lt;", "&gt;", "&quot;"},
		},
		{
			name:     "links stripped",
			html:     `<a href="https://example.com">Click here</a>`,
			contains: []string{"Click here"},
			excludes: []string{"<a", "href", "</a>"},
		},
		{
			name: "empty content",
			html: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PlainTextFromHTML(tt.html)

			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("PlainTextFromHTML() result should contain %q, got: %q", want, result)
				}
			}
			for _, exclude := range tt.excludes {
				if strings.Contains(result, exclude) {
					t.Errorf("PlainTextFromHTML() result should not contain %q, got: %q", exclude, result)
				}
			}
		})
	}
}
