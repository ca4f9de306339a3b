package email

import (
	"strings"
	"testing"

	"github.com/copperline/courier/internal/domain"
)

func TestValidateAddresses(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		want      []string
		wantErr   bool
		errNames  []string // malformed addresses the error must mention
	}{
		{
			name:  "all valid preserves order",
			input: []string{"a@b.com", "c@d.com"},
			want:  []string{"a@b.com", "c@d.com"},
		},
		{
			name:     "one bad address fails whole call",
			input:    []string{"a@b.com", "bad"},
			wantErr:  true,
			errNames: []string{"bad"},
		},
		{
			name:     "every bad address is named",
			input:    []string{"nope", "a@b.com", "also-bad"},
			wantErr:  true,
			errNames: []string{"nope", "also-bad"},
		},
		{
			name:  "surrounding whitespace trimmed",
			input: []string{"  a@b.com  "},
			want:  []string{"a@b.com"},
		},
		{
			name:     "missing tld rejected",
			input:    []string{"user@localhost"},
			wantErr:  true,
			errNames: []string{"user@localhost"},
		},
		{
			name:     "embedded whitespace rejected",
			input:    []string{"a b@c.com"},
			wantErr:  true,
			errNames: []string{"a b@c.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateAddresses(tt.input...)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateAddresses(%v) expected error, got %v", tt.input, got)
				}
				if got != nil {
					t.Errorf("ValidateAddresses(%v) should return no addresses on failure, got %v", tt.input, got)
				}
				if domain.ErrorCode(err) != domain.EINVALID {
					t.Errorf("ValidateAddresses(%v) error code = %s, want %s", tt.input, domain.ErrorCode(err), domain.EINVALID)
				}
				for _, name := range tt.errNames {
					if !strings.Contains(err.Error(), name) {
						t.Errorf("ValidateAddresses(%v) error should name %q, got: %v", tt.input, name, err)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("ValidateAddresses(%v) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ValidateAddresses(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ValidateAddresses(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetermineContentType(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		text    string
		want    domain.ContentType
		wantErr bool
	}{
		{name: "both present", html: "<p>x</p>", text: "x", want: domain.ContentTypeMixed},
		{name: "html only", html: "<p>x</p>", want: domain.ContentTypeHTML},
		{name: "text only", text: "x", want: domain.ContentTypeText},
		{name: "whitespace-only html is absent", html: "   ", text: "x", want: domain.ContentTypeText},
		{name: "both absent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetermineContentType(tt.html, tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DetermineContentType(%q, %q) expected error", tt.html, tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetermineContentType(%q, %q) unexpected error: %v", tt.html, tt.text, err)
			}
			if got != tt.want {
				t.Errorf("DetermineContentType(%q, %q) = %s, want %s", tt.html, tt.text, got, tt.want)
			}
		})
	}
}

func TestSanitizeContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "null bytes stripped", raw: "a\x00b", want: "ab"},
		{name: "whitespace trimmed", raw: "  hello  ", want: "hello"},
		{name: "interior whitespace kept", raw: "a b", want: "a b"},
		{name: "empty stays empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeContent(tt.raw); got != tt.want {
				t.Errorf("SanitizeContent(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestJoinSplitAddresses(t *testing.T) {
	joined := JoinAddresses([]string{"a@b.com", "c@d.com"})
	if joined == nil || *joined != "a@b.com,c@d.com" {
		t.Fatalf("JoinAddresses = %v, want a@b.com,c@d.com", joined)
	}

	split := SplitAddresses(joined)
	if len(split) != 2 || split[0] != "a@b.com" || split[1] != "c@d.com" {
		t.Errorf("SplitAddresses round-trip = %v", split)
	}

	// Empty lists store as absent, never as an empty string
	if got := JoinAddresses(nil); got != nil {
		t.Errorf("JoinAddresses(nil) = %q, want nil", *got)
	}
	if got := SplitAddresses(nil); got != nil {
		t.Errorf("SplitAddresses(nil) = %v, want nil", got)
	}
}

func TestEncodeDecodeTags(t *testing.T) {
	tags := []domain.Tag{{Name: "campaign", Value: "onboarding"}, {Name: "env", Value: "test"}}

	encoded, err := EncodeTags(tags)
	if err != nil {
		t.Fatalf("EncodeTags unexpected error: %v", err)
	}
	if encoded == nil {
		t.Fatal("EncodeTags returned nil for non-empty tags")
	}

	decoded, err := DecodeTags(encoded)
	if err != nil {
		t.Fatalf("DecodeTags unexpected error: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != tags[0] || decoded[1] != tags[1] {
		t.Errorf("DecodeTags round-trip = %v, want %v", decoded, tags)
	}

	if encoded, _ := EncodeTags(nil); encoded != nil {
		t.Errorf("EncodeTags(nil) = %q, want nil", *encoded)
	}
}
