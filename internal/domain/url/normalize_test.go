package url

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "http scheme unchanged", input: "http://example.com", want: "http://example.com"},
		{name: "https scheme unchanged", input: "https://example.com", want: "https://example.com"},
		{name: "bare domain gets https", input: "github.com", want: "https://github.com"},
		{name: "domain with path", input: "github.com/bnema", want: "https://github.com/bnema"},
		{name: "search query unchanged", input: "not a url", want: "not a url"},
		{name: "whitespace trimmed", input: "  go.dev ", want: "https://go.dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "https://github.com/bnema", want: "github.com"},
		{name: "keeps www", input: "https://www.youtube.com/watch", want: "www.youtube.com"},
		{name: "strips port", input: "http://localhost:8080/x", want: "localhost"},
		{name: "preserves case", input: "https://GitHub.com", want: "GitHub.com"},
		{name: "not a url", input: "not a url", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "no scheme", input: "github.com/bnema", wantErr: true},
		{name: "broken escape", input: "https://%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractHost(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractHost(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractHost(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExtractHost(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractHost_NoHostSentinel(t *testing.T) {
	_, err := ExtractHost("mailto:someone")
	if !errors.Is(err, ErrNoHost) {
		t.Fatalf("expected ErrNoHost, got %v", err)
	}
}

func TestIsDummyDomain(t *testing.T) {
	for _, d := range []string{"example.com", "EXAMPLE.com", "localhost", "127.0.0.1", "placeholder.com"} {
		if !IsDummyDomain(d) {
			t.Errorf("IsDummyDomain(%q) = false, want true", d)
		}
	}
	for _, d := range []string{"github.com", "www.example.com", ""} {
		if IsDummyDomain(d) {
			t.Errorf("IsDummyDomain(%q) = true, want false", d)
		}
	}
}

func TestIconReferenceKinds(t *testing.T) {
	tests := []struct {
		ref         string
		legacy      bool
		inlineIcon  bool
		placeholder bool
	}{
		{ref: "https://github.com/favicon.ico", legacy: true},
		{ref: "http://old.site/favicon.ico", legacy: true},
		{ref: "data:image/png;base64,AAAA", inlineIcon: true},
		{ref: "/default-favicon.svg", placeholder: true},
		{ref: "/static/default-favicon.png", placeholder: true},
		{ref: "/favicon.ico"},
		{ref: ""},
	}
	for _, tt := range tests {
		if got := IsLegacyIconReference(tt.ref); got != tt.legacy {
			t.Errorf("IsLegacyIconReference(%q) = %v, want %v", tt.ref, got, tt.legacy)
		}
		if got := IsInlineIcon(tt.ref); got != tt.inlineIcon {
			t.Errorf("IsInlineIcon(%q) = %v, want %v", tt.ref, got, tt.inlineIcon)
		}
		if got := IsPlaceholderIcon(tt.ref); got != tt.placeholder {
			t.Errorf("IsPlaceholderIcon(%q) = %v, want %v", tt.ref, got, tt.placeholder)
		}
	}
}

func TestSanitizeKeyForFilename(t *testing.T) {
	if got := SanitizeKeyForFilename("favicon_cache"); got != "favicon_cache" {
		t.Errorf("unexpected rewrite: %q", got)
	}
	if got := SanitizeKeyForFilename("../a:b/c"); got != "__a_b_c" {
		t.Errorf("SanitizeKeyForFilename = %q", got)
	}
}
