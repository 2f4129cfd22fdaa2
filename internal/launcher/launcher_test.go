package launcher

import (
	"errors"
	"testing"
)

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare domain gets http prefix", in: "example.com", want: "http://example.com"},
		{name: "bare domain with path", in: "example.com/docs", want: "http://example.com/docs"},
		{name: "https preserved", in: "https://example.com", want: "https://example.com"},
		{name: "http preserved", in: "http://example.com", want: "http://example.com"},
		{name: "scheme-relative preserved", in: "//example.com", want: "//example.com"},
		{name: "whitespace trimmed", in: "  example.com  ", want: "http://example.com"},
		{name: "file two slashes gains third", in: "file://C:/tmp/notes.txt", want: "file:///C:/tmp/notes.txt"},
		{name: "file bare path", in: "file:C:/tmp/notes.txt", want: "file:///C:/tmp/notes.txt"},
		{name: "file three slashes unchanged", in: "file:///C:/tmp/notes.txt", want: "file:///C:/tmp/notes.txt"},
		{name: "file backslashes flipped", in: `file://C:\tmp\notes.txt`, want: "file:///C:/tmp/notes.txt"},
		{name: "file scheme case-insensitive", in: "FILE://C:/tmp/notes.txt", want: "file:///C:/tmp/notes.txt"},
		{name: "empty rejected", in: "", wantErr: true},
		{name: "whitespace only rejected", in: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTarget(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeTarget(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTarget(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "web host", target: "https://example.com/docs", want: "example.com"},
		{name: "file base name", target: "file:///C:/tmp/notes.txt", want: "notes.txt"},
		{name: "file without base falls back", target: "file:///", want: fallbackFileName},
		{name: "hostless path uses last component", target: "http:///docs/readme", want: "readme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveName(tt.target); got != tt.want {
				t.Fatalf("DeriveName(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestOpenRoutesFileTargetsToFileHandler(t *testing.T) {
	origURL, origFile := openURLFn, openFileFn
	t.Cleanup(func() { openURLFn, openFileFn = origURL, origFile })

	var gotFile, gotURL string
	openFileFn = func(path string) error { gotFile = path; return nil }
	openURLFn = func(url string) error { gotURL = url; return nil }

	if err := Open("file://C:/tmp/notes.txt"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if gotFile != "C:/tmp/notes.txt" {
		t.Fatalf("file handler got %q, want C:/tmp/notes.txt", gotFile)
	}
	if gotURL != "" {
		t.Fatalf("url handler unexpectedly called with %q", gotURL)
	}
}

func TestOpenRoutesWebTargetsToBrowser(t *testing.T) {
	origURL, origFile := openURLFn, openFileFn
	t.Cleanup(func() { openURLFn, openFileFn = origURL, origFile })

	var gotURL string
	openFileFn = func(path string) error { t.Fatalf("file handler called with %q", path); return nil }
	openURLFn = func(url string) error { gotURL = url; return nil }

	if err := Open("example.com"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if gotURL != "http://example.com" {
		t.Fatalf("url handler got %q, want http://example.com", gotURL)
	}
}

func TestOpenPropagatesHandlerError(t *testing.T) {
	origURL := openURLFn
	t.Cleanup(func() { openURLFn = origURL })

	wantErr := errors.New("no browser available")
	openURLFn = func(url string) error { return wantErr }

	err := Open("https://example.com")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Open = %v, want wrapped %v", err, wantErr)
	}
}

func TestOpenRejectsEmptyTarget(t *testing.T) {
	if err := Open(""); err == nil {
		t.Fatal("Open(\"\") expected error")
	}
}
