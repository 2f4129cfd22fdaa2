// Package launcher normalizes shortcut targets and opens them with the
// platform default handler.
package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/browser"
)

// Test seams; production code always goes through pkg/browser.
var (
	openURLFn  = browser.OpenURL
	openFileFn = browser.OpenFile
)

// Fallback display names for targets that yield no usable name component.
const (
	fallbackFileName = "File Shortcut"
	fallbackName     = "Untitled Shortcut"
)

// NormalizeTarget canonicalizes user input into a launchable target.
// Bare domains get an http:// prefix; file: targets are rewritten to the
// file:/// form with forward slashes so the same stored value works for both
// display and launch. Scheme detection is case-insensitive.
func NormalizeTarget(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", errors.New("target must not be empty")
	}

	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "file:") {
		return normalizeFileTarget(target), nil
	}

	parsed, err := url.Parse(target)
	if err == nil && parsed.Scheme != "" {
		return target, nil
	}
	// "//domain.com" is scheme-relative, leave it for the browser to resolve.
	if strings.HasPrefix(target, "//") {
		return target, nil
	}
	return "http://" + target, nil
}

// normalizeFileTarget rewrites any file: spelling ("file:path", "file://path")
// to "file:///path" with forward slashes.
func normalizeFileTarget(target string) string {
	rest := target[len("file:"):]
	rest = strings.TrimLeft(rest, "/")
	rest = strings.ReplaceAll(rest, `\`, "/")
	return "file:///" + rest
}

// DeriveName produces a display label from a normalized target: the file base
// name for file: targets, the host for web targets, falling back to the last
// path component and then to a generic label.
func DeriveName(target string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return fallbackName
	}
	if strings.EqualFold(parsed.Scheme, "file") {
		if base := path.Base(parsed.Path); base != "" && base != "." && base != "/" {
			return base
		}
		return fallbackFileName
	}
	if parsed.Host != "" {
		return parsed.Host
	}
	if base := path.Base(parsed.Path); base != "" && base != "." && base != "/" {
		return base
	}
	return fallbackName
}

// Open launches a normalized target with the OS default handler. file:
// targets open the local path directly; everything else goes to the default
// browser. Open is synchronous; callers that must not block run it on a
// worker goroutine.
func Open(target string) error {
	normalized, err := NormalizeTarget(target)
	if err != nil {
		return err
	}

	if strings.HasPrefix(strings.ToLower(normalized), "file:") {
		localPath := strings.TrimPrefix(normalized, "file:///")
		if localPath == "" {
			return fmt.Errorf("open %q: empty file path", target)
		}
		if err := openFileFn(localPath); err != nil {
			return fmt.Errorf("open file %q: %w", localPath, err)
		}
		slog.Debug("[launcher] opened file", "path", localPath)
		return nil
	}

	if err := openURLFn(normalized); err != nil {
		return fmt.Errorf("open url %q: %w", normalized, err)
	}
	slog.Debug("[launcher] opened url", "url", normalized)
	return nil
}
